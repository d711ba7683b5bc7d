package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	lm "github.com/gofhir/loinc-mapper"
)

// echoResolver returns a result naming the term, failing for terms in
// the fail set.
type echoResolver struct {
	fail map[string]bool
}

func (r *echoResolver) ResolveTerm(_ context.Context, term string) (*lm.TermResult, error) {
	if r.fail[term] {
		return nil, fmt.Errorf("resolving %q failed", term)
	}
	return &lm.TermResult{Term: term}, nil
}

func TestPoolResultsSortedByIndex(t *testing.T) {
	pool := NewPool(context.Background(), &echoResolver{}, 4)

	terms := []string{"HC", "BPD", "FL", "AC", "EFW", "FHR"}
	for i, term := range terms {
		if !pool.Submit(Job{Index: i, Term: term}) {
			t.Fatalf("Submit(%d) rejected", i)
		}
	}
	batch := pool.CloseAndWait()

	if batch.TotalJobs != len(terms) || batch.CompletedJobs != len(terms) {
		t.Fatalf("batch counts = %d/%d, want %d/%d",
			batch.TotalJobs, batch.CompletedJobs, len(terms), len(terms))
	}
	if len(batch.Results) != len(terms) {
		t.Fatalf("got %d results, want %d", len(batch.Results), len(terms))
	}
	for i, jr := range batch.Results {
		if jr.Index != i {
			t.Errorf("result[%d].Index = %d", i, jr.Index)
		}
		if jr.Term != terms[i] {
			t.Errorf("result[%d].Term = %q, want %q", i, jr.Term, terms[i])
		}
		if jr.Result == nil || jr.Result.Term != terms[i] {
			t.Errorf("result[%d] payload = %+v", i, jr.Result)
		}
	}
	if err := batch.FirstError(); err != nil {
		t.Errorf("FirstError() = %v, want nil", err)
	}
}

func TestPoolFirstError(t *testing.T) {
	pool := NewPool(context.Background(), &echoResolver{fail: map[string]bool{"BPD": true}}, 2)
	for i, term := range []string{"HC", "BPD", "FL"} {
		pool.Submit(Job{Index: i, Term: term})
	}
	batch := pool.CloseAndWait()

	if err := batch.FirstError(); err == nil {
		t.Fatal("FirstError() = nil, want the BPD failure")
	}
	// The failing job still reports its index and term.
	if batch.Results[1].Error == nil || batch.Results[1].Result != nil {
		t.Errorf("failed result = %+v", batch.Results[1])
	}
}

func TestPoolNilResolver(t *testing.T) {
	pool := NewPool(context.Background(), nil, 1)
	pool.Submit(Job{Index: 0, Term: "HC"})
	batch := pool.CloseAndWait()

	if len(batch.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(batch.Results))
	}
	if !errors.Is(batch.Results[0].Error, ErrNoResolver) {
		t.Errorf("error = %v, want ErrNoResolver", batch.Results[0].Error)
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	pool := NewPool(context.Background(), &echoResolver{}, 1)
	pool.CloseAndWait()

	if pool.Submit(Job{Index: 0, Term: "HC"}) {
		t.Error("Submit() after close should report false")
	}
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, &echoResolver{}, 1)
	cancel()

	// A cancelled pool eventually refuses submissions; either refusal
	// path (closed context or full queue) is fine here, it must just
	// not hang.
	pool.Submit(Job{Index: 0, Term: "HC"})
	batch := pool.CloseAndWait()
	if batch.TotalJobs > 1 {
		t.Errorf("TotalJobs = %d", batch.TotalJobs)
	}
}

func TestPoolStats(t *testing.T) {
	pool := NewPool(context.Background(), &echoResolver{}, 3)
	for i := 0; i < 5; i++ {
		pool.Submit(Job{Index: i, Term: "HC"})
	}
	pool.CloseAndWait()

	stats := pool.Stats()
	if stats.Workers != 3 {
		t.Errorf("Workers = %d, want 3", stats.Workers)
	}
	if stats.JobsSubmitted != 5 || stats.JobsCompleted != 5 {
		t.Errorf("jobs = %d/%d, want 5/5", stats.JobsSubmitted, stats.JobsCompleted)
	}
}
