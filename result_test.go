package loincmapper

import (
	"testing"

	"github.com/gofhir/loinc-mapper/candidate"
	"github.com/gofhir/loinc-mapper/terminology"
)

func TestTermResultBest(t *testing.T) {
	d := terminology.NewConceptDetail("11820-8", "Head Circumference fetus US", "", "ACTIVE", nil)
	s := candidate.Scored{Detail: d, Stage: candidate.StageStrict, Score: 10}

	r := TermResult{
		Term: "HC",
		Rows: []ResultRow{
			NewResultRow("HC", "head circumference", 1, s),
			NewResultRow("HC", "head circumference", 2, s),
		},
	}
	best := r.Best()
	if best == nil || best.Rank != 1 || best.Code != "11820-8" {
		t.Fatalf("Best() = %+v", best)
	}

	sentinel := TermResult{
		Term: "Bogus",
		Rows: []ResultRow{NewErrorRow("Bogus", "bogus", ErrNoCandidates)},
	}
	if sentinel.Best() != nil {
		t.Error("Best() on a sentinel-only result should be nil")
	}
}

func TestReportAggregation(t *testing.T) {
	d := terminology.NewConceptDetail("1-1", "x", "", "ACTIVE", nil)
	s := candidate.Scored{Detail: d}

	report := Report{Results: []TermResult{
		{
			Term:  "a",
			Rows:  []ResultRow{NewResultRow("a", "a", 1, s)},
			Audit: []AuditRow{NewAuditRow("a", "a", s)},
		},
		{
			Term: "b",
			Rows: []ResultRow{NewErrorRow("b", "b", ErrNoCandidates)},
		},
	}}

	rows := report.Rows()
	if len(rows) != 2 {
		t.Fatalf("Rows() = %d entries, want 2", len(rows))
	}
	if rows[0].SearchTerm != "a" || rows[1].SearchTerm != "b" {
		t.Errorf("row order = %q, %q", rows[0].SearchTerm, rows[1].SearchTerm)
	}
	if audit := report.AuditRows(); len(audit) != 1 || audit[0].SearchTerm != "a" {
		t.Errorf("AuditRows() = %+v", audit)
	}
}
