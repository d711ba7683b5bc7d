package terminology

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// countingService counts calls through to canned results.
type countingService struct {
	mu          sync.Mutex
	expandCalls int
	lookupCalls int
}

func (s *countingService) Expand(_ context.Context, filter string, count int) ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expandCalls++
	return []Candidate{{Code: "1-1", Display: filter}}, nil
}

func (s *countingService) Lookup(_ context.Context, code string) (*ConceptDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupCalls++
	return NewConceptDetail(code, "display", "", "ACTIVE", nil), nil
}

func TestCachedServiceExpand(t *testing.T) {
	inner := &countingService{}
	svc := NewCachedService(inner, DefaultCacheConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		hits, err := svc.Expand(ctx, "head circumference", 50)
		if err != nil {
			t.Fatalf("Expand() error: %v", err)
		}
		if len(hits) != 1 || hits[0].Code != "1-1" {
			t.Fatalf("hits = %+v", hits)
		}
	}
	if inner.expandCalls != 1 {
		t.Errorf("inner saw %d expand calls, want 1", inner.expandCalls)
	}

	// A different count is a different request.
	if _, err := svc.Expand(ctx, "head circumference", 10); err != nil {
		t.Fatal(err)
	}
	if inner.expandCalls != 2 {
		t.Errorf("inner saw %d expand calls, want 2", inner.expandCalls)
	}
}

func TestCachedServiceLookup(t *testing.T) {
	inner := &countingService{}
	svc := NewCachedService(inner, DefaultCacheConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Lookup(ctx, "11820-8"); err != nil {
			t.Fatalf("Lookup() error: %v", err)
		}
	}
	if _, err := svc.Lookup(ctx, "8279-0"); err != nil {
		t.Fatal(err)
	}
	if inner.lookupCalls != 2 {
		t.Errorf("inner saw %d lookup calls, want 2", inner.lookupCalls)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewShardedCache(CacheConfig{ShardCount: 4, TTL: time.Millisecond})
	cache.SetLookup("1-1", NewConceptDetail("1-1", "x", "", "ACTIVE", nil))

	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.GetLookup("1-1"); ok {
		t.Error("expired entry still served")
	}
	if got := cache.Stats().Lookups; got != 0 {
		t.Errorf("expired entry not evicted, stats = %d", got)
	}
}

func TestCacheClearAndStats(t *testing.T) {
	cache := NewShardedCache(DefaultCacheConfig())
	for i := 0; i < 10; i++ {
		cache.SetExpansion(MakeExpansionKey(fmt.Sprintf("filter-%d", i), 50), nil)
		cache.SetLookup(fmt.Sprintf("%d-%d", i, i), NewConceptDetail("x", "x", "", "", nil))
	}
	stats := cache.Stats()
	if stats.Expansions != 10 || stats.Lookups != 10 {
		t.Errorf("stats = %+v, want 10/10", stats)
	}
	cache.Clear()
	stats = cache.Stats()
	if stats.Expansions != 0 || stats.Lookups != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	inner := &countingService{}
	svc := NewCachedService(inner, DefaultCacheConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				code := fmt.Sprintf("%d-%d", j%5, n%2)
				if _, err := svc.Lookup(ctx, code); err != nil {
					t.Errorf("Lookup() error: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestNextPowerOf2(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {17, 32}, {64, 64},
	}
	for _, tt := range tests {
		if got := nextPowerOf2(tt.in); got != tt.want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
