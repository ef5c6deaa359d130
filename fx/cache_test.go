package fx

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

type fakeCache struct {
	store map[string]decimal.Decimal
	gets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]decimal.Decimal{}}
}

func (f *fakeCache) Get(_ context.Context, from, to string) (decimal.Decimal, bool) {
	f.gets++
	d, ok := f.store[from+"|"+to]
	return d, ok
}

func (f *fakeCache) Set(_ context.Context, from, to string, rate decimal.Decimal) {
	f.store[from+"|"+to] = rate
}

type alwaysMissCache struct{}

func (alwaysMissCache) Get(context.Context, string, string) (decimal.Decimal, bool) {
	return decimal.Decimal{}, false
}
func (alwaysMissCache) Set(context.Context, string, string, decimal.Decimal) {}

func TestCachedGraphPopulatesOnMiss(t *testing.T) {
	g := NewGraph([]Pair{{From: "USD", To: "EUR", Value: dec("0.9")}})
	cache := newFakeCache()
	cg := NewCachedGraph(g, cache)

	r, err := cg.Rate(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Equal(dec("0.9")) {
		t.Fatalf("Rate = %s, want 0.9", r)
	}
	if _, ok := cache.store["USD|EUR"]; !ok {
		t.Fatalf("expected Rate to populate the cache on a miss")
	}
}

func TestCachedGraphServesFromCacheWithoutWalkingGraph(t *testing.T) {
	g := NewGraph(nil) // no edges at all; a graph walk would fail
	cache := newFakeCache()
	cache.store["USD|EUR"] = dec("0.77")
	cg := NewCachedGraph(g, cache)

	r, err := cg.Rate(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Equal(dec("0.77")) {
		t.Fatalf("Rate = %s, want 0.77 (cached value)", r)
	}
}

func TestCachedGraphFallsThroughOnAlwaysMissCache(t *testing.T) {
	g := NewGraph([]Pair{{From: "USD", To: "EUR", Value: dec("0.9")}})
	cg := NewCachedGraph(g, alwaysMissCache{})

	r, err := cg.Rate(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("a cache that always misses must never fail convert, got error: %v", err)
	}
	if !r.Equal(dec("0.9")) {
		t.Fatalf("Rate = %s, want 0.9", r)
	}
}

func TestCachedGraphWithNilCacheBehavesLikeGraph(t *testing.T) {
	g := NewGraph([]Pair{{From: "USD", To: "EUR", Value: dec("0.9")}})
	cg := NewCachedGraph(g, nil)

	r, err := cg.Rate(context.Background(), "USD", "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Equal(dec("0.9")) {
		t.Fatalf("Rate = %s, want 0.9", r)
	}
}
