package fx

import (
	"context"

	"github.com/shopspring/decimal"
)

// rateCache is the subset of internal/ratecache.Client's surface CachedGraph
// needs, kept as an interface here so fx does not import internal/ratecache
// (and so tests can fake the cache without a Redis server).
type rateCache interface {
	Get(ctx context.Context, from, to string) (decimal.Decimal, bool)
	Set(ctx context.Context, from, to string, rate decimal.Decimal)
}

// CachedGraph decorates a Graph with a rate cache. It is purely an
// accelerator: a cache miss, or a cache that errors on every call, falls
// straight through to the underlying graph walk and never turns into a
// convert() failure (spec.md's exchange-rate service invariant, carried
// into the ambient expansion's §4.10).
type CachedGraph struct {
	graph *Graph
	cache rateCache
}

// NewCachedGraph wraps graph with cache. cache may be nil, in which case
// Rate behaves exactly like graph.Rate.
func NewCachedGraph(graph *Graph, cache rateCache) *CachedGraph {
	return &CachedGraph{graph: graph, cache: cache}
}

// Rate resolves from→to, consulting the cache first and populating it on a
// graph-walk hit.
func (c *CachedGraph) Rate(ctx context.Context, a, b string) (decimal.Decimal, error) {
	if c.cache != nil {
		if rate, ok := c.cache.Get(ctx, a, b); ok {
			return rate, nil
		}
	}

	rate, err := c.graph.Rate(a, b)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, a, b, rate)
	}
	return rate, nil
}
