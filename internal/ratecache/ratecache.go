// Package ratecache wraps a Redis client configured the way the corpus's
// utils.Conn wires one up, scoped down to the one thing the exchange-rate
// service needs: memoizing a resolved currency pair for a TTL so that a
// high-volume convert() caller does not re-walk the rate graph on every
// call. It is never the source of truth for a rate — see fx.CachedGraph,
// which falls straight through to the graph on any cache miss or error.
package ratecache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// Client is a thin Redis-backed cache of resolved exchange rates.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Config configures a Client.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New dials Redis with pool/timeout settings in the same shape the corpus's
// utils.InitConn uses for its cache client. It does not block on a ping —
// callers treat the cache as best-effort, so a down Redis should degrade
// evaluations to "uncached," never block startup.
func New(cfg Config) *Client {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		PoolTimeout:  30 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		DialTimeout:  5 * time.Second,
	})
	return &Client{rdb: rdb, ttl: ttl}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func key(from, to string) string {
	return fmt.Sprintf("amfn:fx:%s:%s", from, to)
}

// Get returns the cached rate for from→to, and whether it was present. Any
// Redis error (including a cold/unreachable cache) reports ok=false rather
// than propagating — a cache failure is never a convert() failure.
func (c *Client) Get(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	if c == nil {
		return decimal.Decimal{}, false
	}
	raw, err := c.rdb.Get(ctx, key(from, to)).Result()
	if err != nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Set stores the resolved rate for from→to with the configured TTL. Errors
// are swallowed for the same reason Get swallows them: the cache is purely
// an accelerator.
func (c *Client) Set(ctx context.Context, from, to string, rate decimal.Decimal) {
	if c == nil {
		return
	}
	_ = c.rdb.Set(ctx, key(from, to), rate.String(), c.ttl).Err()
}
