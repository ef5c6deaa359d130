package ratecache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// unreachable builds a Client pointed at a port nothing is listening on, so
// every Get/Set exercises the error-swallowing path without a real Redis.
func unreachable(t *testing.T) *Client {
	t.Helper()
	return New(Config{Addr: "127.0.0.1:1", TTL: time.Second})
}

func TestGetOnUnreachableRedisReportsMiss(t *testing.T) {
	c := unreachable(t)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, ok := c.Get(ctx, "USD", "EUR")
	if ok {
		t.Error("Get against an unreachable Redis: expected ok=false")
	}
}

func TestSetOnUnreachableRedisDoesNotPanic(t *testing.T) {
	c := unreachable(t)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	rate, _ := decimal.NewFromString("0.9")
	c.Set(ctx, "USD", "EUR", rate) // must not panic or block past the context deadline
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New(Config{Addr: "127.0.0.1:1"})
	defer c.Close()
	if c.ttl != 5*time.Minute {
		t.Errorf("default ttl = %s, want 5m", c.ttl)
	}
}

func TestGetOnNilClientReportsMiss(t *testing.T) {
	var c *Client
	if _, ok := c.Get(context.Background(), "USD", "EUR"); ok {
		t.Error("Get on a nil *Client: expected ok=false")
	}
}

func TestSetOnNilClientDoesNotPanic(t *testing.T) {
	var c *Client
	rate, _ := decimal.NewFromString("1")
	c.Set(context.Background(), "USD", "EUR", rate)
}
