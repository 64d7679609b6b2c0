package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// Logger is the interface for logging.
type Logger interface {
	Warn(msg string, args ...any)
}

// Config configures a Cache.
type Config struct {
	// Store holds entries. Default: unbounded MemoryStore.
	Store Store

	// Logger receives store failures, which are treated as misses.
	Logger Logger

	// MeterProvider supplies the lookup counter. Default: global provider.
	MeterProvider metric.MeterProvider
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Computations uint64 `json:"computations"`
	Entries      int    `json:"entries"`
}

// Cache maps keys to encoded results and runs at most one computation per
// key at a time. Failed computations are not stored.
type Cache struct {
	store   Store
	logger  Logger
	group   singleflight.Group
	lookups metric.Int64Counter

	hits         atomic.Uint64
	misses       atomic.Uint64
	computations atomic.Uint64
}

// New creates a cache.
func New(cfg Config) (*Cache, error) {
	store := cfg.Store
	if store == nil {
		store, _ = NewMemoryStore(0)
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	lookups, err := mp.Meter("github.com/jonwraymond/scriptbridge/cache").Int64Counter(
		"scriptbridge.cache.lookups",
		metric.WithDescription("Discovery cache lookups by result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create lookup counter: %w", err)
	}
	return &Cache{store: store, logger: cfg.Logger, lookups: lookups}, nil
}

// Do returns the stored bytes for key, or runs compute and stores its result.
// cached reports whether the value came from the store.
func (c *Cache) Do(ctx context.Context, key Key, compute func(context.Context) ([]byte, error)) (value []byte, cached bool, err error) {
	k := key.String()
	if v, ok := c.lookup(ctx, k); ok {
		c.record(ctx, key, "hit")
		return v, true, nil
	}
	c.record(ctx, key, "miss")

	// The computation outlives any single caller; each caller stops waiting
	// when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (any, error) {
		if v, ok := c.lookup(shared, k); ok {
			return v, nil
		}
		c.computations.Add(1)
		v, err := compute(shared)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(shared, k, v); err != nil {
			c.warn("cache store write failed", "key", k, "error", err)
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return bytes.Clone(res.Val.([]byte)), false, nil
	}
}

// Fetch is Do for JSON-encodable values. Every call decodes a fresh copy.
func Fetch[T any](ctx context.Context, c *Cache, key Key, compute func(context.Context) (T, error)) (T, bool, error) {
	var out T
	data, cached, err := c.Do(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decode cached %s: %w", key.Kind, err)
	}
	return out, cached, nil
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(ctx context.Context, key Key) error {
	return c.store.Delete(ctx, key.String())
}

// Purge removes every entry.
func (c *Cache) Purge(ctx context.Context) error {
	return c.store.Purge(ctx)
}

// Stats returns the current counters.
func (c *Cache) Stats(ctx context.Context) Stats {
	n, err := c.store.Len(ctx)
	if err != nil {
		c.warn("cache store length failed", "error", err)
	}
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Computations: c.computations.Load(),
		Entries:      n,
	}
}

func (c *Cache) lookup(ctx context.Context, k string) ([]byte, bool) {
	v, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.warn("cache store read failed", "key", k, "error", err)
		return nil, false
	}
	return v, ok
}

func (c *Cache) record(ctx context.Context, key Key, result string) {
	if result == "hit" {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	c.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(key.Kind)),
		attribute.String("result", result),
	))
}

func (c *Cache) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
