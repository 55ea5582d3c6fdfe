// Package mrpcache holds the process-wide MRP run cache described in §5:
// a freshness-windowed cache of the most recently computed run, guarded by
// a single-flight coordinator so concurrent cache misses collapse into one
// in-flight run.
package mrpcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/pkg/logger"
)

// runFunc matches (*mrp.Engine).Run's signature; kept as a function type so
// the cache doesn't need to import the concrete engine.
type runFunc func(ctx context.Context) (mrp.RunOutput, error)

// Cache holds the most recently computed run and reuses it for any request
// arriving within TTL of when the run started.
type Cache struct {
	run runFunc
	ttl time.Duration

	mu        sync.RWMutex
	output    mrp.RunOutput
	computedAt time.Time
	valid     bool

	group singleflight.Group
}

// New constructs a Cache wrapping run, reusing results for ttl.
func New(run runFunc, ttl time.Duration) *Cache {
	return &Cache{run: run, ttl: ttl}
}

// Get returns a fresh-enough cached run, or executes exactly one new run on
// behalf of every caller that finds the cache stale at the same time.
func (c *Cache) Get(ctx context.Context) (mrp.RunOutput, error) {
	if out, ok := c.freshSnapshot(); ok {
		return out, nil
	}

	v, err, shared := c.group.Do("run", func() (any, error) {
		// Re-check inside the single-flight section: another goroutine may
		// have refreshed the cache while this one waited to enter Do.
		if out, ok := c.freshSnapshot(); ok {
			return out, nil
		}

		start := time.Now()
		out, err := c.run(ctx)
		if err != nil {
			return mrp.RunOutput{}, err
		}

		c.mu.Lock()
		c.output = out
		c.computedAt = start
		c.valid = true
		c.mu.Unlock()

		return out, nil
	})
	if err != nil {
		return mrp.RunOutput{}, err
	}
	if shared {
		logger.Debug(ctx, "mrp run served from single-flight coordinator")
	}
	return v.(mrp.RunOutput), nil
}

func (c *Cache) freshSnapshot() (mrp.RunOutput, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return mrp.RunOutput{}, false
	}
	if time.Since(c.computedAt) > c.ttl {
		return mrp.RunOutput{}, false
	}
	return c.output, true
}

// Invalidate forces the next Get to compute a fresh run.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
