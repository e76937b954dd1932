// internal/engine/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"property-advisor/internal/common/logger"
	"property-advisor/internal/common/metrics"
	"property-advisor/internal/models"
)

// ComputeFunc produces the ranked results for a fingerprint on a miss.
type ComputeFunc func(ctx context.Context) ([]models.RecommendationResult, error)

// Store is an optional second cache level (e.g. Redis) shared between
// advisor instances. The in-memory LRU stays authoritative for eviction.
type Store interface {
	Get(ctx context.Context, fingerprint string) ([]models.RecommendationResult, bool, error)
	Set(ctx context.Context, fingerprint string, results []models.RecommendationResult, ttl time.Duration) error
	DeleteAll(ctx context.Context) error
}

type entry struct {
	key        string
	results    []models.RecommendationResult
	createdAt  time.Time
	accessedAt time.Time
}

// Cache is a bounded, thread-safe recommendation cache with LRU eviction
// and at-most-one computation per fingerprint under concurrent requests.
// Callers must treat returned result slices as read-only.
type Cache struct {
	capacity int
	ttl      time.Duration
	remote   Store
	log      logger.Logger

	group singleflight.Group

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
}

// Option configures a Cache.
type Option func(*Cache)

// WithRemoteStore attaches a shared second-level store.
func WithRemoteStore(s Store) Option {
	return func(c *Cache) { c.remote = s }
}

func New(capacity int, ttl time.Duration, log logger.Logger, opts ...Option) *Cache {
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		log:      log,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached results for the fingerprint, computing
// them at most once when absent. Concurrent callers with the same
// fingerprint block on the in-flight computation; unrelated fingerprints
// compute fully in parallel. A partially written entry is never returned.
func (c *Cache) GetOrCompute(ctx context.Context, fingerprint string, fn ComputeFunc) ([]models.RecommendationResult, bool, error) {
	if results, ok := c.get(fingerprint); ok {
		metrics.CacheHits.Inc()
		return results, true, nil
	}

	var remoteHit bool
	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		// A concurrent caller may have populated the entry while this one
		// waited on the flight group.
		if results, ok := c.get(fingerprint); ok {
			remoteHit = true
			return results, nil
		}

		if c.remote != nil {
			if results, ok, err := c.remote.Get(ctx, fingerprint); err == nil && ok {
				c.put(fingerprint, results)
				remoteHit = true
				return results, nil
			} else if err != nil {
				c.log.Warn("remote cache read failed", map[string]interface{}{"error": err})
			}
		}

		results, err := fn(ctx)
		if err != nil {
			return nil, err
		}

		c.put(fingerprint, results)
		if c.remote != nil {
			if err := c.remote.Set(ctx, fingerprint, results, c.ttl); err != nil {
				c.log.Warn("remote cache write failed", map[string]interface{}{"error": err})
			}
		}
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}

	if remoteHit {
		metrics.CacheHits.Inc()
	} else {
		metrics.CacheMisses.Inc()
	}
	return v.([]models.RecommendationResult), remoteHit, nil
}

func (c *Cache) get(fingerprint string) ([]models.RecommendationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[fingerprint]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry)
	if c.ttl > 0 && time.Since(ent.createdAt) > c.ttl {
		c.removeElement(el)
		return nil, false
	}
	ent.accessedAt = time.Now()
	c.ll.MoveToFront(el)
	return ent.results, true
}

func (c *Cache) put(fingerprint string, results []models.RecommendationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if el, ok := c.items[fingerprint]; ok {
		ent := el.Value.(*entry)
		ent.results = results
		ent.createdAt = now
		ent.accessedAt = now
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: fingerprint, results: results, createdAt: now, accessedAt: now})
	c.items[fingerprint] = el

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		metrics.CacheEvictions.Inc()
	}
}

func (c *Cache) removeElement(el *list.Element) {
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, ent.key)
}

// Invalidate drops every entry whose fingerprint matches the predicate and
// returns how many were removed.
func (c *Cache) Invalidate(pred func(fingerprint string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, el := range c.items {
		if pred(key) {
			c.removeElement(el)
			removed++
		}
	}
	return removed
}

// InvalidateAll empties the cache. Called on data refresh; the remote
// store, when present, is cleared best-effort.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.mu.Unlock()

	if c.remote != nil {
		if err := c.remote.DeleteAll(ctx); err != nil {
			c.log.Warn("remote cache clear failed", map[string]interface{}{"error": err})
		}
	}
}

// Sweep evicts entries past their TTL. Meant for the optional periodic
// eviction ticker; Get already ignores expired entries on its own.
func (c *Cache) Sweep(now time.Time) int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.Sub(el.Value.(*entry).createdAt) > c.ttl {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
