package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/metrics"
)

// ==============================================================================
// ResultCache - in-memory screen results (never persisted)
// ==============================================================================

// ResultCache keeps recent screen outputs for a fixed TTL.
// Concurrent misses on the same key share a single computation.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time

	sf singleflight.Group
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// NewResultCache creates a cache; ttl <= 0 disables expiry-based reuse
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a live entry
func (c *ResultCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return e.value, true
}

// Set stores value under key
func (c *ResultCache) Set(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Len returns the number of stored entries, expired ones included
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops expired entries
func (c *ResultCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// GetOrCompute returns the cached value or runs compute once for all
// concurrent callers of key. Errors are not cached.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	// the shared run belonged to a caller that gave up; ours is still live
	if err != nil && isContextErr(err) && ctx.Err() == nil {
		v, err = compute(ctx)
		if err == nil {
			c.Set(key, v)
		}
	}
	return v, err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ==============================================================================
// Cached screen entry points
// ==============================================================================

// WithCache enables read-through caching for the Cached* methods
func (s *Service) WithCache(cache *ResultCache) *Service {
	s.cache = cache
	return s
}

// CachedLowDi is ScreenLowDi behind the result cache
func (s *Service) CachedLowDi(ctx context.Context, q LowDiQuery) ([]market.LowDiFlag, error) {
	if q.AsOf.IsZero() {
		q.AsOf = s.Today(nil)
	}
	if s.cache == nil {
		return s.ScreenLowDi(ctx, q)
	}

	v, err := s.cache.GetOrCompute(ctx, lowDiKey(q), func(ctx context.Context) (any, error) {
		return s.ScreenLowDi(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return v.([]market.LowDiFlag), nil
}

// CachedPeriodHigh is ScanPeriodHigh behind the result cache
func (s *Service) CachedPeriodHigh(ctx context.Context, q PeriodHighQuery) ([]market.PeriodHighRecord, error) {
	if s.cache == nil {
		return s.ScanPeriodHigh(ctx, q)
	}

	v, err := s.cache.GetOrCompute(ctx, s.periodHighKey(q), func(ctx context.Context) (any, error) {
		return s.ScanPeriodHigh(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return v.([]market.PeriodHighRecord), nil
}

// RefreshLowDi recomputes and stores a screen regardless of cache state
func (s *Service) RefreshLowDi(ctx context.Context, q LowDiQuery) ([]market.LowDiFlag, error) {
	if q.AsOf.IsZero() {
		q.AsOf = s.Today(nil)
	}
	flags, err := s.ScreenLowDi(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(lowDiKey(q), flags)
	}
	return flags, nil
}

// RefreshPeriodHigh recomputes and stores a scan regardless of cache state
func (s *Service) RefreshPeriodHigh(ctx context.Context, q PeriodHighQuery) ([]market.PeriodHighRecord, error) {
	records, err := s.ScanPeriodHigh(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(s.periodHighKey(q), records)
	}
	return records, nil
}

func lowDiKey(q LowDiQuery) string {
	return fmt.Sprintf("lowdi|%s|%s", q.AsOf, tickerKey(q.Tickers))
}

// periodHighKey includes today's date so keys roll over with the period start
func (s *Service) periodHighKey(q PeriodHighQuery) string {
	loc := q.Location
	if loc == nil {
		loc = s.cfg.HighLocation
	}
	within := s.cfg.WithinPct
	if q.WithinPct != nil {
		within = *q.WithinPct
	}
	return fmt.Sprintf("high|%s|%s|%s|%g|%s",
		strings.ToLower(strings.TrimSpace(q.Period)), loc, s.Today(loc), within, tickerKey(q.Tickers))
}

func tickerKey(tickers []string) string {
	norm := market.NormalizeTickers(tickers)
	sort.Strings(norm)
	return strings.Join(norm, ",")
}
