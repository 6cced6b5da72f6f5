package strategy

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/vector-bt/internal/metrics"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

// DefaultIndicatorCache is shared by the built-in strategies so that grid-search
// combinations over the same prices reuse indicator series.
var DefaultIndicatorCache = NewIndicatorCache(10 * time.Minute)

// IndicatorCache memoizes indicator series keyed by input series, indicator and window
type IndicatorCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// NewIndicatorCache creates a new indicator cache
func NewIndicatorCache(ttl time.Duration) *IndicatorCache {
	return &IndicatorCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get returns the cached indicator or computes and stores it. Callers must not
// mutate the returned series.
func (c *IndicatorCache) Get(prices timeseries.Series, indicator string, window int, compute func() timeseries.Series) timeseries.Series {
	key := fmt.Sprintf("%s:%d:%s", indicator, window, fingerprint(prices))
	if cached, found := c.cache.Get(key); found {
		if series, ok := cached.(timeseries.Series); ok {
			c.hitCount.Add(1)
			metrics.RecordIndicatorCacheLookup(true)
			return series
		}
	}
	c.missCount.Add(1)
	metrics.RecordIndicatorCacheLookup(false)
	series := compute()
	c.cache.Set(key, series, c.ttl)
	return series
}

// Flush removes all entries
func (c *IndicatorCache) Flush() {
	c.cache.Flush()
}

// Stats returns hit and miss counters
func (c *IndicatorCache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hitCount.Load(),
		Misses:  c.missCount.Load(),
		Entries: c.cache.ItemCount(),
	}
}

func fingerprint(s timeseries.Series) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range s {
		binary.LittleEndian.PutUint64(buf[:], uint64(p.Time.UnixNano()))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Value))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%d:%x", len(s), h.Sum64())
}
