package cache

import (
	"container/list"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/beautycompare/backend/internal/domain"
)

// Defaults for the result cache bounds.
const (
	DefaultTTL        = 2 * time.Hour
	DefaultMaxEntries = 500
)

type entry struct {
	key        string
	response   *domain.SearchResponse
	insertedAt time.Time
}

// MemoryCache is a thread-safe in-memory result cache bounded by both a
// per-entry TTL and a maximum entry count. On insertion beyond the
// bound, expired entries are evicted first; with nothing expired, the
// least-recently-used entry goes.
type MemoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	items      map[string]*list.Element
	order      *list.List // front = most recently used
	hits       int64
	misses     int64
}

// NewMemoryCache creates a result cache with the given time-to-live and
// entry bound. Zero values fall back to the defaults.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// hashKey builds a stable key from the case-folded, whitespace-trimmed
// query. xxhash is fast and non-cryptographic; this is not a security
// boundary.
func hashKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return strconv.FormatUint(xxhash.Sum64String(normalized), 16)
}

// Get returns the cached response for the query, if present and fresh.
// Exactly one of the hit/miss counters is incremented per call.
func (c *MemoryCache) Get(query string) (*domain.SearchResponse, bool) {
	key := hashKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if time.Since(ent.insertedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return ent.response, true
}

// Set stores a response under the normalized query, evicting as needed
// to stay within the entry bound.
func (c *MemoryCache) Set(query string, response *domain.SearchResponse) {
	key := hashKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.response = response
		ent.insertedAt = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	for len(c.items) >= c.maxEntries {
		c.evictOneLocked()
	}

	c.items[key] = c.order.PushFront(&entry{
		key:        key,
		response:   response,
		insertedAt: time.Now(),
	})
}

// evictOneLocked removes a single entry: an expired one if any exists,
// otherwise the least-recently-used.
func (c *MemoryCache) evictOneLocked() {
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		ent := elem.Value.(*entry)
		if time.Since(ent.insertedAt) > c.ttl {
			c.order.Remove(elem)
			delete(c.items, ent.key)
			return
		}
	}

	elem := c.order.Back()
	if elem == nil {
		return
	}
	ent := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.items, ent.key)
}

// Stats returns the read-only cache counters.
func (c *MemoryCache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = math.Round(float64(c.hits)/float64(total)*1000) / 10
	}

	return domain.CacheStats{
		Size:           len(c.items),
		MaxSize:        c.maxEntries,
		TTLSeconds:     int(c.ttl.Seconds()),
		Hits:           c.hits,
		Misses:         c.misses,
		HitRatePercent: hitRate,
	}
}

// Clear removes all entries and resets the counters.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.hits = 0
	c.misses = 0
}

// Size returns the current number of cached entries.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
