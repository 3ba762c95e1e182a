package cache

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beautycompare/backend/internal/domain"
)

const redisKeyPrefix = "search:"

// RedisCache is a Redis-backed result cache for multi-instance
// deployments. TTL is enforced by Redis expiry; the entry-count bound is
// left to the server's maxmemory policy. Hit/miss counters are tracked
// per process.
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
	opTimeout  time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

// NewRedisCache connects to Redis at the given URL (redis://...).
func NewRedisCache(url string, ttl time.Duration, maxEntries int) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client:     client,
		ttl:        ttl,
		maxEntries: maxEntries,
		opTimeout:  3 * time.Second,
	}, nil
}

func (c *RedisCache) key(query string) string {
	return redisKeyPrefix + hashKey(query)
}

// Get returns the cached response for the query, if present.
func (c *RedisCache) Get(query string) (*domain.SearchResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] redis get failed: %v", err)
		}
		c.misses.Add(1)
		return nil, false
	}

	var response domain.SearchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		log.Printf("[CACHE] redis unmarshal failed: %v", err)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return &response, true
}

// Set stores a response with the configured TTL. Failures are logged,
// not surfaced; caching is best-effort.
func (c *RedisCache) Set(query string, response *domain.SearchResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("[CACHE] redis marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(query), data, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] redis set failed: %v", err)
	}
}

// Stats returns the cache counters. Size counts this backend's keys.
func (c *RedisCache) Stats() domain.CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	size := 0
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		size++
	}

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = math.Round(float64(hits)/float64(total)*1000) / 10
	}

	return domain.CacheStats{
		Size:           size,
		MaxSize:        c.maxEntries,
		TTLSeconds:     int(c.ttl.Seconds()),
		Hits:           hits,
		Misses:         misses,
		HitRatePercent: hitRate,
	}
}

// Clear removes every cached search response and resets the counters.
func (c *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("[CACHE] redis del failed: %v", err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("[CACHE] redis scan failed: %v", err)
	}

	c.hits.Store(0)
	c.misses.Store(0)
}
