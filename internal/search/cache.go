// ABOUTME: Two-tier search result cache: L1 in-memory with TTL, optional L2 Redis
// ABOUTME: L1 is lost on restart; L2 survives restarts and is shared between processes
package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache implements L1 (memory) + L2 (Redis) caching of search results
type Cache struct {
	mu         sync.Mutex
	l1         map[string]cacheEntry
	rdb        *redis.Client // nil if Redis unavailable
	ttl        time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache sets up the cache. redisURL can be empty to disable L2;
// an unreachable Redis is logged and L2 stays disabled.
func NewCache(ctx context.Context, redisURL string, ttl time.Duration, maxEntries int) *Cache {
	c := &Cache{l1: make(map[string]cacheEntry), ttl: ttl, maxEntries: maxEntries}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
			return c
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			_ = rdb.Close()
			return c
		}
		c.rdb = rdb
		slog.Debug("cache: L2 redis connected", slog.String("addr", opts.Addr))
	}

	return c
}

// Key builds a deterministic cache key from parts
func Key(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("newsclip:search:%x", hash[:12])
}

// Get tries L1, then L2. On L2 hit, populates L1.
func (c *Cache) Get(ctx context.Context, key string) (Results, bool) {
	if c == nil {
		return Results{}, false
	}

	c.mu.Lock()
	entry, ok := c.l1[key]
	if ok && time.Now().After(entry.expiresAt) {
		delete(c.l1, key)
		ok = false
	}
	c.mu.Unlock()

	if ok {
		var out Results
		if json.Unmarshal(entry.data, &out) == nil {
			c.hits.Add(1)
			return out, true
		}
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var out Results
			if json.Unmarshal(data, &out) == nil {
				slog.Debug("cache: L2 hit", slog.String("key", key))
				c.storeL1(key, data)
				c.hits.Add(1)
				return out, true
			}
		}
	}

	c.misses.Add(1)
	return Results{}, false
}

// Set stores results in both tiers
func (c *Cache) Set(ctx context.Context, key string, r Results) {
	if c == nil {
		return
	}

	r.Cached = false
	data, err := json.Marshal(r)
	if err != nil {
		return
	}

	c.storeL1(key, data)

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// Stats returns hit/miss counters
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Redis reports whether the L2 tier is active
func (c *Cache) Redis() bool {
	return c != nil && c.rdb != nil
}

// Close releases the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) storeL1(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked()
	c.l1[key] = cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// evictLocked removes expired entries, then the oldest ones, until under maxEntries
func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 || len(c.l1) < c.maxEntries {
		return
	}

	now := time.Now()
	for k, e := range c.l1 {
		if now.After(e.expiresAt) {
			delete(c.l1, k)
		}
	}

	for len(c.l1) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.l1 {
			// Earlier expiry = older entry
			if oldestKey == "" || e.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.expiresAt
			}
		}
		delete(c.l1, oldestKey)
	}
}
