package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides 2-tier caching of tool payloads: L1 in-memory + L2 Redis.
// L1 is fast but lost on restart. L2 survives restarts.
var resultCache *tieredCache

// CacheTTL controls how long results stay cached.
var CacheTTL = 15 * time.Minute

// Cache metrics: atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// tieredCache implements L1 (memory) + L2 (Redis) caching.
type tieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
}

type cacheEntry struct {
	data      string
	expiresAt time.Time
}

// InitCache sets up the 2-tier cache, replacing any previous one.
// redisURL can be empty to disable L2. A ttl <= 0 disables caching entirely.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	if resultCache != nil {
		close(resultCache.stop)
		resultCache = nil
	}
	CacheTTL = ttl
	if ttl <= 0 {
		slog.Info("cache: disabled")
		return
	}

	c := &tieredCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: cleanupInterval, stop: make(chan struct{})}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
				rdb.Close() //nolint:errcheck
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	resultCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("yc:%x", hash[:12]) // 24-char hex suffix
}

// CacheGet tries L1, then L2. On L2 hit, populates L1.
func CacheGet(ctx context.Context, key string) (string, bool) {
	c := resultCache
	if c == nil {
		cacheMisses.Add(1)
		return "", false
	}

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.data, true
		}
		c.l1.Delete(key) // expired
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Result()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", key))
			cacheHits.Add(1)
			c.l1.Store(key, &cacheEntry{
				data:      data,
				expiresAt: time.Now().Add(c.ttl),
			})
			return data, true
		}
	}

	cacheMisses.Add(1)
	return "", false
}

// CacheSet stores value in both L1 and L2.
func CacheSet(ctx context.Context, key, value string) {
	c := resultCache
	if c == nil {
		return
	}

	c.evictIfNeeded()

	c.l1.Store(key, &cacheEntry{
		data:      value,
		expiresAt: time.Now().Add(c.ttl),
	})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded removes entries when L1 exceeds maxEntries.
// Removes expired entries first, then oldest entries if still over limit.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})

	if count < c.maxEntries {
		return
	}

	// Phase 1: remove expired
	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	if count < c.maxEntries {
		return
	}

	// Phase 2: remove oldest entries until under limit
	var oldest struct {
		key any
		at  time.Time
	}
	for count >= c.maxEntries {
		oldest.key = nil
		oldest.at = time.Now().Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok {
				// Earlier expiry = older entry (since expiry = createdAt + ttl)
				if entry.expiresAt.Before(oldest.at) {
					oldest.key = key
					oldest.at = entry.expiresAt
				}
			}
			return true
		})
		if oldest.key == nil {
			break
		}
		c.l1.Delete(oldest.key)
		count--
	}
}

// cleanupLoop periodically removes expired L1 entries until the cache is replaced.
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			if c.rdb != nil {
				c.rdb.Close() //nolint:errcheck
			}
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
