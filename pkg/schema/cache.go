package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultExplainTTL bounds how long a cached plan is trusted.
const DefaultExplainTTL = time.Hour

// ExplainCache stores EXPLAIN output keyed by raw statement text so
// structurally identical queries within a batch hit the database once.
// Misses and storage failures are both reported as cache misses.
type ExplainCache interface {
	Get(ctx context.Context, sql string) ([]string, bool)
	Set(ctx context.Context, sql string, plan []string)
}

// queryHash derives the cache key from the raw statement text.
func queryHash(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(sum[:])
}

// sanitizePlan strips null bytes that corrupted cache entries can
// carry into plan text.
func sanitizePlan(plan []string) []string {
	out := make([]string, len(plan))
	for i, line := range plan {
		out[i] = strings.ReplaceAll(line, "\x00", "")
	}
	return out
}

type memoryEntry struct {
	plan    []string
	expires time.Time
}

// MemoryExplainCache is a process-local ExplainCache with per-entry
// expiry.
type MemoryExplainCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryExplainCache creates a cache whose entries expire after
// ttl. A non-positive ttl selects DefaultExplainTTL.
func NewMemoryExplainCache(ttl time.Duration) *MemoryExplainCache {
	if ttl <= 0 {
		ttl = DefaultExplainTTL
	}
	return &MemoryExplainCache{
		ttl:     ttl,
		entries: map[string]memoryEntry{},
	}
}

func (c *MemoryExplainCache) Get(_ context.Context, sql string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := queryHash(sql)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return sanitizePlan(entry.plan), true
}

func (c *MemoryExplainCache) Set(_ context.Context, sql string, plan []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]string, len(plan))
	copy(stored, plan)
	c.entries[queryHash(sql)] = memoryEntry{
		plan:    stored,
		expires: time.Now().Add(c.ttl),
	}
}

// RedisExplainCache shares cached plans across processes through
// Redis. Plans are stored as newline-joined strings.
type RedisExplainCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisExplainCache wraps an existing client. A non-positive ttl
// selects DefaultExplainTTL.
func NewRedisExplainCache(client *redis.Client, ttl time.Duration) *RedisExplainCache {
	if ttl <= 0 {
		ttl = DefaultExplainTTL
	}
	return &RedisExplainCache{client: client, ttl: ttl}
}

func (c *RedisExplainCache) Get(ctx context.Context, sql string) ([]string, bool) {
	val, err := c.client.Get(ctx, queryHash(sql)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("Explain cache read failed", "error", err)
		}
		return nil, false
	}
	return sanitizePlan(strings.Split(val, "\n")), true
}

func (c *RedisExplainCache) Set(ctx context.Context, sql string, plan []string) {
	if err := c.client.Set(ctx, queryHash(sql), strings.Join(plan, "\n"), c.ttl).Err(); err != nil {
		slog.Debug("Explain cache write failed", "error", err)
	}
}

// CachedFacts layers an ExplainCache over another provider. Only
// Explain is intercepted; catalog lookups pass through.
type CachedFacts struct {
	Facts
	cache ExplainCache
}

func NewCachedFacts(facts Facts, cache ExplainCache) *CachedFacts {
	return &CachedFacts{Facts: facts, cache: cache}
}

func (c *CachedFacts) Explain(ctx context.Context, sql string) ([]string, error) {
	if plan, ok := c.cache.Get(ctx, sql); ok {
		return plan, nil
	}
	plan, err := c.Facts.Explain(ctx, sql)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, sql, plan)
	return plan, nil
}
