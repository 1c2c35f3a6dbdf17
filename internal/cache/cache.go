// Package cache implements the two-tier lookup used for embeddings and
// analysis results: a bounded in-process LRU in front of a shared store
// with per-entry TTL. The shared tier is best effort; every shared-store
// failure downgrades the operation to L1 only and is never surfaced.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// explicitPrefixes are caller-managed namespaces used verbatim on both
// tiers. Anything else is treated as raw content and hashed.
var explicitPrefixes = []string{"ind:", "role:", "score:"}

// SharedStore is the cross-process tier (Redis in production)
type SharedStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// Stats is a point-in-time snapshot of cache counters
type Stats struct {
	L1Hits     uint64  `json:"l1_hits"`
	L2Hits     uint64  `json:"l2_hits"`
	Misses     uint64  `json:"misses"`
	Total      uint64  `json:"total"`
	HitRate    float64 `json:"hit_rate"`
	L1Size     int     `json:"l1_size"`
	L1Capacity int     `json:"l1_capacity"`
	L2Enabled  bool    `json:"l2_enabled"`
}

// TwoTier combines the in-process LRU with an optional shared store
type TwoTier struct {
	mu     sync.Mutex
	l1     *lru
	l2     SharedStore // nil when no shared store is configured
	l1Hits uint64
	l2Hits uint64
	misses uint64
}

// New creates a two-tier cache. shared may be nil for L1-only operation.
func New(l1Capacity int, shared SharedStore) *TwoTier {
	return &TwoTier{
		l1: newLRU(l1Capacity),
		l2: shared,
	}
}

// keysFor maps a caller key to its canonical (l1Key, l2Key) pair.
// Both Get and Set go through here; the two paths must never diverge.
func keysFor(key string) (string, string) {
	for _, p := range explicitPrefixes {
		if strings.HasPrefix(key, p) {
			return key, key
		}
	}
	sum := md5.Sum([]byte(key))
	h := hex.EncodeToString(sum[:])
	return h, "emb:" + h
}

// Get looks up a value, consulting L1 then the shared store. A shared
// hit is promoted into L1. The second return is false on a miss.
func (c *TwoTier) Get(ctx context.Context, key string) ([]byte, bool) {
	l1Key, l2Key := keysFor(key)

	c.mu.Lock()
	if value, ok := c.l1.Get(l1Key); ok {
		c.l1Hits++
		c.mu.Unlock()
		return value, true
	}
	c.mu.Unlock()

	if c.l2 != nil {
		value, ok, err := c.l2.Get(ctx, l2Key)
		if err != nil {
			logx.Warnf("cache: shared get failed for %s: %v", l2Key, err)
		} else if ok {
			c.mu.Lock()
			c.l1.Put(l1Key, value)
			c.l2Hits++
			c.mu.Unlock()
			return value, true
		}
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Set writes through both tiers. TTL applies only to the shared store.
func (c *TwoTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	l1Key, l2Key := keysFor(key)

	c.mu.Lock()
	c.l1.Put(l1Key, value)
	c.mu.Unlock()

	if c.l2 != nil {
		if err := c.l2.SetEx(ctx, l2Key, value, ttl); err != nil {
			logx.Warnf("cache: shared set failed for %s: %v", l2Key, err)
		}
	}
}

// Delete removes a single entry from both tiers
func (c *TwoTier) Delete(ctx context.Context, key string) {
	l1Key, l2Key := keysFor(key)

	c.mu.Lock()
	c.l1.Remove(l1Key)
	c.mu.Unlock()

	if c.l2 != nil {
		if err := c.l2.Delete(ctx, l2Key); err != nil {
			logx.Warnf("cache: shared delete failed for %s: %v", l2Key, err)
		}
	}
}

// Clear resets L1 and removes shared entries. With an empty prefix every
// managed namespace is scanned; otherwise only keys under prefix go.
func (c *TwoTier) Clear(ctx context.Context, prefix string) {
	c.mu.Lock()
	c.l1.Reset()
	c.mu.Unlock()

	if c.l2 == nil {
		return
	}

	patterns := []string{prefix + "*"}
	if prefix == "" {
		patterns = []string{"emb:*"}
		for _, p := range explicitPrefixes {
			patterns = append(patterns, p+"*")
		}
	}

	for _, pattern := range patterns {
		keys, err := c.l2.ScanKeys(ctx, pattern)
		if err != nil {
			logx.Warnf("cache: scan %s failed: %v", pattern, err)
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.l2.Delete(ctx, keys...); err != nil {
			logx.Warnf("cache: clear %s failed: %v", pattern, err)
		}
	}
}

// Stats returns the current counters
func (c *TwoTier) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.l1Hits + c.l2Hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.l1Hits+c.l2Hits) / float64(total)
	}
	return Stats{
		L1Hits:     c.l1Hits,
		L2Hits:     c.l2Hits,
		Misses:     c.misses,
		Total:      total,
		HitRate:    rate,
		L1Size:     c.l1.Len(),
		L1Capacity: c.l1.capacity,
		L2Enabled:  c.l2 != nil,
	}
}
