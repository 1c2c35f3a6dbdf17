package llmrouter

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
)

// PromptCache tracks reuse of stable system instructions. Requests are
// split into (system, user); the system half is keyed by content hash
// so repeated workflows share one provider-side cache entry. When the
// provider offers no prompt caching this degrades to pure accounting.
type PromptCache struct {
	mu      sync.Mutex
	enabled bool
	entries map[string]*promptEntry
	hits    uint64
	misses  uint64
	savings uint64
}

type promptEntry struct {
	name   string
	system string
	uses   uint64
}

func NewPromptCache(enabled bool) *PromptCache {
	return &PromptCache{
		enabled: enabled,
		entries: make(map[string]*promptEntry),
	}
}

// promptKey is the 16-hex-char content key for a system instruction
func promptKey(system string) string {
	sum := md5.Sum([]byte(system))
	return hex.EncodeToString(sum[:])[:16]
}

// Warm pre-registers named system prompts so the first real request
// already counts as a hit
func (p *PromptCache) Warm(prompts map[string]string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, system := range prompts {
		key := promptKey(system)
		if _, ok := p.entries[key]; !ok {
			p.entries[key] = &promptEntry{name: name, system: system}
		}
	}
}

// Touch records one use of a system instruction and returns its key
// and whether it was already registered
func (p *PromptCache) Touch(system string) (string, bool) {
	key := promptKey(system)
	if !p.enabled || system == "" {
		return key, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok {
		p.entries[key] = &promptEntry{system: system, uses: 1}
		p.misses++
		return key, false
	}
	entry.uses++
	p.hits++
	// Rough token estimate: one token per four characters of reused prefix
	p.savings += uint64(len(system) / 4)
	return key, true
}

// PromptCacheStats reports reuse counters and the estimated savings
type PromptCacheStats struct {
	Enabled              bool    `json:"enabled"`
	Entries              int     `json:"entries"`
	Hits                 uint64  `json:"hits"`
	Misses               uint64  `json:"misses"`
	HitRate              float64 `json:"hit_rate"`
	EstimatedTokensSaved uint64  `json:"estimated_tokens_saved"`
}

func (p *PromptCache) Stats() PromptCacheStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.hits + p.misses
	rate := 0.0
	if total > 0 {
		rate = float64(p.hits) / float64(total)
	}
	return PromptCacheStats{
		Enabled:              p.enabled,
		Entries:              len(p.entries),
		Hits:                 p.hits,
		Misses:               p.misses,
		HitRate:              rate,
		EstimatedTokensSaved: p.savings,
	}
}
