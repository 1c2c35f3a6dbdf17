// Package embeddings generates text embeddings with cooperative
// provider failover. Both providers failing is not an error: callers
// get a zero vector tagged with the fallback provider name, and
// downstream similarity treats zero vectors as zero.
package embeddings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/internal/cache"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// Dimension is the canonical embedding size. Vectors from providers
// with a different native size are truncated or zero-padded to it.
const Dimension = 768

// Provider name reported when every provider failed
const ProviderZeroFallback = "fallback_zero"

// Provider name reported when the vector came from the cache
const ProviderCache = "cache"

// Provider is a single upstream embedding backend
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Router runs embedding requests against a primary provider with
// failover to a secondary, backed by the two-tier cache.
type Router struct {
	primary     Provider
	secondary   Provider
	policy      llmrouter.RetryPolicy
	callTimeout time.Duration
	cache       *cache.TwoTier
	cacheTTL    time.Duration
}

// Config assembles an embedding Router
type Config struct {
	Primary     Provider
	Secondary   Provider
	Policy      llmrouter.RetryPolicy
	CallTimeout time.Duration
	Cache       *cache.TwoTier
	CacheTTL    time.Duration
}

func New(cfg Config) *Router {
	if cfg.Policy.Attempts <= 0 {
		cfg.Policy = llmrouter.DefaultRetryPolicy()
	}
	return &Router{
		primary:     cfg.Primary,
		secondary:   cfg.Secondary,
		policy:      cfg.Policy,
		callTimeout: cfg.CallTimeout,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
	}
}

// Embed returns the canonical-dimension vector for text and the name of
// the provider that produced it. The only error returned is context
// cancellation; provider failures degrade to the zero-vector fallback.
func (r *Router) Embed(ctx context.Context, text string) ([]float32, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if r.cache != nil {
		if data, ok := r.cache.Get(ctx, text); ok {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil {
				return fitDimension(vec), ProviderCache, nil
			}
			logx.Warnf("embeddings: dropping undecodable cache entry")
		}
	}

	for _, p := range []Provider{r.primary, r.secondary} {
		if p == nil {
			continue
		}
		vec, err := r.tryProvider(ctx, p, text)
		if err == nil {
			vec = fitDimension(vec)
			r.store(ctx, text, vec)
			return vec, p.Name(), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		logx.Warnf("embeddings: %s failed: %v", p.Name(), err)
	}

	logx.Warnf("embeddings: all providers failed, returning zero vector")
	return make([]float32, Dimension), ProviderZeroFallback, nil
}

func (r *Router) tryProvider(ctx context.Context, p Provider, text string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		vec, err := r.callOnce(ctx, p, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !r.policy.Retryable(err) {
			return nil, err
		}
		if attempt == r.policy.Attempts {
			break
		}
		timer := time.NewTimer(r.policy.Wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (r *Router) callOnce(ctx context.Context, p Provider, text string) ([]float32, error) {
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}
	return p.Embed(ctx, text)
}

func (r *Router) store(ctx context.Context, text string, vec []float32) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	r.cache.Set(ctx, text, data, r.cacheTTL)
}

// fitDimension reduces or zero-pads a vector to the canonical size
func fitDimension(vec []float32) []float32 {
	if len(vec) == Dimension {
		return vec
	}
	fitted := make([]float32, Dimension)
	copy(fitted, vec)
	return fitted
}
