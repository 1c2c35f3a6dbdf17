package llmrouter

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// Config assembles the router's moving parts
type Config struct {
	Primary   Provider
	Secondary Provider
	Policy    RetryPolicy
	// CallTimeout is the hard cap applied to every single upstream attempt
	CallTimeout time.Duration
	Admission   *Semaphore
	Breakers    *BreakerRegistry
	PromptCache *PromptCache
}

// Router executes one logical generation against the primary provider,
// failing over to the secondary when the primary is exhausted or fails
// with a non-retryable error.
type Router struct {
	primary     Provider
	secondary   Provider
	policy      RetryPolicy
	callTimeout time.Duration
	admission   *Semaphore
	breakers    *BreakerRegistry
	prompts     *PromptCache
}

func New(cfg Config) *Router {
	if cfg.Policy.Attempts <= 0 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if cfg.PromptCache == nil {
		cfg.PromptCache = NewPromptCache(false)
	}
	return &Router{
		primary:     cfg.Primary,
		secondary:   cfg.Secondary,
		policy:      cfg.Policy,
		callTimeout: cfg.CallTimeout,
		admission:   cfg.Admission,
		breakers:    cfg.Breakers,
		prompts:     cfg.PromptCache,
	}
}

// Generate runs the request and returns the text plus the name of the
// provider that served it. The error is terminal: either admission
// timed out, ctx was cancelled, or both providers are exhausted.
func (r *Router) Generate(ctx context.Context, req Request) (string, string, error) {
	if r.admission != nil {
		release, err := r.admission.Acquire(ctx)
		if err != nil {
			return "", "", err
		}
		defer release()
	}

	if req.System != "" {
		r.prompts.Touch(req.System)
	}

	text, err := r.tryProvider(ctx, r.primary, req)
	if err == nil {
		return text, r.primary.Name(), nil
	}
	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}
	logx.Warnf("llmrouter: %s failed, failing over to %s: %v", r.primary.Name(), r.secondary.Name(), err)

	// Model names are provider-specific; the secondary falls back to
	// its own configured default rather than the primary's model.
	req.Model = ""
	secText, secErr := r.tryProvider(ctx, r.secondary, req)
	if secErr == nil {
		return secText, r.secondary.Name(), nil
	}
	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}

	return "", "", &ExhaustedError{
		PrimaryName:   r.primary.Name(),
		SecondaryName: r.secondary.Name(),
		PrimaryErr:    err,
		SecondaryErr:  secErr,
	}
}

// tryProvider runs the retry loop against one provider. A non-retryable
// error or an open breaker ends the loop immediately.
func (r *Router) tryProvider(ctx context.Context, p Provider, req Request) (string, error) {
	breaker := r.breakerFor(p)
	if breaker != nil && !breaker.Allow() {
		return "", fmt.Errorf("%s: %w", p.Name(), ErrCircuitOpen)
	}

	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		text, err := r.callOnce(ctx, p, req)
		if err == nil {
			if breaker != nil {
				breaker.RecordSuccess()
			}
			return text, nil
		}
		if breaker != nil {
			breaker.RecordFailure()
		}
		lastErr = err

		if !r.policy.Retryable(err) {
			logx.Warnf("llmrouter: %s attempt %d non-retryable: %v", p.Name(), attempt, err)
			return "", err
		}
		if attempt == r.policy.Attempts {
			break
		}

		wait := r.policy.Wait(attempt)
		logx.Infof("llmrouter: %s attempt %d/%d failed, retrying in %s: %v",
			p.Name(), attempt, r.policy.Attempts, wait, err)
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}

		// The breaker may have opened mid-sequence
		if breaker != nil && !breaker.Allow() {
			return "", fmt.Errorf("%s: %w", p.Name(), ErrCircuitOpen)
		}
	}
	return "", fmt.Errorf("%s: retries exhausted: %w", p.Name(), lastErr)
}

func (r *Router) callOnce(ctx context.Context, p Provider, req Request) (string, error) {
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}
	return p.Generate(ctx, req)
}

func (r *Router) breakerFor(p Provider) *CircuitBreaker {
	if r.breakers == nil {
		return nil
	}
	return r.breakers.Get(p.Name())
}

// PromptCacheStats exposes prompt reuse counters for the stats surface
func (r *Router) PromptCacheStats() PromptCacheStats {
	return r.prompts.Stats()
}

// WarmPromptCache pre-registers the given named system prompts
func (r *Router) WarmPromptCache(prompts map[string]string) {
	r.prompts.Warm(prompts)
}

// BreakerStats exposes per-provider breaker state, empty when disabled
func (r *Router) BreakerStats() []BreakerStats {
	if r.breakers == nil {
		return nil
	}
	return r.breakers.Stats()
}
