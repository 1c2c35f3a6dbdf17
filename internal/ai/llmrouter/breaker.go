package llmrouter

import (
	"sync"
	"time"

	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// BreakerState is the classic three-state circuit breaker state
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig tunes one circuit breaker
type BreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	HalfOpenRequests int
}

// CircuitBreaker protects one upstream service. It opens after
// FailureThreshold consecutive failures, half-opens after
// RecoveryTimeout, and closes again after HalfOpenRequests successful
// probes.
type CircuitBreaker struct {
	name string
	cfg  BreakerConfig

	mu                 sync.Mutex
	state              BreakerState
	failures           int
	halfOpenAllowed    int
	halfOpenSuccess    int
	openedAt           time.Time
	totalFailures      uint64
	totalSuccesses     uint64
	totalShortCircuits uint64
}

func NewCircuitBreaker(name string, cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg,
		state: BreakerClosed,
	}
}

// Allow reports whether a request may proceed. In the half-open state
// only a bounded number of probe requests pass.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if time.Since(b.openedAt) >= b.cfg.RecoveryTimeout {
			b.state = BreakerHalfOpen
			b.halfOpenAllowed = b.cfg.HalfOpenRequests
			b.halfOpenSuccess = 0
			logx.Infof("circuit %s: open -> half_open", b.name)
			b.halfOpenAllowed--
			return true
		}
		b.totalShortCircuits++
		return false
	case BreakerHalfOpen:
		if b.halfOpenAllowed > 0 {
			b.halfOpenAllowed--
			return true
		}
		b.totalShortCircuits++
		return false
	}
	return true
}

// RecordSuccess feeds a successful call back into the breaker
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalSuccesses++
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.halfOpenSuccess++
		if b.halfOpenSuccess >= b.cfg.HalfOpenRequests {
			b.state = BreakerClosed
			b.failures = 0
			logx.Infof("circuit %s: half_open -> closed", b.name)
		}
	}
}

// RecordFailure feeds a failed call back into the breaker
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalFailures++
	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.state = BreakerOpen
			b.openedAt = time.Now()
			logx.Warnf("circuit %s: closed -> open after %d consecutive failures", b.name, b.failures)
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.openedAt = time.Now()
		logx.Warnf("circuit %s: half_open -> open, probe failed", b.name)
	}
}

// BreakerStats is a point-in-time view of one breaker
type BreakerStats struct {
	Name           string       `json:"name"`
	State          BreakerState `json:"state"`
	Failures       int          `json:"consecutive_failures"`
	TotalFailures  uint64       `json:"total_failures"`
	TotalSuccesses uint64       `json:"total_successes"`
	ShortCircuits  uint64       `json:"short_circuits"`
}

func (b *CircuitBreaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		Name:           b.name,
		State:          b.state,
		Failures:       b.failures,
		TotalFailures:  b.totalFailures,
		TotalSuccesses: b.totalSuccesses,
		ShortCircuits:  b.totalShortCircuits,
	}
}

// BreakerRegistry hands out one breaker per upstream service name
type BreakerRegistry struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	enabled  bool
	breakers map[string]*CircuitBreaker
}

func NewBreakerRegistry(cfg BreakerConfig, enabled bool) *BreakerRegistry {
	return &BreakerRegistry{
		cfg:      cfg,
		enabled:  enabled,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for name, creating it on first use. Returns
// nil when breakers are disabled; callers must tolerate that.
func (r *BreakerRegistry) Get(name string) *CircuitBreaker {
	if !r.enabled {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[name]
	if !ok {
		b = NewCircuitBreaker(name, r.cfg)
		r.breakers[name] = b
	}
	return b
}

// Stats returns the stats of every registered breaker
func (r *BreakerRegistry) Stats() []BreakerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := make([]BreakerStats, 0, len(r.breakers))
	for _, b := range r.breakers {
		stats = append(stats, b.Stats())
	}
	return stats
}
