package llmrouter

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// RetryPolicy drives the per-provider retry loop: up to Attempts tries
// with deterministic exponential waits between MinWait and MaxWait.
type RetryPolicy struct {
	Attempts  int
	MinWait   time.Duration
	MaxWait   time.Duration
	Retryable func(error) bool
}

// DefaultRetryPolicy matches the production tuning: 3 attempts, waits
// doubling from 2s and capped at 10s, retrying transient I/O only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		MinWait:   2 * time.Second,
		MaxWait:   10 * time.Second,
		Retryable: IsTransient,
	}
}

// Wait returns the delay before the given retry. attempt is 1-based:
// the wait after the first failed attempt is MinWait.
func (p RetryPolicy) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := p.MinWait << (attempt - 1)
	if wait > p.MaxWait || wait < p.MinWait {
		return p.MaxWait
	}
	return wait
}

// IsTransient classifies errors worth retrying on the same provider:
// timeouts, connection resets, and resolution failures. Semantic 4xx
// errors, auth failures, and schema violations are not transient; the
// router fails over immediately on those.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// sleep waits for d or until ctx is done, whichever comes first
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
