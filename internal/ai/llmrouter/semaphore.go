package llmrouter

import (
	"context"
	"time"
)

// Semaphore is the process-wide admission gate for provider calls. It
// bounds concurrent upstream requests so provider-side rate limiting
// cannot cascade into unbounded goroutine and memory growth.
type Semaphore struct {
	slots       chan struct{}
	waitTimeout time.Duration
}

func NewSemaphore(size int, waitTimeout time.Duration) *Semaphore {
	if size <= 0 {
		size = 1
	}
	return &Semaphore{
		slots:       make(chan struct{}, size),
		waitTimeout: waitTimeout,
	}
}

// Acquire blocks until a slot is free, the wait timeout elapses, or ctx
// is cancelled. On success the returned release function must be called
// exactly once.
func (s *Semaphore) Acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(s.waitTimeout)
	defer timer.Stop()

	select {
	case s.slots <- struct{}{}:
		return func() { <-s.slots }, nil
	case <-timer.C:
		return nil, ErrAdmissionTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InFlight returns the number of currently held slots
func (s *Semaphore) InFlight() int { return len(s.slots) }

// Capacity returns the total number of slots
func (s *Semaphore) Capacity() int { return cap(s.slots) }
