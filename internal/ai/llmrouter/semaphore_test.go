package llmrouter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSemaphoreAcquireRelease(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(2, time.Second)
	r1, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	r2, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire 2: %v", err)
	}
	if sem.InFlight() != 2 {
		t.Errorf("InFlight = %d, want 2", sem.InFlight())
	}

	r1()
	r2()
	if sem.InFlight() != 0 {
		t.Errorf("InFlight = %d after release, want 0", sem.InFlight())
	}
}

func TestSemaphoreWaitTimeout(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(1, 10*time.Millisecond)
	release, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	_, err = sem.Acquire(context.Background())
	if !errors.Is(err, ErrAdmissionTimeout) {
		t.Errorf("err = %v, want ErrAdmissionTimeout", err)
	}
}

func TestSemaphoreContextCancel(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(1, time.Minute)
	release, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err = sem.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSemaphoreUnblocksWaiter(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(1, time.Second)
	release, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		r, err := sem.Acquire(context.Background())
		if err == nil {
			r()
		}
		done <- err
	}()

	time.Sleep(5 * time.Millisecond)
	release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("waiter got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never unblocked")
	}
}
