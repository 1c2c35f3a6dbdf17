// Package llmrouter executes text-generation requests against a primary
// provider with cooperative failover to a secondary one. It owns all
// retry behaviour: callers never retry a Generate call themselves.
package llmrouter

import (
	"context"
	"errors"
	"fmt"
)

// Request is one logical text-generation request. System carries the
// stable, cacheable instruction; Prompt carries the variable content.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Provider is a single upstream text-generation backend
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

var (
	// ErrCircuitOpen is returned without touching the upstream when its
	// breaker is open; the router treats it as an immediate failover.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrAdmissionTimeout is returned when a caller waited longer than
	// the queue timeout for an admission slot.
	ErrAdmissionTimeout = errors.New("timed out waiting for llm admission slot")
)

// ExhaustedError is the terminal failure after both providers gave up
type ExhaustedError struct {
	PrimaryName   string
	SecondaryName string
	PrimaryErr    error
	SecondaryErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers exhausted: %s: %v; %s: %v",
		e.PrimaryName, e.PrimaryErr, e.SecondaryName, e.SecondaryErr)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{e.PrimaryErr, e.SecondaryErr}
}
