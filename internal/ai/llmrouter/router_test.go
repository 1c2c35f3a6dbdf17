package llmrouter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProvider returns scripted results in order, then repeats the last
type fakeProvider struct {
	mu      sync.Mutex
	name    string
	results []fakeResult
	calls   int
	lastReq Request
}

type fakeResult struct {
	text string
	err  error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	f.calls++
	r := f.results[idx]
	return r.text, r.err
}

func (f *fakeProvider) lastRequest() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// transientErr satisfies net.Error-ish classification via timeout
type transientErr struct{}

func (transientErr) Error() string   { return "i/o timeout" }
func (transientErr) Timeout() bool   { return true }
func (transientErr) Temporary() bool { return true }

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		MinWait:   time.Millisecond,
		MaxWait:   4 * time.Millisecond,
		Retryable: IsTransient,
	}
}

func newTestRouter(primary, secondary Provider, opts ...func(*Config)) *Router {
	cfg := Config{
		Primary:   primary,
		Secondary: secondary,
		Policy:    fastPolicy(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func TestGeneratePrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", results: []fakeResult{{text: "answer"}}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "never"}}}
	r := newTestRouter(primary, secondary)

	text, provider, err := r.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "answer" || provider != "gemini" {
		t.Errorf("got (%q, %q)", text, provider)
	}
	if secondary.callCount() != 0 {
		t.Error("secondary must not be called when primary succeeds")
	}
}

func TestGenerateRetriesThenFailsOver(t *testing.T) {
	t.Parallel()

	// Primary: three transient failures exhaust its retries
	primary := &fakeProvider{name: "gemini", results: []fakeResult{
		{err: transientErr{}}, {err: transientErr{}}, {err: transientErr{}},
	}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "fallback answer"}}}
	r := newTestRouter(primary, secondary)

	text, provider, err := r.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider != "openai" || text != "fallback answer" {
		t.Errorf("got (%q, %q), want fallback from openai", text, provider)
	}
	if primary.callCount() != 3 {
		t.Errorf("primary called %d times, want 3", primary.callCount())
	}
}

func TestGenerateNonRetryableFailsOverImmediately(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", results: []fakeResult{
		{err: errors.New("400 invalid request")},
	}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "ok"}}}
	r := newTestRouter(primary, secondary)

	_, provider, err := r.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider != "openai" {
		t.Errorf("provider = %q, want openai", provider)
	}
	if primary.callCount() != 1 {
		t.Errorf("non-retryable error must not be retried, primary called %d times", primary.callCount())
	}
}

func TestGenerateFailoverDropsPrimaryModel(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", results: []fakeResult{
		{err: errors.New("400 invalid request")},
	}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "ok"}}}
	r := newTestRouter(primary, secondary)

	_, provider, err := r.Generate(context.Background(), Request{Model: "gemini-2.0-flash", Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider != "openai" {
		t.Fatalf("provider = %q, want openai", provider)
	}
	if got := primary.lastRequest().Model; got != "gemini-2.0-flash" {
		t.Errorf("primary model = %q, want the requested one", got)
	}
	if got := secondary.lastRequest().Model; got != "" {
		t.Errorf("secondary model = %q, must not inherit the primary's model", got)
	}
}

func TestGenerateBothExhaustedIsTerminal(t *testing.T) {
	t.Parallel()

	primaryErr := errors.New("401 unauthorized")
	secondaryErr := errors.New("schema violation")
	primary := &fakeProvider{name: "gemini", results: []fakeResult{{err: primaryErr}}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{err: secondaryErr}}}
	r := newTestRouter(primary, secondary)

	_, _, err := r.Generate(context.Background(), Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected terminal error")
	}
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error type = %T", err)
	}
	if !errors.Is(err, primaryErr) || !errors.Is(err, secondaryErr) {
		t.Error("terminal error must carry both causes")
	}
}

func TestGenerateAdmissionTimeout(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", results: []fakeResult{{text: "x"}}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "y"}}}

	sem := NewSemaphore(1, 10*time.Millisecond)
	release, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("priming acquire: %v", err)
	}
	defer release()

	r := newTestRouter(primary, secondary, func(cfg *Config) { cfg.Admission = sem })

	_, _, err = r.Generate(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, ErrAdmissionTimeout) {
		t.Errorf("err = %v, want ErrAdmissionTimeout", err)
	}
	if primary.callCount() != 0 {
		t.Error("no provider call may happen without an admission slot")
	}
}

func TestGenerateOpenBreakerSkipsProvider(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", results: []fakeResult{{text: "x"}}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "served by fallback"}}}

	breakers := NewBreakerRegistry(BreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Hour,
		HalfOpenRequests: 1,
	}, true)
	breakers.Get("gemini").RecordFailure() // trips immediately at threshold 1

	r := newTestRouter(primary, secondary, func(cfg *Config) { cfg.Breakers = breakers })

	text, provider, err := r.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider != "openai" || text != "served by fallback" {
		t.Errorf("got (%q, %q)", text, provider)
	}
	if primary.callCount() != 0 {
		t.Error("open breaker must short-circuit the provider entirely")
	}
}

func TestPromptCacheCountsReuse(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", results: []fakeResult{{text: "a"}}}
	secondary := &fakeProvider{name: "openai", results: []fakeResult{{text: "b"}}}
	pc := NewPromptCache(true)
	r := newTestRouter(primary, secondary, func(cfg *Config) { cfg.PromptCache = pc })

	req := Request{System: "You are an evaluator.", Prompt: "score this"}
	for i := 0; i < 3; i++ {
		if _, _, err := r.Generate(context.Background(), req); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}

	stats := r.PromptCacheStats()
	if stats.Misses != 1 || stats.Hits != 2 {
		t.Errorf("stats = %+v, want 1 miss then 2 hits", stats)
	}
	if stats.EstimatedTokensSaved == 0 {
		t.Error("reuse must report token savings")
	}
}
