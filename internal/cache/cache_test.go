package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeStore is an in-memory SharedStore with injectable failures
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
	gets    int
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failing {
		return nil, false, errors.New("store down")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) SetEx(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.failing {
		return errors.New("store down")
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("store down")
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("store down")
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestKeysFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		key        string
		wantSame   bool
		wantL2Form string
	}{
		{"industry prefix kept verbatim", "ind:software", true, "ind:software"},
		{"role prefix kept verbatim", "role:backend engineer", true, "role:backend engineer"},
		{"score prefix kept verbatim", "score:abc123", true, "score:abc123"},
		{"raw text hashed", "hello world", false, "emb:"},
		{"unknown prefix hashed", "foo:bar", false, "emb:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l1, l2 := keysFor(tt.key)
			if tt.wantSame {
				if l1 != tt.key || l2 != tt.wantL2Form {
					t.Errorf("keysFor(%q) = (%q, %q)", tt.key, l1, l2)
				}
				return
			}
			if l1 == tt.key {
				t.Errorf("raw key %q must be hashed for L1", tt.key)
			}
			if !strings.HasPrefix(l2, "emb:") || !strings.Contains(l2, l1) {
				t.Errorf("l2 key %q must be emb:<l1 hash %q>", l2, l1)
			}
		})
	}
}

func TestKeysForCanonical(t *testing.T) {
	t.Parallel()

	// Set and get must agree: same input, same pair, every time
	for _, key := range []string{"ind:software", "some raw embedding text"} {
		a1, a2 := keysFor(key)
		b1, b2 := keysFor(key)
		if a1 != b1 || a2 != b2 {
			t.Errorf("keysFor(%q) not deterministic", key)
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore()
	c := New(10, store)

	// Explicit key path
	c.Set(ctx, "ind:software", []byte("technology"), time.Hour)
	if v, ok := c.Get(ctx, "ind:software"); !ok || string(v) != "technology" {
		t.Errorf("explicit key get = %q, %v", v, ok)
	}
	if _, ok := store.data["ind:software"]; !ok {
		t.Error("explicit key must reach the shared store verbatim")
	}

	// Hashed key path
	c.Set(ctx, "hello world", []byte("vector"), time.Hour)
	if v, ok := c.Get(ctx, "hello world"); !ok || string(v) != "vector" {
		t.Errorf("hashed key get = %q, %v", v, ok)
	}
}

func TestStatsCounters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := New(10, newFakeStore())

	c.Get(ctx, "missing")              // miss
	c.Set(ctx, "k", []byte("v"), time.Hour)
	c.Get(ctx, "k")                    // l1 hit
	c.Get(ctx, "k")                    // l1 hit

	s := c.Stats()
	if s.Misses != 1 || s.L1Hits != 2 || s.Total != 3 {
		t.Errorf("stats = %+v", s)
	}
	if s.HitRate <= 0 || s.HitRate > 1.0 {
		t.Errorf("hit rate %f out of range", s.HitRate)
	}
}

func TestL2HitPromotesToL1(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore()
	c := New(10, store)

	// Seed only the shared store, as another process would
	_, l2Key := keysFor("shared text")
	store.data[l2Key] = []byte("warm")

	if v, ok := c.Get(ctx, "shared text"); !ok || string(v) != "warm" {
		t.Fatalf("get = %q, %v", v, ok)
	}
	s := c.Stats()
	if s.L2Hits != 1 {
		t.Errorf("L2Hits = %d, want 1", s.L2Hits)
	}

	// Second read must be served by L1
	before := store.gets
	c.Get(ctx, "shared text")
	if store.gets != before {
		t.Error("promoted entry should not hit the shared store again")
	}
}

func TestSharedStoreFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore()
	store.failing = true
	c := New(10, store)

	// Neither call may panic or surface an error
	c.Set(ctx, "k", []byte("v"), time.Hour)
	if v, ok := c.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Errorf("L1 must still serve the value, got %q, %v", v, ok)
	}
}

func TestL1CapacityWithTouch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := New(1000, nil)
	for i := 0; i < 1000; i++ {
		c.Set(ctx, fmt.Sprintf("t_%d", i), []byte("x"), time.Hour)
	}
	if got := c.Stats().L1Size; got != 1000 {
		t.Fatalf("L1 size = %d, want 1000", got)
	}

	// Touch the oldest entry, then insert one more
	if _, ok := c.Get(ctx, "t_0"); !ok {
		t.Fatal("t_0 must be present")
	}
	c.Set(ctx, "t_1000", []byte("x"), time.Hour)

	if _, ok := c.Get(ctx, "t_0"); !ok {
		t.Error("t_0 was touched and must survive")
	}
	if _, ok := c.Get(ctx, "t_1"); ok {
		t.Error("t_1 was least recently used and must be evicted")
	}
	if got := c.Stats().L1Size; got != 1000 {
		t.Errorf("L1 size = %d, want 1000", got)
	}
}

func TestClearByPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore()
	c := New(10, store)

	c.Set(ctx, "ind:software", []byte("a"), time.Hour)
	c.Set(ctx, "role:dev", []byte("b"), time.Hour)

	c.Clear(ctx, "ind:")

	if _, ok := store.data["ind:software"]; ok {
		t.Error("ind: keys must be cleared from the shared store")
	}
	if _, ok := store.data["role:dev"]; !ok {
		t.Error("role: keys must survive a prefixed clear")
	}
	if c.Stats().L1Size != 0 {
		t.Error("L1 is always reset on clear")
	}
}
