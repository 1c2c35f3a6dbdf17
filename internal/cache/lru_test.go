package cache

import (
	"fmt"
	"testing"
)

func TestLRUBounded(t *testing.T) {
	t.Parallel()

	c := newLRU(3)
	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("k%d", i), []byte{byte(i)})
		if c.Len() > 3 {
			t.Fatalf("size %d exceeds capacity after insert %d", c.Len(), i)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := newLRU(3)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Put("c", []byte("3"))

	// Read "a" so "b" becomes the oldest
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}

	c.Put("d", []byte("4"))

	if !c.Contains("a") {
		t.Error("a was touched and must survive")
	}
	if c.Contains("b") {
		t.Error("b was least recently used and must be evicted")
	}
	if !c.Contains("c") || !c.Contains("d") {
		t.Error("c and d must be present")
	}
}

func TestLRUUpdateDoesNotGrow(t *testing.T) {
	t.Parallel()

	c := newLRU(2)
	c.Put("a", []byte("1"))
	c.Put("a", []byte("2"))
	c.Put("b", []byte("3"))

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	v, ok := c.Get("a")
	if !ok || string(v) != "2" {
		t.Errorf("a = %q, want 2", v)
	}
}

func TestLRURemove(t *testing.T) {
	t.Parallel()

	c := newLRU(2)
	c.Put("a", []byte("1"))
	c.Remove("a")
	c.Remove("missing")

	if c.Contains("a") {
		t.Error("a should be gone")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
