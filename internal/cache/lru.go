package cache

import "container/list"

// lru is a least-recently-used map bounded to a fixed capacity.
// A read moves the entry to the front; eviction always takes the back.
// Not safe for concurrent use; TwoTier guards it with its own mutex.
type lru struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type lruEntry struct {
	key   string
	value []byte
}

func newLRU(capacity int) *lru {
	if capacity <= 0 {
		capacity = 1
	}
	return &lru{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the value and marks the entry as most recently used
func (c *lru) Get(key string) ([]byte, bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).value, true
}

// Put inserts or updates an entry, evicting the least recently used
// one when the cache is full
func (c *lru) Put(key string, value []byte) {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*lruEntry).value = value
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}

	c.items[key] = c.order.PushFront(&lruEntry{key: key, value: value})
}

// Remove deletes an entry if present
func (c *lru) Remove(key string) {
	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

// Contains reports presence without touching recency
func (c *lru) Contains(key string) bool {
	_, ok := c.items[key]
	return ok
}

func (c *lru) Len() int { return c.order.Len() }

// Reset drops every entry
func (c *lru) Reset() {
	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}
