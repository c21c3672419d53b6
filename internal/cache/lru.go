package cache

import (
	"container/list"
	"sync"
)

type entry[V any] struct {
	key   string
	value V
	size  int64
}

// LRU is a thread-safe least-recently-used cache bounded by item count and
// total size. A zero limit means unbounded on that axis.
type LRU[V any] struct {
	mu       sync.Mutex
	maxItems int
	maxSize  int64
	size     int64
	items    map[string]*list.Element
	order    *list.List

	hits      int64
	misses    int64
	evictions int64
}

func NewLRU[V any](maxItems int, maxSizeBytes int64) *LRU[V] {
	return &LRU[V]{
		maxItems: maxItems,
		maxSize:  maxSizeBytes,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*entry[V]).value, true
}

// Put stores value with its approximate size in bytes.
func (c *LRU[V]) Put(key string, value V, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[V])
		c.size += size - e.size
		e.value, e.size = value, size
		c.order.MoveToFront(elem)
	} else {
		c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, size: size})
		c.size += size
	}
	c.evict()
}

// evict drops from the back until within limits. The newest entry always
// stays, even when it alone is over the size limit.
func (c *LRU[V]) evict() {
	for c.order.Len() > 1 {
		overItems := c.maxItems > 0 && c.order.Len() > c.maxItems
		overSize := c.maxSize > 0 && c.size > c.maxSize
		if !overItems && !overSize {
			return
		}
		c.remove(c.order.Back())
		c.evictions++
	}
}

func (c *LRU[V]) remove(elem *list.Element) {
	e := c.order.Remove(elem).(*entry[V])
	delete(c.items, e.key)
	c.size -= e.size
}

func (c *LRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if ok {
		c.remove(elem)
	}
	return ok
}

func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.size = 0
}

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Items     int     `json:"items"`
	Size      int64   `json:"size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		Items:     c.order.Len(),
		Size:      c.size,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		st.HitRate = float64(c.hits) / float64(total)
	}
	return st
}
