package volume

import (
	"container/list"
	"sync"
)

// Cache is an LRU cache of completed volumes keyed by series UID plus the
// content-affecting build options. Entries are never mutated after insertion;
// concurrent reads are safe and duplicate inserts of one key are
// last-writer-wins, which is idempotent because volumes for identical keys
// are value-equal. A maxEntries of 0 means unbounded.
type Cache struct {
	mu         sync.RWMutex
	maxEntries int
	order      *list.List // front = most recently used
	items      map[string]*list.Element
	hits       uint64
	misses     uint64
}

type cacheEntry struct {
	key string
	vol *Volume
}

// CacheStats is a snapshot of cache occupancy and traffic.
type CacheStats struct {
	Size   int
	Keys   []string
	Hits   uint64
	Misses uint64
}

// NewCache returns a cache holding at most maxEntries volumes, evicting the
// least recently used entry when full. maxEntries 0 disables eviction.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns the cached volume for key, marking it most recently used.
func (c *Cache) Get(key string) (*Volume, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).vol, true
}

// Add inserts a volume under key, evicting the least recently used entry if
// the cache is over capacity.
func (c *Cache) Add(key string, vol *Volume) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).vol = vol
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, vol: vol})
	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Stats returns a snapshot of the cache contents, most recently used first.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := CacheStats{
		Size:   c.order.Len(),
		Hits:   c.hits,
		Misses: c.misses,
	}
	for el := c.order.Front(); el != nil; el = el.Next() {
		stats.Keys = append(stats.Keys, el.Value.(*cacheEntry).key)
	}
	return stats
}
