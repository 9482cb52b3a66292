// Package cache provides caching utilities for atomgraph
package cache

import (
	"container/list"
	"encoding/binary"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/minio/highwayhash"
)

// LRU is a thread-safe least-recently-used cache. A capacity of zero or less
// disables it: Put is a no-op and every Get misses.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front is most recently used

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU creates a cache holding at most capacity entries
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Enabled reports whether the cache can hold entries
func (c *LRU[K, V]) Enabled() bool {
	return c.capacity > 0
}

// Get returns the value for key and marks it most recently used
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).value, true
}

// Put inserts or replaces the value for key
func (c *LRU[K, V]) Put(key K, value V) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(elem)
		return
	}

	for c.order.Len() >= c.capacity {
		c.removeElement(c.order.Back())
		c.evictions.Add(1)
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

func (c *LRU[K, V]) removeElement(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[K, V]).key)
	c.order.Remove(elem)
}

// Len returns the number of cached entries
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counts
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Evictions returns how many entries were pushed out by capacity
func (c *LRU[K, V]) Evictions() int64 {
	return c.evictions.Load()
}

// hashKey is the fixed HighwayHash key; cache keys only need to be stable per process
var hashKey = []byte("atomgraph-cache-key-0123456789ab")

// AtomCache memoises split results. Splitting is deterministic, so a result is
// fully identified by the splitter configuration and the payload content. Both
// are kept with the atoms so a hash collision reads as a miss.
type AtomCache struct {
	cache      *LRU[uint64, splitResult]
	key        func(fingerprint, content string) uint64
	collisions atomic.Int64
}

type splitResult struct {
	fingerprint string
	content     string
	atoms       []string
}

// NewAtomCache creates a cache for split results
func NewAtomCache(capacity int) *AtomCache {
	return &AtomCache{
		cache: NewLRU[uint64, splitResult](capacity),
		key:   Key,
	}
}

// Get retrieves the atoms for a configuration fingerprint and content
func (c *AtomCache) Get(fingerprint, content string) ([]string, bool) {
	r, ok := c.cache.Get(c.key(fingerprint, content))
	if !ok {
		return nil, false
	}
	if r.fingerprint != fingerprint || r.content != content {
		c.collisions.Add(1)
		return nil, false
	}
	// Callers own the returned slice
	return slices.Clone(r.atoms), true
}

// Put stores the atoms for a configuration fingerprint and content
func (c *AtomCache) Put(fingerprint, content string, atoms []string) {
	c.cache.Put(c.key(fingerprint, content), splitResult{
		fingerprint: fingerprint,
		content:     content,
		atoms:       slices.Clone(atoms),
	})
}

// Len returns the number of cached results
func (c *AtomCache) Len() int {
	return c.cache.Len()
}

// Evictions returns how many results were dropped to make room
func (c *AtomCache) Evictions() int64 {
	return c.cache.Evictions()
}

// Stats returns cache statistics. A lookup that found a colliding entry counts
// as a miss.
func (c *AtomCache) Stats() (hits, misses int64, hitRate float64) {
	hits, misses = c.cache.Stats()
	collisions := c.collisions.Load()
	hits -= collisions
	misses += collisions
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}
	return
}

// Key hashes a configuration fingerprint and content into a cache key.
// The fingerprint length is mixed in so ("ab", "c") and ("a", "bc") differ.
func Key(fingerprint, content string) uint64 {
	buf := make([]byte, 0, 8+len(fingerprint)+len(content))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(fingerprint)))
	buf = append(buf, fingerprint...)
	buf = append(buf, content...)
	return highwayhash.Sum64(buf, hashKey)
}
