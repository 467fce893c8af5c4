// Package cache provides an in-memory LRU cache for decoded sprite sheets.
// Decoding a gzipped WAV sheet costs far more than the lookup, so sheets are
// decoded once and held until size pressure evicts them.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/bleeptalk/animalese/voice"
)

// DefaultSizeLimit bounds the cache at 64MB of decoded audio, enough for
// every bundled voice sheet at once.
const DefaultSizeLimit = 64 * 1024 * 1024

// Stats counts cache activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// SheetCache is an LRU over decoded sample buffers keyed by source file
// identity. Safe for concurrent use.
type SheetCache struct {
	mu        sync.Mutex
	items     map[string]*list.Element
	lru       *list.List
	size      int64
	sizeLimit int64
	stats     Stats
}

type entry struct {
	key  string
	buf  *voice.SampleBuffer
	size int64
}

// New creates a cache bounded to sizeLimit bytes of decoded frames. A zero
// or negative limit falls back to DefaultSizeLimit.
func New(sizeLimit int64) *SheetCache {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	return &SheetCache{
		items:     make(map[string]*list.Element),
		lru:       list.New(),
		sizeLimit: sizeLimit,
	}
}

// Key builds a cache key from a file's identity. Including the modification
// time and size means an edited sheet misses and gets re-decoded.
func Key(path string, modTime time.Time, size int64) string {
	return fmt.Sprintf("%s|%d|%d", path, modTime.UnixNano(), size)
}

// Get returns the cached buffer for key, marking it most recently used.
func (c *SheetCache) Get(key string) (*voice.SampleBuffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.lru.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*entry).buf, true
}

// Put stores a decoded buffer, evicting least recently used sheets until the
// new entry fits. A buffer larger than the whole limit is not cached.
func (c *SheetCache) Put(key string, buf *voice.SampleBuffer) {
	if buf.Empty() {
		return
	}
	size := int64(len(buf.Frames)) * 4
	if size > c.sizeLimit {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		c.size -= ent.size
		ent.buf = buf
		ent.size = size
		c.size += size
		c.lru.MoveToFront(elem)
		return
	}

	for c.size+size > c.sizeLimit && c.lru.Len() > 0 {
		c.removeElement(c.lru.Back())
		c.stats.Evictions++
	}

	elem := c.lru.PushFront(&entry{key: key, buf: buf, size: size})
	c.items[key] = elem
	c.size += size
}

// Remove drops one entry.
func (c *SheetCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Purge drops everything.
func (c *SheetCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.size = 0
}

// Size returns the decoded bytes currently held.
func (c *SheetCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached sheets.
func (c *SheetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a copy of the activity counters.
func (c *SheetCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// removeElement drops one element. Caller holds the lock.
func (c *SheetCache) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.items, ent.key)
	c.lru.Remove(elem)
	c.size -= ent.size
}
