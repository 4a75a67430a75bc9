package ntfs

import (
	"container/list"
	"sync"
)

// defaultCacheCapacity bounds how many decoded MFT records are memoized at
// once. The source repository's cache is unbounded; a recovery scan walks
// every record in the table, so an unbounded map would grow to the size of
// the whole MFT. A few thousand entries comfortably covers directory-walk
// working sets without unbounded growth.
const defaultCacheCapacity = 4096

// mftCache is a bounded, least-recently-used cache of decoded MFT records
// keyed by record index. Entries are write-once: since the underlying
// image is read-only, a record decoded once never changes, so eviction
// only ever drops a cached copy, never loses information that must be
// re-derived differently.
type mftCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	index  uint64
	record *MFTRecord
}

func newMFTCache(capacity int) *mftCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &mftCache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

func (c *mftCache) get(index uint64) (*MFTRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[index]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).record, true
}

// put stores a record for index, unless one is already cached — first
// decode wins, matching the read-only, write-once cache semantics.
func (c *mftCache) put(index uint64, record *MFTRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[index]; ok {
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{index: index, record: record})
	c.entries[index] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).index)
	}
}

func (c *mftCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
