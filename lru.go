package scixtract

import (
	"container/list"
	"sync"
)

// LRUCache is a thread-safe LRU cache. The store fronts document-record
// lookups with it so repeated batch runs don't hit SQLite for every
// already-seen file path.
type LRUCache struct {
	capacity int
	cache    map[string]*list.Element
	list     *list.List
	mu       sync.Mutex
}

// entry holds a key-value pair
type entry struct {
	key   string
	value interface{}
}

// NewLRUCache creates a new LRU cache with the given capacity. When the
// cache is full, least recently accessed entries are evicted.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		list:     list.New(),
	}
}

// Get retrieves a value from the cache
func (lru *LRUCache) Get(key string) (interface{}, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		lru.list.MoveToFront(elem)
		return elem.Value.(*entry).value, true
	}
	return nil, false
}

// Put stores a value in the cache
func (lru *LRUCache) Put(key string, value interface{}) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		elem.Value.(*entry).value = value
		lru.list.MoveToFront(elem)
		return
	}

	if lru.list.Len() >= lru.capacity {
		back := lru.list.Back()
		if back != nil {
			delete(lru.cache, back.Value.(*entry).key)
			lru.list.Remove(back)
		}
	}

	elem := lru.list.PushFront(&entry{key: key, value: value})
	lru.cache[key] = elem
}

// Delete removes a key from the cache. The store invalidates a document's
// cached record through it when the document is removed from the index.
func (lru *LRUCache) Delete(key string) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.cache[key]; ok {
		delete(lru.cache, key)
		lru.list.Remove(elem)
	}
}
