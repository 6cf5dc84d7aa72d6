package scixtract

import "testing"

func TestLRUCacheBasic(t *testing.T) {
	cache := NewLRUCache(2)

	cache.Put("a", 1)
	cache.Put("b", 2)

	if v, ok := cache.Get("a"); !ok || v.(int) != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}

	// "b" is now least recently used; inserting "c" evicts it.
	cache.Put("c", 3)
	if _, ok := cache.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("c should be cached")
	}
}

func TestLRUCacheUpdate(t *testing.T) {
	cache := NewLRUCache(2)
	cache.Put("a", 1)
	cache.Put("a", 2)
	if v, _ := cache.Get("a"); v.(int) != 2 {
		t.Errorf("Get(a) = %v, want updated value", v)
	}

	// Updating in place must not consume capacity.
	cache.Put("b", 3)
	if _, ok := cache.Get("a"); !ok {
		t.Error("a should still be cached after update")
	}
}

func TestLRUCacheDelete(t *testing.T) {
	cache := NewLRUCache(4)
	cache.Put("a", 1)
	cache.Put("b", 2)

	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("a should be deleted")
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("b should be unaffected")
	}

	// Deleting an absent key is a no-op.
	cache.Delete("missing")
}

func TestLRUCacheZeroCapacity(t *testing.T) {
	cache := NewLRUCache(0)
	cache.Put("a", 1)
	if _, ok := cache.Get("a"); !ok {
		t.Error("fallback capacity should still cache entries")
	}
}
