package cache

import "sync"

type basicCache[K comparable, T any] struct {
	cache     map[K]T
	cacheLock sync.Mutex
}

func (c *basicCache[K, T]) Get(key K) (T, bool) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	data, ok := c.cache[key]
	return data, ok
}

func (c *basicCache[K, T]) Set(key K, data T) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache[key] = data
}

func (c *basicCache[K, T]) Delete(key K) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	delete(c.cache, key)
}

// NewBasicCache never expires entries
func NewBasicCache[K comparable, T any]() *basicCache[K, T] {
	return &basicCache[K, T]{
		cache: make(map[K]T),
	}
}
