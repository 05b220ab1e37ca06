package cache

import (
	"time"

	"github.com/Amund211/vidcat/internal/ttlcleanup"
	"github.com/jellydator/ttlcache/v3"
)

type ttlCache[K comparable, T any] struct {
	cache *ttlcache.Cache[K, T]
}

func (c *ttlCache[K, T]) Get(key K) (T, bool) {
	item := c.cache.Get(key)
	if item == nil {
		var empty T
		return empty, false
	}
	return item.Value(), true
}

func (c *ttlCache[K, T]) Set(key K, data T) {
	c.cache.Set(key, data, ttlcache.DefaultTTL)
}

func (c *ttlCache[K, T]) Delete(key K) {
	c.cache.Delete(key)
}

// NewTTLCache returns a cache whose entries expire ttl after being set. At most capacity
// entries are kept, evicting the least recently used. Call stop to end the expiry loop.
func NewTTLCache[K comparable, T any](ttl time.Duration, capacity uint64) (Cache[K, T], func()) {
	cache := ttlcache.New[K, T](
		ttlcache.WithTTL[K, T](ttl),
		ttlcache.WithCapacity[K, T](capacity),
		ttlcache.WithDisableTouchOnHit[K, T](),
	)
	return &ttlCache[K, T]{cache: cache}, ttlcleanup.Start(cache, ttl)
}
