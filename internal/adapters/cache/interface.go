package cache

// Cache holds recently fetched values. It does not coordinate concurrent misses;
// callers route misses through the request coordinator for that.
type Cache[K comparable, T any] interface {
	Get(key K) (T, bool)
	Set(key K, data T)
	Delete(key K)
}
