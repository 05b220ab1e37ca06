package cache

import (
	"context"
	"fmt"

	"github.com/Amund211/vidcat/internal/logging"
)

// Returns data, created, error
func GetOrCreate[K comparable, T any](ctx context.Context, cache Cache[K, T], key K, create func() (T, error)) (T, bool, error) {
	if data, ok := cache.Get(key); ok {
		logging.FromContext(ctx).DebugContext(ctx, "Getting cached value", "cache", "hit")
		return data, false, nil
	}

	logging.FromContext(ctx).DebugContext(ctx, "Getting cached value", "cache", "miss")

	data, err := create()
	if err != nil {
		var empty T
		return empty, false, fmt.Errorf("failed to create cache entry: %w", err)
	}

	cache.Set(key, data)

	return data, true, nil
}
