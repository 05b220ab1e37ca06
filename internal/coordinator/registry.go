package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Amund211/vidcat/internal/ttlcleanup"
	"github.com/jellydator/ttlcache/v3"
)

// Registry hands out one Coordinator per user. Like status batches carry a single userID
// per flush, so callers for different users must not share a Coordinator.
//
// Coordinators unused for idleTTL, or pushed out by capacity, are dropped from the registry.
// Work already handed to a dropped coordinator still completes.
type Registry struct {
	fetcher LikeBatchFetcher
	config  Config
	nowFunc func() time.Time

	mu           sync.Mutex
	coordinators *ttlcache.Cache[string, *Coordinator]
}

func NewRegistry(fetcher LikeBatchFetcher, config Config, nowFunc func() time.Time, idleTTL time.Duration, capacity uint64) (*Registry, func(), error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	coordinators := ttlcache.New[string, *Coordinator](
		ttlcache.WithTTL[string, *Coordinator](idleTTL),
		ttlcache.WithCapacity[string, *Coordinator](capacity),
	)
	coordinators.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Coordinator]) {
		if reason == ttlcache.EvictionReasonDeleted {
			item.Value().Clear()
		}
	})
	stop := ttlcleanup.Start(coordinators, idleTTL)

	return &Registry{
		fetcher: fetcher,
		config:  config,
		nowFunc: nowFunc,

		coordinators: coordinators,
	}, stop, nil
}

// For returns the Coordinator of userID, creating it on first use
func (r *Registry) For(userID string) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item := r.coordinators.Get(userID); item != nil {
		return item.Value(), nil
	}

	c, err := New(r.fetcher, r.config, r.nowFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}
	r.coordinators.Set(userID, c, ttlcache.DefaultTTL)
	return c, nil
}

// Len is the number of live coordinators
func (r *Registry) Len() int {
	return r.coordinators.Len()
}

// Stats sums the stats of all live coordinators. FlushScheduled is set if any has a flush scheduled.
func (r *Registry) Stats() Stats {
	var total Stats
	r.coordinators.Range(func(item *ttlcache.Item[string, *Coordinator]) bool {
		stats := item.Value().Stats()
		total.Pending += stats.Pending
		total.Queued += stats.Queued
		total.Active += stats.Active
		total.BatchGroups += stats.BatchGroups
		total.BatchedItems += stats.BatchedItems
		total.FlushScheduled = total.FlushScheduled || stats.FlushScheduled
		return true
	})
	return total
}

// Clear clears and drops every coordinator
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.coordinators.DeleteAll()
}
