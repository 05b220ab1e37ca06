// Package coordinator mediates outbound catalog requests made on behalf of the UI.
//
// It provides three independent behaviours sharing one purpose, reducing redundant
// and bursty network calls:
//   - Deduplicate: at most one in-flight fetch per Key, shared by all concurrent callers
//   - BatchLikeStatus: per-item like status lookups collapsed into one combined request
//   - QueueRequest: a priority ordered queue with a cap on concurrently active fetches
//
// A Coordinator is constructed explicitly and handed to whoever needs it. There is no
// package level instance.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Amund211/vidcat/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidConfig   = errors.New("invalid coordinator config")
	ErrNotFoundInBatch = errors.New("not found in batch response")
	ErrFetchPanicked   = errors.New("fetch panicked")
	ErrUnexpectedType  = errors.New("unexpected result type")
)

const (
	PriorityLow    = -10
	PriorityNormal = 0
	PriorityHigh   = 10
)

type Fetch func(ctx context.Context) (any, error)

type LikeBatchFetcher interface {
	GetLikeStatusBatch(ctx context.Context, codes []string, userID string) (map[string]domain.LikeStatus, error)
}

type Config struct {
	BatchDelay            time.Duration
	MaxBatchSize          int
	MaxConcurrentRequests int
	DefaultPrefetchDelay  time.Duration
}

func DefaultConfig() Config {
	return Config{
		BatchDelay:            50 * time.Millisecond,
		MaxBatchSize:          50,
		MaxConcurrentRequests: 6,
		DefaultPrefetchDelay:  1 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.BatchDelay <= 0 {
		return fmt.Errorf("%w: batch delay must be positive, got %s", ErrInvalidConfig, c.BatchDelay)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("%w: max batch size must be positive, got %d", ErrInvalidConfig, c.MaxBatchSize)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("%w: max concurrent requests must be positive, got %d", ErrInvalidConfig, c.MaxConcurrentRequests)
	}
	if c.DefaultPrefetchDelay <= 0 {
		return fmt.Errorf("%w: default prefetch delay must be positive, got %s", ErrInvalidConfig, c.DefaultPrefetchDelay)
	}
	return nil
}

type Stats struct {
	Pending        int
	Queued         int
	Active         int
	BatchGroups    int
	BatchedItems   int
	FlushScheduled bool
}

type pendingRequest struct {
	done      chan struct{}
	value     any
	err       error
	createdAt time.Time
}

type Coordinator struct {
	fetcher LikeBatchFetcher
	config  Config
	nowFunc func() time.Time

	// All fields below are guarded by mu and only mutated while it is held
	mu sync.Mutex

	pending map[Key]*pendingRequest

	likeBatches     []*likeBatchGroup
	flushTimer      *time.Timer
	flushGeneration uint64
	flushUserID     string

	queue         []*queuedRequest
	queueSequence uint64
	active        int
	// Bumped by Clear so fetches dispatched before the reset don't touch the new active count
	epoch uint64

	metrics coordinatorMetricsCollection
	tracer  trace.Tracer
}

func New(fetcher LikeBatchFetcher, config Config, nowFunc func() time.Time) (*Coordinator, error) {
	const name = "vidcat/coordinator"

	if err := config.Validate(); err != nil {
		return nil, err
	}

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupCoordinatorMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &Coordinator{
		fetcher: fetcher,
		config:  config,
		nowFunc: nowFunc,

		pending: make(map[Key]*pendingRequest),

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// Deduplicate runs fetch unless a fetch for the same key is already in flight, in which
// case it waits for that one instead. Every caller observes the same value or error.
// The entry is removed when the fetch settles, so later calls fetch again.
//
// The fetch is detached from the cancellation of the caller that started it. A caller
// whose ctx ends stops waiting and gets ctx.Err(), the fetch keeps running for the rest.
func (c *Coordinator) Deduplicate(ctx context.Context, key Key, fetch Fetch) (any, error) {
	c.mu.Lock()
	entry, joined := c.pending[key]
	if !joined {
		entry = &pendingRequest{
			done:      make(chan struct{}),
			createdAt: c.nowFunc(),
		}
		c.pending[key] = entry
	}
	c.mu.Unlock()

	attributes := metric.WithAttributes(attribute.String("resource", string(key.Resource)))
	if joined {
		c.metrics.dedupJoinedCount.Add(ctx, 1, attributes)
	} else {
		c.metrics.dedupFetchCount.Add(ctx, 1, attributes)
		go c.runPending(context.WithoutCancel(ctx), key, entry, fetch)
	}

	select {
	case <-entry.done:
		return entry.value, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) runPending(ctx context.Context, key Key, entry *pendingRequest, fetch Fetch) {
	value, err := safeFetch(ctx, fetch)

	c.mu.Lock()
	// Clear may have replaced the entry, only remove our own
	if current, ok := c.pending[key]; ok && current == entry {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	entry.value = value
	entry.err = err
	close(entry.done)
}

// Prefetch schedules a deduplicated fetch after delay and ignores the outcome.
// A non-positive delay uses the configured default.
func (c *Coordinator) Prefetch(ctx context.Context, key Key, fetch Fetch, delay time.Duration) {
	if delay <= 0 {
		delay = c.config.DefaultPrefetchDelay
	}

	prefetchCtx := context.WithoutCancel(ctx)
	time.AfterFunc(delay, func() {
		_, _ = c.Deduplicate(prefetchCtx, key, fetch)
	})
}

// Clear drops all bookkeeping: pending entries, batch groups, the flush timer and the queue.
//
// Callers waiting on dropped batch groups or queued requests are not notified; they
// stop waiting only when their own ctx ends. Fetches already running are left alone
// and their results are discarded.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = make(map[Key]*pendingRequest)

	c.likeBatches = nil
	if c.flushTimer != nil {
		c.flushTimer.Stop()
		c.flushTimer = nil
	}
	c.flushUserID = ""

	c.queue = nil
	c.active = 0
	c.epoch++
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	batchedItems := 0
	for _, group := range c.likeBatches {
		batchedItems += len(group.waiters)
	}

	return Stats{
		Pending:        len(c.pending),
		Queued:         len(c.queue),
		Active:         c.active,
		BatchGroups:    len(c.likeBatches),
		BatchedItems:   batchedItems,
		FlushScheduled: c.flushTimer != nil,
	}
}

func safeFetch(ctx context.Context, fetch Fetch) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: %v", ErrFetchPanicked, r)
		}
	}()

	return fetch(ctx)
}

// Deduplicated is a typed wrapper around Coordinator.Deduplicate
func Deduplicated[T any](ctx context.Context, c *Coordinator, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.Deduplicate(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	return typedResult[T](value, err)
}

// Queued is a typed wrapper around Coordinator.QueueRequest
func Queued[T any](ctx context.Context, c *Coordinator, key Key, priority int, fetch func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.QueueRequest(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}, priority)
	return typedResult[T](value, err)
}

func typedResult[T any](value any, err error) (T, error) {
	var empty T
	if err != nil {
		return empty, err
	}
	if value == nil {
		return empty, nil
	}
	typed, ok := value.(T)
	if !ok {
		return empty, fmt.Errorf("%w: %T", ErrUnexpectedType, value)
	}
	return typed, nil
}
