package ratelimiting

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrDeadlineTooSoon is returned when waiting for a free slot and running the operation
// would not finish before the deadline of the context.
var ErrDeadlineTooSoon = errors.New("rate limit wait would exceed deadline")

type RequestLimiter interface {
	Limit(ctx context.Context, maxOperationTime time.Duration, operation func(ctx context.Context)) error
}

// windowLimitRequestLimiter allows at most limit operations to finish within any window.
// An operation occupies a slot until it finishes, and the slot frees up one window after that.
type windowLimitRequestLimiter struct {
	limit     int
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	availableSlots chan struct{}

	mu sync.Mutex
	// Sorted oldest first
	finishedAt []time.Time
}

func NewWindowLimitRequestLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) RequestLimiter {
	availableSlots := make(chan struct{}, limit)
	finishedAt := make([]time.Time, 0, limit)

	// No finished operations within the window -> no waiting for the first operations
	longAgo := nowFunc().Add(-window)
	for range limit {
		availableSlots <- struct{}{}
		finishedAt = append(finishedAt, longAgo)
	}

	return &windowLimitRequestLimiter{
		limit:     limit,
		window:    window,
		nowFunc:   nowFunc,
		afterFunc: afterFunc,

		availableSlots: availableSlots,
		finishedAt:     finishedAt,
	}
}

func insertSortedOrder(arr []time.Time, t time.Time) []time.Time {
	i, _ := slices.BinarySearchFunc(arr, t, time.Time.Compare)
	return slices.Insert(arr, i, t)
}

func (l *windowLimitRequestLimiter) Limit(ctx context.Context, maxOperationTime time.Duration, operation func(ctx context.Context)) error {
	select {
	case <-l.availableSlots:
		defer func() {
			l.availableSlots <- struct{}{}
		}()
	case <-ctx.Done():
		return ctx.Err()
	}

	oldest, err := l.takeOldest(ctx, maxOperationTime)
	if err != nil {
		return err
	}
	// Put back what we took if we never run
	toInsert := oldest
	defer func() {
		l.insert(toInsert)
	}()

	if wait := l.waitFor(oldest); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.afterFunc(wait):
		}
	}

	operation(ctx)

	toInsert = l.nowFunc()
	return nil
}

func (l *windowLimitRequestLimiter) waitFor(finishedAt time.Time) time.Duration {
	return l.window - l.nowFunc().Sub(finishedAt)
}

func (l *windowLimitRequestLimiter) insert(finishedAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finishedAt = insertSortedOrder(l.finishedAt, finishedAt)
}

func (l *windowLimitRequestLimiter) takeOldest(ctx context.Context, maxOperationTime time.Duration) (time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	oldest := l.finishedAt[0]

	if deadline, ok := ctx.Deadline(); ok {
		wait := max(l.waitFor(oldest), 0)
		if wait+maxOperationTime > deadline.Sub(l.nowFunc()) {
			return time.Time{}, ErrDeadlineTooSoon
		}
	}

	l.finishedAt = l.finishedAt[1:]
	return oldest, nil
}
