package ratelimiting

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSortedOrder(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	t4 := time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		arr      []time.Time
		toInsert time.Time
		expected []time.Time
	}{
		{name: "empty", arr: []time.Time{}, toInsert: t1, expected: []time.Time{t1}},
		{name: "beginning", arr: []time.Time{t2, t3, t4}, toInsert: t1, expected: []time.Time{t1, t2, t3, t4}},
		{name: "middle", arr: []time.Time{t1, t3, t4}, toInsert: t2, expected: []time.Time{t1, t2, t3, t4}},
		{name: "end", arr: []time.Time{t1, t2, t3}, toInsert: t4, expected: []time.Time{t1, t2, t3, t4}},
		{name: "duplicate", arr: []time.Time{t1, t2, t3, t4}, toInsert: t3, expected: []time.Time{t1, t2, t3, t3, t4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, c.expected, insertSortedOrder(c.arr, c.toInsert))
		})
	}
}

func TestWindowLimitRequestLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first operations run immediately", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			start := time.Now()
			l := NewWindowLimitRequestLimiter(3, time.Minute, time.Now, time.After)

			for range 3 {
				err := l.Limit(t.Context(), time.Second, func(ctx context.Context) {
					require.Equal(t, start, time.Now())
				})
				require.NoError(t, err)
			}
		})
	})

	t.Run("operations wait for the window", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			start := time.Now()
			l := NewWindowLimitRequestLimiter(2, time.Minute, time.Now, time.After)

			var mu sync.Mutex
			startedAt := []time.Duration{}

			wg := sync.WaitGroup{}
			for range 6 {
				wg.Go(func() {
					err := l.Limit(t.Context(), time.Second, func(ctx context.Context) {
						mu.Lock()
						startedAt = append(startedAt, time.Since(start))
						mu.Unlock()
						time.Sleep(time.Second)
					})
					assert.NoError(t, err)
				})
			}
			wg.Wait()

			require.Equal(t, []time.Duration{
				0, 0,
				61 * time.Second, 61 * time.Second,
				122 * time.Second, 122 * time.Second,
			}, startedAt)
		})
	})

	t.Run("deadline too soon", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			l := NewWindowLimitRequestLimiter(1, time.Minute, time.Now, time.After)

			require.NoError(t, l.Limit(t.Context(), time.Second, func(ctx context.Context) {}))

			ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
			defer cancel()

			ran := false
			err := l.Limit(ctx, time.Second, func(ctx context.Context) {
				ran = true
			})
			require.ErrorIs(t, err, ErrDeadlineTooSoon)
			require.False(t, ran)

			// The refused attempt did not use up the slot
			time.Sleep(time.Minute)
			require.NoError(t, l.Limit(t.Context(), time.Second, func(ctx context.Context) {
				ran = true
			}))
			require.True(t, ran)
		})
	})

	t.Run("deadline far enough away", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			start := time.Now()
			l := NewWindowLimitRequestLimiter(1, time.Minute, time.Now, time.After)

			require.NoError(t, l.Limit(t.Context(), time.Second, func(ctx context.Context) {}))

			ctx, cancel := context.WithTimeout(t.Context(), 2*time.Minute)
			defer cancel()

			err := l.Limit(ctx, time.Second, func(ctx context.Context) {
				require.Equal(t, start.Add(time.Minute), time.Now())
			})
			require.NoError(t, err)
		})
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, func(t *testing.T) {
			l := NewWindowLimitRequestLimiter(1, time.Minute, time.Now, time.After)

			require.NoError(t, l.Limit(t.Context(), time.Second, func(ctx context.Context) {}))

			ctx, cancel := context.WithCancel(t.Context())
			wg := sync.WaitGroup{}
			wg.Go(func() {
				err := l.Limit(ctx, time.Second, func(ctx context.Context) {
					t.Error("should not run")
				})
				assert.ErrorIs(t, err, context.Canceled)
			})

			time.Sleep(10 * time.Second)
			cancel()
			wg.Wait()
		})
	})
}
