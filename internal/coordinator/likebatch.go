package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type likeBatchResult struct {
	status domain.LikeStatus
	err    error
}

type likeBatchWaiter struct {
	code   string
	result chan<- likeBatchResult
}

type likeBatchGroup struct {
	waiters   []likeBatchWaiter
	createdAt time.Time
}

func (g *likeBatchGroup) uniqueCodes() []string {
	seen := make(map[string]struct{}, len(g.waiters))
	codes := make([]string, 0, len(g.waiters))
	for _, waiter := range g.waiters {
		if _, ok := seen[waiter.code]; ok {
			continue
		}
		seen[waiter.code] = struct{}{}
		codes = append(codes, waiter.code)
	}
	return codes
}

// BatchLikeStatus resolves the like status of one item through a combined request.
//
// Calls arriving within BatchDelay of the call that armed the flush timer share a flush.
// A group holds at most MaxBatchSize calls, further calls open a new group that is flushed
// by the same timer, each group with its own request, in creation order.
//
// Precondition: all callers within one flush window must pass the same userID. The
// userID of the call that armed the timer is used for every group in the flush.
func (c *Coordinator) BatchLikeStatus(ctx context.Context, code string, userID string) (domain.LikeStatus, error) {
	result := make(chan likeBatchResult, 1)

	c.mu.Lock()
	var group *likeBatchGroup
	if n := len(c.likeBatches); n > 0 && len(c.likeBatches[n-1].waiters) < c.config.MaxBatchSize {
		group = c.likeBatches[n-1]
	} else {
		group = &likeBatchGroup{createdAt: c.nowFunc()}
		c.likeBatches = append(c.likeBatches, group)
	}
	group.waiters = append(group.waiters, likeBatchWaiter{code: code, result: result})

	if c.flushTimer == nil {
		c.flushGeneration++
		generation := c.flushGeneration
		flushCtx := context.WithoutCancel(ctx)
		c.flushUserID = userID
		c.flushTimer = time.AfterFunc(c.config.BatchDelay, func() {
			c.flushLikeBatches(flushCtx, generation)
		})
	}
	c.mu.Unlock()

	select {
	case res := <-result:
		return res.status, res.err
	case <-ctx.Done():
		return domain.LikeStatus{}, ctx.Err()
	}
}

func (c *Coordinator) flushLikeBatches(ctx context.Context, generation uint64) {
	c.mu.Lock()
	if c.flushTimer == nil || c.flushGeneration != generation {
		// Cleared (and possibly re-armed) after this timer fired
		c.mu.Unlock()
		return
	}
	groups := c.likeBatches
	userID := c.flushUserID
	c.likeBatches = nil
	c.flushTimer = nil
	c.flushUserID = ""
	c.mu.Unlock()

	for _, group := range groups {
		c.flushLikeBatch(ctx, group, userID)
	}
}

func (c *Coordinator) flushLikeBatch(ctx context.Context, group *likeBatchGroup, userID string) {
	itemCodes := group.uniqueCodes()

	ctx, span := c.tracer.Start(ctx, "Coordinator.flushLikeBatch", trace.WithAttributes(
		attribute.Int("code_count", len(itemCodes)),
		attribute.Int("waiter_count", len(group.waiters)),
	))
	defer span.End()

	ctx = logging.WithComponent(ctx, "coordinator")
	logging.FromContext(ctx).DebugContext(
		ctx,
		"Flushing like status batch",
		"codeCount", len(itemCodes),
		"waiterCount", len(group.waiters),
		"age", c.nowFunc().Sub(group.createdAt).String(),
	)

	c.metrics.batchSize.Record(ctx, int64(len(itemCodes)))

	statuses, err := c.fetchLikeStatusBatch(ctx, itemCodes, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "combined like status request failed")
		c.metrics.batchFlushCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))

		for _, waiter := range group.waiters {
			waiter.result <- likeBatchResult{err: err}
		}
		return
	}

	c.metrics.batchFlushCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))

	for _, waiter := range group.waiters {
		status, ok := statuses[waiter.code]
		if !ok {
			waiter.result <- likeBatchResult{err: fmt.Errorf("%w: %s", ErrNotFoundInBatch, waiter.code)}
			continue
		}
		waiter.result <- likeBatchResult{status: status}
	}
}

func (c *Coordinator) fetchLikeStatusBatch(ctx context.Context, codes []string, userID string) (statuses map[string]domain.LikeStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			statuses = nil
			err = fmt.Errorf("%w: %v", ErrFetchPanicked, r)
		}
	}()

	return c.fetcher.GetLikeStatusBatch(ctx, codes, userID)
}
