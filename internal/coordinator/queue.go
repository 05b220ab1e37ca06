package coordinator

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Amund211/vidcat/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type fetchResult struct {
	value any
	err   error
}

type queuedRequest struct {
	ctx      context.Context
	key      Key
	priority int
	sequence uint64
	queuedAt time.Time
	fetch    Fetch
	result   chan fetchResult
}

// QueueRequest runs fetch once fewer than MaxConcurrentRequests fetches are active.
// Pending requests are dispatched highest priority first, in arrival order among
// equal priorities. A request that has not been dispatched yet can be overtaken by a
// later one with a higher priority. Queued work is never dropped, except by Clear.
func (c *Coordinator) QueueRequest(ctx context.Context, key Key, fetch Fetch, priority int) (any, error) {
	request := &queuedRequest{
		ctx:      context.WithoutCancel(ctx),
		key:      key,
		priority: priority,
		queuedAt: c.nowFunc(),
		fetch:    fetch,
		result:   make(chan fetchResult, 1),
	}

	c.mu.Lock()
	c.queueSequence++
	request.sequence = c.queueSequence
	c.queue = append(c.queue, request)
	c.dispatchLocked()
	c.mu.Unlock()

	select {
	case res := <-request.result:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dispatchLocked is the drain loop. mu must be held, which also makes sure only one
// drain runs at a time. Completions that arrive meanwhile wait for mu and drain again.
func (c *Coordinator) dispatchLocked() {
	if c.active >= c.config.MaxConcurrentRequests || len(c.queue) == 0 {
		return
	}

	slices.SortFunc(c.queue, func(a, b *queuedRequest) int {
		return cmp.Or(
			cmp.Compare(b.priority, a.priority),
			cmp.Compare(a.sequence, b.sequence),
		)
	})

	for c.active < c.config.MaxConcurrentRequests && len(c.queue) > 0 {
		next := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]

		c.active++
		go c.runQueued(next, c.epoch)
	}
}

func (c *Coordinator) runQueued(request *queuedRequest, epoch uint64) {
	ctx, span := c.tracer.Start(request.ctx, "Coordinator.dispatch", trace.WithAttributes(
		attribute.String("key", request.key.String()),
		attribute.Int("priority", request.priority),
	))

	ctx = logging.WithComponent(ctx, "coordinator")
	wait := c.nowFunc().Sub(request.queuedAt)
	c.metrics.queueWait.Record(ctx, wait.Seconds())
	logging.FromContext(ctx).DebugContext(ctx, "Dispatching queued request", "key", request.key.String(), "priority", request.priority, "wait", wait.String())

	value, err := safeFetch(ctx, request.fetch)
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	c.mu.Lock()
	if c.epoch == epoch {
		c.active--
		c.dispatchLocked()
	}
	c.mu.Unlock()

	request.result <- fetchResult{value: value, err: err}
}
