package coordinator

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

type coordinatorMetricsCollection struct {
	dedupFetchCount  metric.Int64Counter
	dedupJoinedCount metric.Int64Counter
	batchFlushCount  metric.Int64Counter
	batchSize        metric.Int64Histogram
	queueWait        metric.Float64Histogram
}

func setupCoordinatorMetrics(meter metric.Meter) (coordinatorMetricsCollection, error) {
	dedupFetchCount, err := meter.Int64Counter(
		"coordinator/dedup_fetch_count",
		metric.WithDescription("Underlying fetches started by Deduplicate"),
	)
	if err != nil {
		return coordinatorMetricsCollection{}, fmt.Errorf("failed to create dedup fetch count metric: %w", err)
	}

	dedupJoinedCount, err := meter.Int64Counter(
		"coordinator/dedup_joined_count",
		metric.WithDescription("Calls to Deduplicate that joined an in-flight fetch"),
	)
	if err != nil {
		return coordinatorMetricsCollection{}, fmt.Errorf("failed to create dedup joined count metric: %w", err)
	}

	batchFlushCount, err := meter.Int64Counter(
		"coordinator/batch_flush_count",
		metric.WithDescription("Combined like status requests sent"),
	)
	if err != nil {
		return coordinatorMetricsCollection{}, fmt.Errorf("failed to create batch flush count metric: %w", err)
	}

	batchSize, err := meter.Int64Histogram(
		"coordinator/batch_size",
		metric.WithDescription("Unique item codes per combined like status request"),
	)
	if err != nil {
		return coordinatorMetricsCollection{}, fmt.Errorf("failed to create batch size metric: %w", err)
	}

	queueWait, err := meter.Float64Histogram(
		"coordinator/queue_wait_seconds",
		metric.WithDescription("Time spent in the priority queue before dispatch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return coordinatorMetricsCollection{}, fmt.Errorf("failed to create queue wait metric: %w", err)
	}

	return coordinatorMetricsCollection{
		dedupFetchCount:  dedupFetchCount,
		dedupJoinedCount: dedupJoinedCount,
		batchFlushCount:  batchFlushCount,
		batchSize:        batchSize,
		queueWait:        queueWait,
	}, nil
}
