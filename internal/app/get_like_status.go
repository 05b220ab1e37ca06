package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/reporting"
	"github.com/Amund211/vidcat/internal/strutils"
)

const MAX_USER_ID_LENGTH = 64

type GetLikeStatus func(ctx context.Context, code string, userID string) (domain.LikeStatus, error)

type likeBatchFetcherWithTimeout struct {
	fetcher coordinator.LikeBatchFetcher
}

func (f likeBatchFetcherWithTimeout) GetLikeStatusBatch(ctx context.Context, codes []string, userID string) (map[string]domain.LikeStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()
	return f.fetcher.GetLikeStatusBatch(ctx, codes, userID)
}

// WithProviderTimeout bounds every combined like status request. Batch flushes run
// detached from the callers, so nothing else limits them.
func WithProviderTimeout(fetcher coordinator.LikeBatchFetcher) coordinator.LikeBatchFetcher {
	return likeBatchFetcherWithTimeout{fetcher: fetcher}
}

func BuildGetLikeStatus(registry *coordinator.Registry) GetLikeStatus {
	return func(ctx context.Context, code string, userID string) (domain.LikeStatus, error) {
		normalized, err := strutils.NormalizeVideoCode(code)
		if err != nil {
			return domain.LikeStatus{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if len(userID) > MAX_USER_ID_LENGTH {
			return domain.LikeStatus{}, fmt.Errorf("%w: user id too long. input: '%.40s'", domain.ErrInvalidInput, userID)
		}

		c, err := registry.For(userID)
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to get coordinator for user: %w", err))
			return domain.LikeStatus{}, fmt.Errorf("failed to get coordinator for user: %w", err)
		}

		status, err := c.BatchLikeStatus(ctx, normalized, userID)
		if errors.Is(err, coordinator.ErrNotFoundInBatch) {
			return domain.LikeStatus{}, fmt.Errorf("%w: %w", domain.ErrVideoNotFound, err)
		}
		if err != nil {
			return domain.LikeStatus{}, fmt.Errorf("could not get like status: %w", err)
		}

		return status, nil
	}
}
