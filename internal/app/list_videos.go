package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Amund211/vidcat/internal/adapters/cache"
	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
)

const MAX_PAGE_SIZE = 50
const MAX_QUERY_LENGTH = 100

type ListVideos func(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error)

type videoPageProvider interface {
	ListVideos(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error)
}

func validatePageRequest(page, pageSize int, query string) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", domain.ErrInvalidInput, page)
	}
	if pageSize < 1 || pageSize > MAX_PAGE_SIZE {
		return fmt.Errorf("%w: page size must be between 1 and %d, got %d", domain.ErrInvalidInput, MAX_PAGE_SIZE, pageSize)
	}
	if len(query) > MAX_QUERY_LENGTH {
		return fmt.Errorf("%w: query too long. input: '%.40s'", domain.ErrInvalidInput, query)
	}
	return nil
}

// BuildListVideos lists pages of the catalog. When a fetched page has a successor, the
// successor is prefetched at low priority into pageCache.
func BuildListVideos(
	c *coordinator.Coordinator,
	pageCache cache.Cache[coordinator.Key, domain.VideoPage],
	provider videoPageProvider,
) ListVideos {
	queuedListVideos := func(ctx context.Context, page, pageSize int, query string, priority int) (domain.VideoPage, error) {
		key := coordinator.VideoPageKey(page, pageSize, query)
		return coordinator.Queued(ctx, c, key, priority, func(ctx context.Context) (domain.VideoPage, error) {
			ctx, cancel := context.WithTimeout(ctx, providerTimeout)
			defer cancel()
			return provider.ListVideos(ctx, page, pageSize, query)
		})
	}

	prefetchNextPage := func(ctx context.Context, videoPage domain.VideoPage, query string) {
		if !videoPage.HasNextPage() {
			return
		}
		page := videoPage.Page + 1
		pageSize := videoPage.PageSize
		key := coordinator.VideoPageKey(page, pageSize, query)

		logging.FromContext(ctx).DebugContext(ctx, "Prefetching next page", "key", key.String())
		c.Prefetch(ctx, key, func(ctx context.Context) (any, error) {
			nextPage, err := queuedListVideos(ctx, page, pageSize, query, coordinator.PriorityLow)
			if err != nil {
				return nil, err
			}
			pageCache.Set(key, nextPage)
			return nextPage, nil
		}, 0)
	}

	return func(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error) {
		query = strings.TrimSpace(query)
		if err := validatePageRequest(page, pageSize, query); err != nil {
			return domain.VideoPage{}, err
		}

		key := coordinator.VideoPageKey(page, pageSize, query)
		videoPage, created, err := cache.GetOrCreate(ctx, pageCache, key, func() (domain.VideoPage, error) {
			return coordinator.Deduplicated(ctx, c, key, func(ctx context.Context) (domain.VideoPage, error) {
				return queuedListVideos(ctx, page, pageSize, query, coordinator.PriorityNormal)
			})
		})
		if err != nil {
			// NOTE: videoPageProvider implementations handle their own error reporting
			return domain.VideoPage{}, fmt.Errorf("could not list videos: %w", err)
		}

		if created {
			prefetchNextPage(ctx, videoPage, query)
		}

		return videoPage, nil
	}
}
