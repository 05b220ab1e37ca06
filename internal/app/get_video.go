package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/vidcat/internal/adapters/cache"
	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/strutils"
)

const providerTimeout = 10 * time.Second

type GetVideo func(ctx context.Context, code string) (domain.Video, error)

type videoProvider interface {
	GetVideo(ctx context.Context, code string) (domain.Video, error)
}

func buildGetVideoWithoutCache(
	c *coordinator.Coordinator,
	provider videoProvider,
) func(ctx context.Context, code string) (domain.Video, error) {
	return func(ctx context.Context, code string) (domain.Video, error) {
		key := coordinator.VideoKey(code)
		video, err := coordinator.Deduplicated(ctx, c, key, func(ctx context.Context) (domain.Video, error) {
			return coordinator.Queued(ctx, c, key, coordinator.PriorityHigh, func(ctx context.Context) (domain.Video, error) {
				ctx, cancel := context.WithTimeout(ctx, providerTimeout)
				defer cancel()
				return provider.GetVideo(ctx, code)
			})
		})
		if err != nil {
			// NOTE: videoProvider implementations handle their own error reporting
			return domain.Video{}, fmt.Errorf("could not get video: %w", err)
		}

		return video, nil
	}
}

func BuildGetVideoWithCache(
	c *coordinator.Coordinator,
	videoCache cache.Cache[coordinator.Key, domain.Video],
	provider videoProvider,
) GetVideo {
	getVideoWithoutCache := buildGetVideoWithoutCache(c, provider)

	return func(ctx context.Context, code string) (domain.Video, error) {
		normalized, err := strutils.NormalizeVideoCode(code)
		if err != nil {
			return domain.Video{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}

		video, _, err := cache.GetOrCreate(ctx, videoCache, coordinator.VideoKey(normalized), func() (domain.Video, error) {
			return getVideoWithoutCache(ctx, normalized)
		})
		if err != nil {
			// NOTE: GetOrCreate only returns an error if create() fails
			return domain.Video{}, fmt.Errorf("failed to cache.GetOrCreate video: %w", err)
		}

		return video, nil
	}
}
