package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/strutils"
	"golang.org/x/sync/errgroup"
)

type GetFeed func(ctx context.Context, page, pageSize int, query string, userID string) (domain.Feed, error)

// BuildGetFeed joins a page of videos with the like status of each video. The like
// status lookups are issued concurrently so they end up in the same batch.
func BuildGetFeed(listVideos ListVideos, getLikeStatus GetLikeStatus) GetFeed {
	return func(ctx context.Context, page, pageSize int, query string, userID string) (domain.Feed, error) {
		videoPage, err := listVideos(ctx, page, pageSize, query)
		if err != nil {
			return domain.Feed{}, fmt.Errorf("failed to list videos for feed: %w", err)
		}

		items := make([]domain.FeedItem, len(videoPage.Items))

		g, gctx := errgroup.WithContext(ctx)
		for i, video := range videoPage.Items {
			items[i].Video = video
			g.Go(func() error {
				if _, err := strutils.NormalizeVideoCode(video.Code); err != nil {
					logging.FromContext(ctx).WarnContext(ctx, "Catalog returned invalid video code, skipping like status", "code", video.Code, "error", err.Error())
					return nil
				}

				status, err := getLikeStatus(gctx, video.Code, userID)
				if errors.Is(err, domain.ErrVideoNotFound) {
					// No likes recorded for this video
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to get like status for %s: %w", video.Code, err)
				}
				items[i].LikeStatus = status
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return domain.Feed{}, err
		}

		return domain.Feed{
			Items:      items,
			Total:      videoPage.Total,
			Page:       videoPage.Page,
			PageSize:   videoPage.PageSize,
			TotalPages: videoPage.TotalPages,
		}, nil
	}
}
