package catalogapi

import (
	"context"

	"github.com/Amund211/vidcat/internal/domain"
)

const MaxBatchSize = domain.MaxLikeStatusBatchSize

type CatalogAPI interface {
	// Returns domain.ErrVideoNotFound if there is no video with the given code.
	//
	// Returns domain.ErrTemporarilyUnavailable if the catalog responds with an error believed to be intermittent. The call may be retried later.
	GetVideo(ctx context.Context, code string) (domain.Video, error)

	ListVideos(ctx context.Context, page, pageSize int, query string) (domain.VideoPage, error)

	GetLikeStatus(ctx context.Context, code string, userID string) (domain.LikeStatus, error)

	// Codes missing from the catalog response are missing from the returned map.
	//
	// Returns ErrTooManyCodes if more than MaxBatchSize codes are given.
	GetLikeStatusBatch(ctx context.Context, codes []string, userID string) (map[string]domain.LikeStatus, error)
}
