package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Amund211/vidcat/internal/app"
	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/reporting"
)

type videoResponse struct {
	Code            string   `json:"code"`
	Title           string   `json:"title"`
	Studio          string   `json:"studio"`
	Series          string   `json:"series"`
	Description     string   `json:"description"`
	ReleaseDate     *string  `json:"releaseDate"`
	DurationSeconds int      `json:"durationSeconds"`
	ThumbnailURL    string   `json:"thumbnailUrl"`
	CoverURL        string   `json:"coverUrl"`
	Categories      []string `json:"categories"`
	Cast            []string `json:"cast"`
	Views           int      `json:"views"`
}

type videoPageResponse struct {
	Items      []videoResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type likeStatusResponse struct {
	Code  string `json:"code"`
	Liked bool   `json:"liked"`
	Count int    `json:"count"`
}

type feedItemResponse struct {
	Video videoResponse `json:"video"`
	Liked bool          `json:"liked"`
	Likes int           `json:"likes"`
}

type feedResponse struct {
	Items      []feedItemResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type coordinatorStatsResponse struct {
	Pending        int  `json:"pending"`
	Queued         int  `json:"queued"`
	Active         int  `json:"active"`
	BatchGroups    int  `json:"batchGroups"`
	BatchedItems   int  `json:"batchedItems"`
	FlushScheduled bool `json:"flushScheduled"`
}

type statsResponse struct {
	Shared        coordinatorStatsResponse `json:"shared"`
	Sessions      int                      `json:"sessions"`
	SessionTotals coordinatorStatsResponse `json:"sessionTotals"`
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func videoToResponse(video domain.Video) videoResponse {
	var releaseDate *string
	if !video.ReleaseDate.IsZero() {
		formatted := video.ReleaseDate.Format(time.DateOnly)
		releaseDate = &formatted
	}

	return videoResponse{
		Code:            video.Code,
		Title:           video.Title,
		Studio:          video.Studio,
		Series:          video.Series,
		Description:     video.Description,
		ReleaseDate:     releaseDate,
		DurationSeconds: int(video.Duration.Seconds()),
		ThumbnailURL:    video.ThumbnailURL,
		CoverURL:        video.CoverURL,
		Categories:      nonNil(video.Categories),
		Cast:            nonNil(video.Cast),
		Views:           video.Views,
	}
}

func videoPageToResponse(videoPage domain.VideoPage) videoPageResponse {
	items := make([]videoResponse, 0, len(videoPage.Items))
	for _, video := range videoPage.Items {
		items = append(items, videoToResponse(video))
	}
	return videoPageResponse{
		Items:      items,
		Total:      videoPage.Total,
		Page:       videoPage.Page,
		PageSize:   videoPage.PageSize,
		TotalPages: videoPage.TotalPages,
	}
}

func feedToResponse(feed domain.Feed) feedResponse {
	items := make([]feedItemResponse, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, feedItemResponse{
			Video: videoToResponse(item.Video),
			Liked: item.LikeStatus.Liked,
			Likes: item.LikeStatus.Count,
		})
	}
	return feedResponse{
		Items:      items,
		Total:      feed.Total,
		Page:       feed.Page,
		PageSize:   feed.PageSize,
		TotalPages: feed.TotalPages,
	}
}

func coordinatorStatsToResponse(stats coordinator.Stats) coordinatorStatsResponse {
	return coordinatorStatsResponse(stats)
}

func statsToResponse(stats app.CoordinatorStats) statsResponse {
	return statsResponse{
		Shared:        coordinatorStatsToResponse(stats.Shared),
		Sessions:      stats.Sessions,
		SessionTotals: coordinatorStatsToResponse(stats.SessionTotals),
	}
}

func writeErrorCause(w http.ResponseWriter, cause string, statusCode int) {
	data, err := json.Marshal(struct {
		Success bool   `json:"success"`
		Cause   string `json:"cause"`
	}{Success: false, Cause: cause})
	if err != nil {
		data = []byte(`{"success":false,"cause":"internal server error"}`)
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

// writeAppError maps errors from the app layer to a response
func writeAppError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		logger.InfoContext(ctx, "Invalid input. Returning error", "statusCode", http.StatusBadRequest, "error", err)
		writeErrorCause(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, domain.ErrVideoNotFound):
		logger.InfoContext(ctx, "Video not found", "statusCode", http.StatusNotFound, "error", err)
		writeErrorCause(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrTemporarilyUnavailable):
		logger.ErrorContext(ctx, "Temporarily unavailable", "statusCode", http.StatusServiceUnavailable, "error", err)
		writeErrorCause(w, "temporarily unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(ctx, "Request timed out", "statusCode", http.StatusGatewayTimeout, "error", err)
		writeErrorCause(w, "timed out", http.StatusGatewayTimeout)
	default:
		logger.ErrorContext(ctx, "Internal error", "statusCode", http.StatusInternalServerError, "error", err)
		reporting.Report(ctx, err)
		writeErrorCause(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSONResponse(ctx context.Context, w http.ResponseWriter, response any) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to marshal response", "error", err)
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		writeErrorCause(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(data); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to write response", "error", err)
		reporting.Report(ctx, fmt.Errorf("failed to write response: %w", err))
	}
}
