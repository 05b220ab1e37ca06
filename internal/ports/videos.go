package ports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Amund211/vidcat/internal/app"
	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/reporting"
)

const DEFAULT_PAGE_SIZE = 20

func parsePageParams(r *http.Request) (int, int, string, error) {
	values := r.URL.Query()

	page := 1
	if raw := values.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, "", fmt.Errorf("invalid page '%.20s': %w", raw, err)
		}
		page = parsed
	}

	pageSize := DEFAULT_PAGE_SIZE
	if raw := values.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, "", fmt.Errorf("invalid page size '%.20s': %w", raw, err)
		}
		pageSize = parsed
	}

	return page, pageSize, values.Get("q"), nil
}

func MakeGetVideoHandler(
	getVideo app.GetVideo,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildEndpointMiddleware("get_video", allowedOrigins, defaultRateLimits, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawCode := r.PathValue("code")
		ctx = logging.AddMetaToContext(ctx, slog.String("rawCode", rawCode))
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"rawCode": rawCode})

		video, err := getVideo(ctx, rawCode)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSONResponse(ctx, w, videoToResponse(video))
	}

	return middleware(handler)
}

func MakeListVideosHandler(
	listVideos app.ListVideos,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildEndpointMiddleware("list_videos", allowedOrigins, expensiveRateLimits, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		page, pageSize, query, err := parsePageParams(r)
		if err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid page parameters", "statusCode", http.StatusBadRequest, "error", err)
			writeErrorCause(w, "invalid page parameters", http.StatusBadRequest)
			return
		}
		ctx = logging.AddMetaToContext(ctx,
			slog.Int("page", page),
			slog.Int("pageSize", pageSize),
			slog.String("query", query),
		)

		videoPage, err := listVideos(ctx, page, pageSize, query)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSONResponse(ctx, w, videoPageToResponse(videoPage))
	}

	return middleware(handler)
}
