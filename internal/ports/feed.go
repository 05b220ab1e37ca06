package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/vidcat/internal/app"
	"github.com/Amund211/vidcat/internal/logging"
)

func MakeGetFeedHandler(
	getFeed app.GetFeed,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildEndpointMiddleware("get_feed", allowedOrigins, expensiveRateLimits, rootLogger, sentryMiddleware)

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

		// Anonymous users get like counts without their own like status
		userID := r.Header.Get("X-User-Id")

		feed, err := getFeed(ctx, page, pageSize, query, userID)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSONResponse(ctx, w, feedToResponse(feed))
	}

	return middleware(handler)
}
