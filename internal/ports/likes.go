package ports

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Amund211/vidcat/internal/app"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/reporting"
	"github.com/Amund211/vidcat/internal/strutils"
)

func MakeGetLikeStatusHandler(
	getLikeStatus app.GetLikeStatus,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildEndpointMiddleware("get_like_status", allowedOrigins, defaultRateLimits, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawCode := r.PathValue("code")
		ctx = logging.AddMetaToContext(ctx, slog.String("rawCode", rawCode))
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"rawCode": rawCode})

		code, err := strutils.NormalizeVideoCode(rawCode)
		if err != nil {
			writeAppError(ctx, w, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
			return
		}

		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			logging.FromContext(ctx).InfoContext(ctx, "Missing user id", "statusCode", http.StatusBadRequest)
			writeErrorCause(w, "missing user id", http.StatusBadRequest)
			return
		}

		status, err := getLikeStatus(ctx, code, userID)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSONResponse(ctx, w, likeStatusResponse{
			Code:  code,
			Liked: status.Liked,
			Count: status.Count,
		})
	}

	return middleware(handler)
}
