package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/vidcat/internal/app"
)

func MakeGetCoordinatorStatsHandler(
	getCoordinatorStats app.GetCoordinatorStats,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildEndpointMiddleware("get_coordinator_stats", allowedOrigins, defaultRateLimits, rootLogger, sentryMiddleware)

	return middleware(func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(r.Context(), w, statsToResponse(getCoordinatorStats()))
	})
}
