package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/ratelimiting"
	"github.com/Amund211/vidcat/internal/reporting"
)

func NewRateLimitMiddleware(rateLimiter ratelimiting.RequestRateLimiter, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rateLimiter.Consume(r) {
				onLimitExceeded(w, r)
				return
			}

			next(w, r)
		}
	}
}

func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	first := middlewares[0]
	rest := ComposeMiddlewares(middlewares[1:]...)
	return func(h http.HandlerFunc) http.HandlerFunc {
		return first(rest(h))
	}
}

type rateLimits struct {
	ipRefillPerSecond     ratelimiting.RefillPerSecond
	ipBurstSize           ratelimiting.BurstSize
	userIDRefillPerSecond ratelimiting.RefillPerSecond
	userIDBurstSize       ratelimiting.BurstSize
}

// Listing pages and the feed fan out to many requests upstream
var (
	defaultRateLimits = rateLimits{
		ipRefillPerSecond:     8,
		ipBurstSize:           480,
		userIDRefillPerSecond: 2,
		userIDBurstSize:       120,
	}
	expensiveRateLimits = rateLimits{
		ipRefillPerSecond:     2,
		ipBurstSize:           120,
		userIDRefillPerSecond: 0.5,
		userIDBurstSize:       30,
	}
)

func onLimitExceeded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	statusCode := http.StatusTooManyRequests

	logging.FromContext(ctx).InfoContext(ctx, "Rate limit exceeded", "statusCode", statusCode, "reason", "ratelimit exceeded")

	writeErrorCause(w, "rate limit exceeded", statusCode)
}

// buildEndpointMiddleware is the middleware stack shared by all endpoints
func buildEndpointMiddleware(
	operation string,
	allowedOrigins *DomainSuffixes,
	limits rateLimits,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) func(http.HandlerFunc) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(limits.ipRefillPerSecond, limits.ipBurstSize)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)
	userIDLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(limits.userIDRefillPerSecond, limits.userIDBurstSize)
	userIDRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		userIDLimiter,
		ratelimiting.UserIDKeyFunc,
	)

	return ComposeMiddlewares(
		buildMetricsMiddleware(operation),
		logging.NewRequestLoggerMiddleware(rootLogger.With(slog.String("operation", operation))),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(operation),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(ipRateLimiter, onLimitExceeded),
		NewRateLimitMiddleware(userIDRateLimiter, onLimitExceeded),
	)
}
