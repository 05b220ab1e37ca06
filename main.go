package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/vidcat/internal/adapters/cache"
	"github.com/Amund211/vidcat/internal/adapters/catalogapi"
	"github.com/Amund211/vidcat/internal/app"
	"github.com/Amund211/vidcat/internal/config"
	"github.com/Amund211/vidcat/internal/constants"
	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
	"github.com/Amund211/vidcat/internal/logging"
	"github.com/Amund211/vidcat/internal/ports"
	"github.com/Amund211/vidcat/internal/reporting"
	"github.com/Amund211/vidcat/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

const serviceName = "vidcat"

const (
	sessionIdleTTL   = 15 * time.Minute
	sessionCapacity  = 10_000
	videoCacheSize   = 10_000
	pageCacheSize    = 2_000
	pageCacheTTL     = 1 * time.Minute
	shutdownDeadline = 10 * time.Second
)

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil))).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	if telemetry.ShouldExport(config.IsDevelopment()) {
		shutdownTelemetry, err := telemetry.SetupOTelSDK(ctx, serviceName, constants.VERSION)
		if err != nil {
			fail("Failed to initialize telemetry", "error", err.Error())
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				logger.Error("Failed to shut down telemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized telemetry")
	}

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	catalogAPI, err := catalogapi.NewCatalogAPIOrMock(config, httpClient, time.Now, time.After)
	if err != nil {
		fail("Failed to initialize catalog API", "error", err.Error())
	}
	logger.Info("Initialized catalog API")

	sharedCoordinator, err := coordinator.New(app.WithProviderTimeout(catalogAPI), config.Coordinator(), time.Now)
	if err != nil {
		fail("Failed to initialize coordinator", "error", err.Error())
	}
	defer sharedCoordinator.Clear()

	sessions, stopSessions, err := coordinator.NewRegistry(
		app.WithProviderTimeout(catalogAPI),
		config.Coordinator(),
		time.Now,
		sessionIdleTTL,
		sessionCapacity,
	)
	if err != nil {
		fail("Failed to initialize coordinator registry", "error", err.Error())
	}
	defer stopSessions()
	defer sessions.Clear()
	logger.Info("Initialized coordinators")

	videoCache, stopVideoCache := cache.NewTTLCache[coordinator.Key, domain.Video](config.VideoCacheTTL(), videoCacheSize)
	defer stopVideoCache()
	pageCache, stopPageCache := cache.NewTTLCache[coordinator.Key, domain.VideoPage](pageCacheTTL, pageCacheSize)
	defer stopPageCache()

	allowedOrigins, err := ports.NewDomainSuffixes(config.AllowedOriginSuffixes()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	getVideo := app.BuildGetVideoWithCache(sharedCoordinator, videoCache, catalogAPI)
	listVideos := app.BuildListVideos(sharedCoordinator, pageCache, catalogAPI)
	getLikeStatus := app.BuildGetLikeStatus(sessions)
	getFeed := app.BuildGetFeed(listVideos, getLikeStatus)
	getCoordinatorStats := app.BuildGetCoordinatorStats(sharedCoordinator, sessions)

	mux := http.NewServeMux()

	mux.HandleFunc("OPTIONS /v1/videos", ports.BuildCORSHandler(allowedOrigins))
	mux.HandleFunc(
		"GET /v1/videos",
		ports.MakeListVideosHandler(
			listVideos,
			allowedOrigins,
			logger.With("port", "listvideos"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/videos/{code}", ports.BuildCORSHandler(allowedOrigins))
	mux.HandleFunc(
		"GET /v1/videos/{code}",
		ports.MakeGetVideoHandler(
			getVideo,
			allowedOrigins,
			logger.With("port", "getvideo"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/videos/{code}/like", ports.BuildCORSHandler(allowedOrigins))
	mux.HandleFunc(
		"GET /v1/videos/{code}/like",
		ports.MakeGetLikeStatusHandler(
			getLikeStatus,
			allowedOrigins,
			logger.With("port", "getlikestatus"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/feed", ports.BuildCORSHandler(allowedOrigins))
	mux.HandleFunc(
		"GET /v1/feed",
		ports.MakeGetFeedHandler(
			getFeed,
			allowedOrigins,
			logger.With("port", "getfeed"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/coordinator/stats", ports.BuildCORSHandler(allowedOrigins))
	mux.HandleFunc(
		"GET /v1/coordinator/stats",
		ports.MakeGetCoordinatorStatsHandler(
			getCoordinatorStats,
			allowedOrigins,
			logger.With("port", "coordinatorstats"),
			sentryMiddleware,
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port()),
		Handler:           otelhttp.NewHandler(mux, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	logger.Info("Init complete", "port", config.Port())

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err.Error())
		}
	case <-ctx.Done():
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}

	logger.Info("Server shutdown")
}
