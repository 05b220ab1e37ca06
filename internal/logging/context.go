package logging

import (
	"context"
	"log/slog"
	"os"
)

type requestLoggerContextKey struct{}

var fallbackLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("logger", "fallback"))

// FromContext returns the logger stored in ctx, or a JSON stdout logger tagged as fallback
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(requestLoggerContextKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return fallbackLogger
	}
	return logger
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerContextKey{}, logger)
}

func AddMetaToContext(ctx context.Context, args ...slog.Attr) context.Context {
	anySlice := make([]any, 0, len(args))
	for _, arg := range args {
		anySlice = append(anySlice, arg)
	}

	return AddToContext(ctx, FromContext(ctx).With(anySlice...))
}

// WithComponent tags every record logged through the returned context with component
func WithComponent(ctx context.Context, component string) context.Context {
	return AddMetaToContext(ctx, slog.String("component", component))
}
