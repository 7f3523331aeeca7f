package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/c360chat/c360chat/internal/config"
)

type traceIDKey struct{}

// NewLogger builds the process logger from the observability config. Every
// record carries the service name and profile.
func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		return DiscardLogger()
	}
	opts := &slog.HandlerOptions{
		Level:     cfg.Observability.LogLevel,
		AddSource: cfg.Observability.LogLevel <= slog.LevelDebug,
	}
	var handler slog.Handler = slog.NewTextHandler(writer, opts)
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, opts)
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
	)
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}
