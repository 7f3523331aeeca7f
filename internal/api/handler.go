package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360chat/c360chat/internal/config"
	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/schema"
)

type ReadinessCheck func(ctx context.Context) error

// TurnRunner resolves one user message against a conversation state and
// appends the resulting turn.
type TurnRunner interface {
	RunTurn(ctx context.Context, state *conversation.State, userText string) conversation.Turn
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Sessions          *conversation.Sessions
	Assistant         TurnRunner
	Schema            schema.Descriptor
}

type route struct {
	pattern string
	handle  func(Dependencies, http.ResponseWriter, *http.Request)
}

// protectedRoutes sit behind the auth middleware when auth is required.
var protectedRoutes = []route{
	{"POST /v1/sessions", handleCreateSession},
	{"GET /v1/sessions/{session}", handleGetSession},
	{"DELETE /v1/sessions/{session}", handleDeleteSession},
	{"POST /v1/sessions/{session}/turns", handleCreateTurn},
	{"GET /v1/schema", handleSchema},
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})
	mux.HandleFunc("GET /v1/ready", readinessHandler(deps))
	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	for _, rt := range protectedRoutes {
		handle := rt.handle
		protected.HandleFunc(rt.pattern, func(w http.ResponseWriter, r *http.Request) {
			handle(deps, w, r)
		})
	}
	gate := guard(cfg, deps, protected)
	for _, rt := range protectedRoutes {
		mux.Handle(rt.pattern, gate)
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func readinessHandler(deps Dependencies) http.HandlerFunc {
	timeout := deps.DependencyTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness != nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			err := deps.Readiness(ctx)
			cancel()
			if err != nil {
				writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}

// guard wraps next with the auth middleware when auth is required. A missing
// middleware fails closed.
func guard(cfg config.Config, deps Dependencies, next http.Handler) http.Handler {
	if !cfg.Auth.Required {
		return next
	}
	if deps.AuthMiddleware != nil {
		return deps.AuthMiddleware(next)
	}
	if deps.Logger != nil {
		deps.Logger.Error("auth required but no auth middleware configured")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
	})
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
