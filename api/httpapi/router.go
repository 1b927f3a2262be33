// Package httpapi wires the facade's dispatch/health/metrics/simulate
// operations to net/http, composing the teacher's Chain/Recovery/RequestID/
// SecurityHeaders/CORS middleware idiom (cmd/agentflow/middleware.go) with
// the cortex-specific auth, ratelimit, and reqlog packages.
package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/api/auth"
	"github.com/cogniscale/cortex/api/openapidoc"
	"github.com/cogniscale/cortex/api/ratelimit"
	"github.com/cogniscale/cortex/api/reqlog"
	"github.com/cogniscale/cortex/api/wsevents"
	"github.com/cogniscale/cortex/facade"
)

// Middleware matches the teacher's alias so Chain reads the same either
// side of the module boundary.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares outermost-first, mirroring the teacher's Chain.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type requestIDKey struct{}

// RequestIDFromContext extracts the request ID set by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestID stamps an X-Request-ID on every response, preserving a
// client-supplied one, and injects it into the request context.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = generateRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "req-" + hex.EncodeToString(b)
}

// Recovery converts a panicking handler into a 500 instead of crashing the
// server.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", zap.Any("error", err), zap.String("path", r.URL.Path))
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets the teacher's baseline hardening headers.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
			next.ServeHTTP(w, r)
		})
	}
}

// CORS mirrors the teacher's precedent: an empty allowedOrigins denies
// cross-origin requests rather than defaulting to allow-all.
func CORS(allowedOrigins []string) Middleware {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if len(originSet) == 0 {
				if origin != "" {
					if r.Method == http.MethodOptions {
						w.WriteHeader(http.StatusForbidden)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
			} else if _, ok := originSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// metricsResponseWriter captures the status/byte count PrometheusMetrics
// needs, separate from reqlog's own responseWriter so the two packages
// stay independently usable.
type metricsResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *metricsResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// PrometheusMetrics records every request's method/path/status/duration/size
// into the facade's Prometheus collector.
func PrometheusMetrics(f *facade.Facade) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			mw := &metricsResponseWriter{ResponseWriter: w}
			next.ServeHTTP(mw, r)
			f.RecordHTTPMetrics(r.Method, r.URL.Path, mw.status, time.Since(start), r.ContentLength, mw.bytes)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}

// Deps collects the collaborators NewRouter wires into handlers.
type Deps struct {
	Facade         *facade.Facade
	Authenticator  *auth.Authenticator
	Limiter        *ratelimit.Limiter
	LogSink        reqlog.Sink
	Events         *wsevents.Hub
	ConfigRoutes   func(*http.ServeMux) // optional: mounts config.ConfigAPIHandler.RegisterRoutes
	AllowedOrigins []string
	Version        string
	Logger         *zap.Logger
}

// NewRouter builds the cortex HTTP API: /health, /healthz, /openapi.json
// and the Prometheus /metrics scrape are exempt from auth, and every
// request runs through the middleware chain in the teacher's order
// (recovery, request id, security headers, CORS, auth, rate limit), then
// Prometheus request metrics and the request log.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	h := NewHandlers(deps.Facade, logger)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /api/v1/dispatch", h.Dispatch)
	mux.HandleFunc("GET /api/v1/metrics", h.Metrics)
	mux.HandleFunc("POST /api/v1/simulate", h.Simulate)
	mux.HandleFunc("POST /api/v1/query", h.Query)
	mux.HandleFunc("GET /openapi.json", openapidoc.Handler(deps.Version, nil))
	if deps.Events != nil {
		mux.HandleFunc("GET /ws", deps.Events.HTTPHandler())
	}
	if deps.Facade != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Facade.PrometheusRegistry(), promhttp.HandlerOpts{}))
	}

	if deps.ConfigRoutes != nil {
		deps.ConfigRoutes(mux)
	}

	skip := []string{"/health", "/healthz", "/openapi.json", "/metrics"}
	chain := []Middleware{
		Recovery(logger),
		RequestID(),
		SecurityHeaders(),
		CORS(deps.AllowedOrigins),
	}
	if deps.Authenticator != nil {
		chain = append(chain, deps.Authenticator.Middleware(skip))
	}
	if deps.Limiter != nil {
		chain = append(chain, deps.Limiter.Middleware)
	}
	if deps.Facade != nil {
		chain = append(chain, PrometheusMetrics(deps.Facade))
	}
	if deps.LogSink != nil {
		chain = append(chain, reqlog.Middleware(deps.LogSink, RequestIDFromContext))
	}
	return Chain(mux, chain...)
}
