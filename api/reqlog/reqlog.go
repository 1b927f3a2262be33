// Package reqlog implements the external API's structured request
// lifecycle and error logging (§6), adapted from the teacher's
// RequestLogger/responseWriter middleware pair.
package reqlog

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/api/auth"
)

// ErrorCategory classifies a request-path failure (§6).
type ErrorCategory string

const (
	CategoryAuthentication ErrorCategory = "Authentication"
	CategoryAuthorization  ErrorCategory = "Authorization"
	CategoryRateLimit      ErrorCategory = "RateLimit"
	CategoryValidation     ErrorCategory = "Validation"
	CategoryDatabase       ErrorCategory = "Database"
	CategoryExternal       ErrorCategory = "External"
	CategoryInternal       ErrorCategory = "Internal"
	CategoryNetwork        ErrorCategory = "Network"
	CategoryConfiguration  ErrorCategory = "Configuration"
)

// ErrorSeverity ranks how urgently an error record needs attention (§6).
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "Low"
	SeverityMedium   ErrorSeverity = "Medium"
	SeverityHigh     ErrorSeverity = "High"
	SeverityCritical ErrorSeverity = "Critical"
)

// Record is one request's full lifecycle (§6).
type Record struct {
	RequestID    string         `json:"request_id"`
	Method       string         `json:"method"`
	Endpoint     string         `json:"endpoint"`
	ClientIP     string         `json:"client_ip"`
	UserID       string         `json:"user_id,omitempty"`
	UserRole     string         `json:"user_role,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	DurationMS   *float64       `json:"duration_ms,omitempty"`
	StatusCode   *int           `json:"status_code,omitempty"`
	ResponseSize *int64         `json:"response_size,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ErrorRecord is one classified failure surfaced alongside a Record.
type ErrorRecord struct {
	RequestID string        `json:"request_id"`
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	At        time.Time     `json:"at"`
}

// Sink receives completed request and error records. Implementations may
// persist, export, or simply log them.
type Sink interface {
	RecordRequest(Record)
	RecordError(ErrorRecord)
}

// ZapSink writes records through a structured logger, mirroring the
// teacher's RequestLogger field set with the domain's richer lifecycle.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink builds a Sink backed by logger. A nil logger defaults to
// zap.NewNop().
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) RecordRequest(r Record) {
	fields := []zap.Field{
		zap.String("request_id", r.RequestID),
		zap.String("method", r.Method),
		zap.String("endpoint", r.Endpoint),
		zap.String("client_ip", r.ClientIP),
		zap.Time("started_at", r.StartedAt),
	}
	if r.UserID != "" {
		fields = append(fields, zap.String("user_id", r.UserID))
	}
	if r.UserRole != "" {
		fields = append(fields, zap.String("user_role", r.UserRole))
	}
	if r.StatusCode != nil {
		fields = append(fields, zap.Int("status_code", *r.StatusCode))
	}
	if r.DurationMS != nil {
		fields = append(fields, zap.Float64("duration_ms", *r.DurationMS))
	}
	if r.ResponseSize != nil {
		fields = append(fields, zap.Int64("response_size", *r.ResponseSize))
	}
	if r.ErrorMessage != "" {
		fields = append(fields, zap.String("error_message", r.ErrorMessage))
		s.logger.Warn("request", fields...)
		return
	}
	s.logger.Info("request", fields...)
}

func (s *ZapSink) RecordError(e ErrorRecord) {
	s.logger.Error("request error",
		zap.String("request_id", e.RequestID),
		zap.String("category", string(e.Category)),
		zap.String("severity", string(e.Severity)),
		zap.String("message", e.Message),
		zap.Time("at", e.At),
	)
}

// responseWriter captures the status code and bytes written, following the
// teacher's responseWriter wrapper.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records one Record per request, reading requestID from the
// request context (set by a preceding request-ID middleware) and the
// caller's identity from auth's context keys when present.
func Middleware(sink Sink, requestIDOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			rec := Record{
				RequestID: requestIDOf(r),
				Method:    r.Method,
				Endpoint:  r.URL.Path,
				ClientIP:  r.RemoteAddr,
				StartedAt: start,
			}
			if uid, ok := auth.UserIDFromContext(r.Context()); ok {
				rec.UserID = uid
			}
			if role, ok := auth.RoleFromContext(r.Context()); ok {
				rec.UserRole = string(role)
			}

			next.ServeHTTP(rw, r)

			completed := time.Now()
			durationMS := float64(completed.Sub(start).Microseconds()) / 1000.0
			status := rw.statusCode
			size := rw.bytesWritten
			rec.CompletedAt = &completed
			rec.DurationMS = &durationMS
			rec.StatusCode = &status
			rec.ResponseSize = &size
			if status >= http.StatusBadRequest {
				rec.ErrorMessage = http.StatusText(status)
			}
			sink.RecordRequest(rec)
		})
	}
}
