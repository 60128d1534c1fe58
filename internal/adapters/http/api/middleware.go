package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/expenses/pkg/logger"
	"github.com/okian/expenses/pkg/metrics"
)

const (
	// HeaderRequestID carries the request id in and out.
	HeaderRequestID = "X-Request-ID"

	// logBodyLimit caps request and response bodies in log records.
	logBodyLimit = 200

	metricsPath = "/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := newResponseWriter(w, 0)

		// Call the next handler
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			metrics.RecordHTTPError(endpoint, r.Method, errorType(wrapped.statusCode), errorSeverity(wrapped.statusCode))
		}
	}
}

// RequestLogging logs every request and its response with bodies cut to
// 200 bytes. Scrapes of /metrics are not logged. The request id is taken
// from X-Request-ID or generated, and echoed back.
func RequestLogging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == metricsPath {
				next.ServeHTTP(w, r)
				return
			}

			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, requestID)
			reqLog := log.With(logger.String("request_id", requestID))

			var reqBody []byte
			if r.Body != nil && r.Body != http.NoBody {
				// keep the body readable for the handler
				full, err := io.ReadAll(r.Body)
				_ = r.Body.Close()
				if err != nil {
					reqLog.Warn(r.Context(), "failed to read request body", logger.Error(err))
				}
				r.Body = io.NopCloser(bytes.NewReader(full))
				reqBody = full
			}

			reqLog.Info(r.Context(), "request",
				logger.String("method", r.Method),
				logger.String("url", r.URL.String()),
				logger.String("body", truncate(string(reqBody), logBodyLimit)),
			)

			start := time.Now()
			wrapped := newResponseWriter(w, logBodyLimit)
			next.ServeHTTP(wrapped, r)

			reqLog.Info(r.Context(), "response",
				logger.Int("status", wrapped.statusCode),
				logger.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				logger.String("body", wrapped.body.String()),
			)
		})
	}
}

// Recover turns a panic into the generic 500 body.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newResponseWriter(w, 0)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				log.Error(r.Context(), "handler panicked",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Error(err),
					logger.String("stack", string(debug.Stack())),
				)
				metrics.RecordHTTPError("panic", r.Method, errorType(http.StatusInternalServerError), errorSeverity(http.StatusInternalServerError))
				if !wrapped.wroteHeader {
					writeError(wrapped, WrapKind("api.recover", ErrInternal, err))
				}
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and,
// when limit > 0, the first limit bytes of the body.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	limit       int
	body        bytes.Buffer
}

func newResponseWriter(w http.ResponseWriter, limit int) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK, limit: limit}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	if room := rw.limit - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(room, len(b))])
	}
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
