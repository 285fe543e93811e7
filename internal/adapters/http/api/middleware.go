package api

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/okian/psychometrician/pkg/metrics"
	"github.com/okian/psychometrician/pkg/tracing"
)

const tracerName = "github.com/okian/psychometrician/internal/adapters/http/api"

// MetricsMiddleware traces a route and records its request count, latency
// and error class under endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	tracer := tracing.Tracer(tracerName)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "http."+endpoint)
		defer span.End()

		began := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(began).Milliseconds()))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", r.URL.Path),
			attribute.Int("http.status_code", rec.status),
		)

		if class, failed := errorClass(rec.status); failed {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
			metrics.RecordErrorByComponent("http", class)
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, class)
			}
		}
	}
}

// errorClass names the failure behind status. Session conflicts and
// generation backpressure are kept apart from other client errors.
func errorClass(status int) (string, bool) {
	switch {
	case status < http.StatusBadRequest:
		return "", false
	case status == http.StatusConflict:
		return "session_conflict", true
	case status == http.StatusTooManyRequests:
		return "backpressure", true
	case status == http.StatusNotFound:
		return "not_found", true
	case status == http.StatusServiceUnavailable:
		return "unavailable", true
	case status >= http.StatusInternalServerError:
		return "server_error", true
	default:
		return "client_error", true
	}
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	return rec.ResponseWriter.Write(b)
}
