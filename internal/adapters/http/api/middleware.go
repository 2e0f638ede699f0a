package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/okian/sitescope/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for
// endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		ms := float64(time.Since(start).Microseconds()) / 1000

		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, ms)
		if status < http.StatusBadRequest {
			return
		}
		class, severity := classifyStatus(status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
		metrics.RecordErrorByType(class, severity)
		metrics.RecordErrorLatency("http", class, ms)
	}
}

// classifyStatus maps an error status to a metric label and severity.
// Backpressure and shutdown are expected under load and rank low.
func classifyStatus(status int) (class, severity string) {
	switch status {
	case http.StatusTooManyRequests:
		return "backpressure", "low"
	case http.StatusServiceUnavailable:
		return "unavailable", "medium"
	case http.StatusNotFound:
		return "not_found", "low"
	}
	if status >= http.StatusInternalServerError {
		return "server_error", "high"
	}
	return "client_error", "medium"
}

// Handler wraps the mux with request ids, panic recovery and CORS for the
// given browser origins.
func Handler(mux http.Handler, allowedOrigins []string) http.Handler {
	h := cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(mux)
	h = middleware.Recoverer(h)
	h = middleware.RealIP(h)
	h = echoRequestID(h)
	return middleware.RequestID(h)
}

func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// requestID returns the id assigned by the RequestID middleware, or a fresh
// one when the handler is mounted without it.
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}
