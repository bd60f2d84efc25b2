package httppresentation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/storeprime/backend/internal/pkg/logging"
)

const headerRequestID = "X-Request-ID"

// Metrics carries the HTTP-level prometheus collectors registered in
// main.
type Metrics struct {
	Requests *prometheus.CounterVec   // method, route, status
	Duration *prometheus.HistogramVec // method, route
}

// ObservabilityMiddleware combines:
// - W3C trace-context extraction
// - X-Request-ID generation + echo
// - request-scoped logger injection
// - HTTP metrics with low-cardinality route labels
// - access log
func ObservabilityMiddleware(base *zap.Logger, metrics *Metrics) func(http.Handler) http.Handler {
	prop := otel.GetTextMapPropagator() // W3C by default

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			sc := trace.SpanContextFromContext(ctx)

			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)

			fields := []zap.Field{zap.String("request_id", rid)}
			if sc.IsValid() {
				fields = append(fields,
					zap.String("trace_id", sc.TraceID().String()),
					zap.String("span_id", sc.SpanID().String()),
				)
			}
			reqLogger := base.With(fields...)
			ctx = logging.ContextWithLogger(ctx, reqLogger)

			start := time.Now()
			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r.WithContext(ctx))

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := http.StatusText(lrw.status)

			if metrics != nil {
				if metrics.Requests != nil {
					metrics.Requests.WithLabelValues(r.Method, route, status).Inc()
				}
				if metrics.Duration != nil {
					metrics.Duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
				}
			}

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", lrw.status),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
