package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pulseapi/internal/infrastructure"
)

// OTelMiddleware records a span and request metrics per HTTP request
type OTelMiddleware struct {
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.RequestMetrics
}

// NewOTelMiddleware creates tracing/metrics middleware from the providers
func NewOTelMiddleware(providers *infrastructure.OTelProviders) (*OTelMiddleware, error) {
	var metrics *infrastructure.RequestMetrics
	if providers.Meter != nil {
		m, err := infrastructure.CreateRequestMetrics(providers.Meter)
		if err != nil {
			return nil, err
		}
		metrics = m
	}

	return &OTelMiddleware{
		providers: providers,
		metrics:   metrics,
	}, nil
}

// Metrics exposes the request metrics so other components can share the
// instruments.
func (m *OTelMiddleware) Metrics() *infrastructure.RequestMetrics {
	return m.metrics
}

// Handler wraps the request in a server span and records duration metrics
func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if m.providers.Tracer != nil {
			var span trace.Span
			ctx, span = m.providers.Tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			// Prefer the OTel trace ID for log correlation once a span exists
			if span.SpanContext().IsValid() {
				ctx = infrastructure.WithTraceID(ctx, span.SpanContext().TraceID().String())
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", ww.Status()))
			if ww.Status() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(ww.Status()))
			}

			m.record(r, ww.Status(), time.Since(start))
			return
		}

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))
		m.record(r, ww.Status(), time.Since(start))
	})
}

func (m *OTelMiddleware) record(r *http.Request, status int, duration time.Duration) {
	if m.metrics == nil {
		return
	}

	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}

	m.metrics.RecordRequest(r.Context(), r.Method, route, status, duration)
}
