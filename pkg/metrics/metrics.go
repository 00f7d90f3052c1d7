package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Metrics представляет систему метрик сервиса
type Metrics struct {
	Namespace string
	Registry  *prometheus.Registry

	RequestCount     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ErrorsCount      *prometheus.CounterVec
	RequestsInFlight prometheus.Gauge

	// OpenTelemetry Tracer
	Tracer trace.Tracer `json:"-"`
}

// Namespace приводит имя сервиса к допустимому префиксу метрик
func Namespace(serviceName string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(serviceName)
}

// NewMetrics создает систему метрик с собственным реестром
func NewMetrics(serviceName string) *Metrics {
	ns := Namespace(serviceName)
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Namespace: ns,
		Registry:  registry,
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ErrorsCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "errors_total",
				Help:      "Total number of HTTP errors",
			},
			[]string{"method", "route", "error_type"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests being served",
			},
		),
		Tracer: otel.Tracer(serviceName),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCount,
		m.RequestDuration,
		m.ErrorsCount,
		m.RequestsInFlight,
	)

	return m
}

// GetHandler возвращает HTTP обработчик для эндпоинта /metrics
func (m *Metrics) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// routePattern возвращает шаблон маршрута chi, чтобы не плодить метки по id
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Middleware создает middleware для сбора метрик и трассировки
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.Tracer.Start(r.Context(), r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		duration := time.Since(start).Seconds()
		route := routePattern(r)

		m.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(duration)

		if wrapped.statusCode >= 400 {
			errorType := "client_error"
			if wrapped.statusCode >= 500 {
				errorType = "server_error"
				span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
			}
			m.ErrorsCount.WithLabelValues(r.Method, route, errorType).Inc()
		}

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", wrapped.statusCode),
		)
	})
}

// responseWriter обертка для перехвата статуса ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// WriteHeader перехватывает установку статуса
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// InitializeOpenTelemetry регистрирует глобальный провайдер трассировки.
// Экспортер не подключается: спаны доступны процессорам, добавленным через opts.
func InitializeOpenTelemetry(serviceName, version string, opts ...tracesdk.TracerProviderOption) (*tracesdk.TracerProvider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)

	options := append([]tracesdk.TracerProviderOption{
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.AlwaysSample())),
		tracesdk.WithResource(res),
	}, opts...)

	tp := tracesdk.NewTracerProvider(options...)
	otel.SetTracerProvider(tp)

	return tp, nil
}

// ShutdownTracing останавливает провайдер трассировки
func ShutdownTracing(ctx context.Context, tp *tracesdk.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
