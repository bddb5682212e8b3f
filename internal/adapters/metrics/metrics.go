package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dvf_search"

// Metrics - метрики сервиса на собственном реестре, чтобы тесты не делили глобальное состояние
type Metrics struct {
	registry *prometheus.Registry

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	refreshDuration     *prometheus.HistogramVec
	refreshTotal        *prometheus.CounterVec
	lastRefreshSuccess  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		refreshDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "street_index_refresh_duration_seconds",
				Help:      "Street index refresh duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"trigger"},
		),
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "street_index_refresh_total",
				Help:      "Street index refreshes by trigger and outcome",
			},
			[]string{"trigger", "status"},
		),
		lastRefreshSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "street_index_last_refresh_success_timestamp_seconds",
			Help:      "Unix time of the last successful street index refresh",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestDuration,
		m.httpRequestsTotal,
		m.refreshDuration,
		m.refreshTotal,
		m.lastRefreshSuccess,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler отдает /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware считает запросы по шаблону маршрута chi, а не по сырому пути
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := strconv.Itoa(ww.status)

		m.httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// ReportRefresh реализует RefreshReporterPort
func (m *Metrics) ReportRefresh(_ context.Context, report domain.RefreshReport) error {
	status := "success"
	if !report.Succeeded() {
		status = "failure"
	}
	m.refreshDuration.WithLabelValues(report.Trigger).Observe(report.Duration().Seconds())
	m.refreshTotal.WithLabelValues(report.Trigger, status).Inc()
	if report.Succeeded() {
		m.lastRefreshSuccess.Set(float64(report.FinishedAt.Unix()))
	}
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
