package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds custom Prometheus metrics.
type MetricsManager struct {
	Registry                *prometheus.Registry
	ListingTransitionsTotal *prometheus.CounterVec
	ImagesUploadedTotal     prometheus.Counter
	EstimateFallbacksTotal  prometheus.Counter
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestLatency      *prometheus.HistogramVec
}

// NewMetricsManager initializes and registers custom Prometheus metrics on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()
	namespace := sanitize(serviceName)

	listingTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_transitions_total",
		Help:      "Listing mutations by kind (create, update, delete, publish, archive, draft).",
	}, []string{"transition"})
	imagesUploaded := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_uploaded_total",
		Help:      "Total number of images stored for listings.",
	})
	estimateFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimate_fallbacks_total",
		Help:      "Price estimates answered with the fixed fallback.",
	})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(
		listingTransitions,
		imagesUploaded,
		estimateFallbacks,
		httpRequests,
		httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:                registry,
		ListingTransitionsTotal: listingTransitions,
		ImagesUploadedTotal:     imagesUploaded,
		EstimateFallbacksTotal:  estimateFallbacks,
		HTTPRequestsTotal:       httpRequests,
		HTTPRequestLatency:      httpLatency,
	}
}

func (m *MetricsManager) ListingTransition(transition string) {
	m.ListingTransitionsTotal.WithLabelValues(transition).Inc()
}

func (m *MetricsManager) ImagesAdded(n int) {
	m.ImagesUploadedTotal.Add(float64(n))
}

func (m *MetricsManager) EstimateFallback() {
	m.EstimateFallbacksTotal.Inc()
}

// ObserveHTTP records one served request. route is the matched pattern, not the raw path.
func (m *MetricsManager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StartMetricsServer serves /metrics until ctx is cancelled.
func StartMetricsServer(ctx context.Context, port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func sanitize(name string) string {
	out := []byte(name)
	for i, c := range out {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			out[i] = '_'
		}
	}
	return string(out)
}
