package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeyatra/query-engine-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	intakeOutcomes  *prometheus.CounterVec
	notifications   prometheus.Counter
	ratings         prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the engine's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	intakeOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_outcomes_total",
		Help: "Query submissions by intake outcome",
	}, []string{"outcome"})

	notifications := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Notifications created by lifecycle transitions",
	})

	ratings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ratings_submitted_total",
		Help: "Rating upserts accepted",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, intakeOutcomes, notifications, ratings, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		intakeOutcomes:  intakeOutcomes,
		notifications:   notifications,
		ratings:         ratings,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveIntake counts one intake decision.
func (s *MetricsService) ObserveIntake(outcome models.IntakeOutcome) {
	s.intakeOutcomes.WithLabelValues(string(outcome)).Inc()
}

// IncNotificationCreated counts one dispatched notification.
func (s *MetricsService) IncNotificationCreated() {
	s.notifications.Inc()
}

// IncRatingSubmitted counts one accepted rating upsert.
func (s *MetricsService) IncRatingSubmitted() {
	s.ratings.Inc()
}

// IncCacheHit counts a cache hit.
func (s *MetricsService) IncCacheHit() {
	s.cacheHits.Inc()
}

// IncCacheMiss counts a cache miss.
func (s *MetricsService) IncCacheMiss() {
	s.cacheMisses.Inc()
}
