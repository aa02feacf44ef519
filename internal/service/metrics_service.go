package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	assignments     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	sseSubscribers  prometheus.Gauge
}

// NewMetricsService registers the collectors.
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

	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "substitute_assignments_total",
		Help: "Substitute assignment attempts by result",
	}, []string{"result"})

	eventsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Real-time events published by name",
	}, []string{"event"})

	sseSubscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_subscribers",
		Help: "Currently connected event-stream subscribers",
	})

	registry.MustRegister(requestDuration, requestTotal, assignments, eventsPublished, sseSubscribers)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		assignments:     assignments,
		eventsPublished: eventsPublished,
		sseSubscribers:  sseSubscribers,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request's latency and count.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordAssignment counts one assignment attempt by result.
func (s *MetricsService) RecordAssignment(result string) {
	s.assignments.WithLabelValues(result).Inc()
}

// RecordEventPublished counts one published event by name.
func (s *MetricsService) RecordEventPublished(event string) {
	s.eventsPublished.WithLabelValues(event).Inc()
}

// SubscriberConnected adjusts the live SSE subscriber gauge.
func (s *MetricsService) SubscriberConnected() {
	s.sseSubscribers.Inc()
}

// SubscriberDisconnected adjusts the live SSE subscriber gauge.
func (s *MetricsService) SubscriberDisconnected() {
	s.sseSubscribers.Dec()
}
