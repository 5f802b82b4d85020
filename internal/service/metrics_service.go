package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors for the
// HTTP surface and the payment lifecycle.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	paymentTransitions *prometheus.CounterVec
	notifications      *prometheus.CounterVec
}

// NewMetricsService constructs the service and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests processed, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		paymentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_transitions_total",
			Help: "Enrollment payment transitions, by payment method and outcome.",
		}, []string{"method", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "confirmation_emails_total",
			Help: "Confirmation email attempts, by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(s.httpRequests, s.httpDuration, s.paymentTransitions, s.notifications)
	return s
}

// RecordHTTPRequest records one completed HTTP request.
func (s *MetricsService) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	s.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPaymentTransition records one payment outcome for a charge method.
func (s *MetricsService) RecordPaymentTransition(method, outcome string) {
	s.paymentTransitions.WithLabelValues(method, outcome).Inc()
}

// RecordNotification records the result of one confirmation email attempt.
func (s *MetricsService) RecordNotification(sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	s.notifications.WithLabelValues(result).Inc()
}

// Handler exposes the registry for the metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
