package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conversion outcome labels recorded by the converter.
const (
	ConversionOutcomeSuccess = "success"
	ConversionOutcomeNoop    = "noop"
	ConversionOutcomeFailure = "failure"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// conversion pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	conversionTotal *prometheus.CounterVec
	emailFailures   prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
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

	conversionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_conversions_total",
		Help: "Simplified-enrollment conversion attempts by outcome",
	}, []string{"outcome"})

	emailFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "credential_email_failures_total",
		Help: "Welcome-email deliveries that failed",
	})

	registry.MustRegister(requestDuration, requestTotal, conversionTotal, emailFailures)
	registry.MustRegister(prometheus.NewGoCollector())

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		conversionTotal: conversionTotal,
		emailFailures:   emailFailures,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveConversion records one conversion attempt outcome.
func (s *MetricsService) ObserveConversion(outcome string) {
	s.conversionTotal.WithLabelValues(outcome).Inc()
}

// ObserveEmailFailure records one failed credential delivery.
func (s *MetricsService) ObserveEmailFailure() {
	s.emailFailures.Inc()
}
