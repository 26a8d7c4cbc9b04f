// Package metrics exposes Prometheus counters for HTTP traffic and for the
// incorporation lifecycle.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jurigo"

// Registry owns every collector of the process.
type Registry struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	companiesCreated   *prometheus.CounterVec
	companyTransitions *prometheus.CounterVec
	documentsUploaded  *prometheus.CounterVec
	documentsVerified  *prometheus.CounterVec
	blobOperations     *prometheus.CounterVec
	eventFailures      *prometheus.CounterVec
}

func New() *Registry {
	registry := prometheus.NewRegistry()

	m := &Registry{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Number of in-flight HTTP requests.",
		}),
		companiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "companies_created_total",
			Help: "Incorporation requests created, by legal structure.",
		}, []string{"structure"}),
		companyTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "company_transitions_total",
			Help: "Company status changes.",
		}, []string{"from", "to"}),
		documentsUploaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "documents_uploaded_total",
			Help: "Documents recorded after upload, by type.",
		}, []string{"type"}),
		documentsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "documents_verified_total",
			Help: "Document review decisions.",
		}, []string{"status"}),
		blobOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "blob_operations_total",
			Help: "Blob storage operations by outcome.",
		}, []string{"op", "result"}),
		eventFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "event_publish_failures_total",
			Help: "Lifecycle events that could not be published.",
		}, []string{"type"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.companiesCreated,
		m.companyTransitions,
		m.documentsUploaded,
		m.documentsVerified,
		m.blobOperations,
		m.eventFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, for tests.
func (m *Registry) Gatherer() prometheus.Gatherer { return m.registry }

// Middleware records count, latency and in-flight gauge per route pattern.
func (m *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		// r.Pattern is filled in by the mux on the request it was handed,
		// which is this one as long as no middleware replaced it.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Registry) CompanyCreated(structure string) {
	m.companiesCreated.WithLabelValues(structure).Inc()
}

func (m *Registry) CompanyTransitioned(from, to string) {
	m.companyTransitions.WithLabelValues(from, to).Inc()
}

func (m *Registry) DocumentUploaded(docType string) {
	m.documentsUploaded.WithLabelValues(docType).Inc()
}

func (m *Registry) DocumentVerified(status string) {
	m.documentsVerified.WithLabelValues(status).Inc()
}

func (m *Registry) BlobOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.blobOperations.WithLabelValues(op, result).Inc()
}

func (m *Registry) EventPublishFailed(eventType string) {
	m.eventFailures.WithLabelValues(eventType).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }
