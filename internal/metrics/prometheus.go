package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
// Metrics are registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments     *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	assigned        prometheus.Gauge
	httpRequests    *prometheus.CounterVec
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a collector registering into reg (the default
// registerer when nil) under namespace ("memmap" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "memmap"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "color",
			Name:      "assignments_total",
			Help:      "Color assignment requests by selection kind (reused, first, farthest, cycled).",
		}, []string{"kind"})

		p.persistFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "color",
			Name:      "persist_failures_total",
			Help:      "Failed color state loads and saves by operation.",
		}, []string{"op"})

		p.assigned = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "color",
			Name:      "assigned_identities",
			Help:      "Number of identities holding a color assignment.",
		})

		p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Served HTTP requests by method and status code.",
		}, []string{"method", "code"})

		p.reg.MustRegister(p.assignments, p.persistFailures, p.assigned, p.httpRequests)
	})
}

// RecordAssignment increments the assignment counter for kind.
func (p *PrometheusCollector) RecordAssignment(kind string) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(kind).Inc()
}

// RecordPersistFailure increments the persistence failure counter for op.
func (p *PrometheusCollector) RecordPersistFailure(op string) {
	p.ensureRegistered()
	p.persistFailures.WithLabelValues(op).Inc()
}

// SetAssignedIdentities sets the assigned identities gauge.
func (p *PrometheusCollector) SetAssignedIdentities(n int) {
	p.ensureRegistered()
	p.assigned.Set(float64(n))
}

// RecordHTTPRequest increments the request counter.
func (p *PrometheusCollector) RecordHTTPRequest(method string, status int) {
	p.ensureRegistered()
	p.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
