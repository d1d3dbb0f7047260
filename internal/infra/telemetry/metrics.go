package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arklim/token-revocation/internal/core/port"
)

// MetricsOptions configures the revocation metrics collectors.
type MetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Buckets    []float64
}

// RevocationMetrics exposes Prometheus collectors for revocation operations.
type RevocationMetrics struct {
	checks   *prometheus.CounterVec
	marks    prometheus.Counter
	duration prometheus.Histogram
	backend  *prometheus.GaugeVec
}

// NewRevocationMetrics constructs collectors for revocation operations and
// registers them with the provided registerer.
func NewRevocationMetrics(opts MetricsOptions) (*RevocationMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "revocation"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_total",
		Help:      "Total number of revocation checks partitioned by result.",
	}, []string{"result"})

	if err := reg.Register(checks); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				checks = existing
			} else {
				return nil, fmt.Errorf("existing checks collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register checks collector: %w", err)
		}
	}

	marks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marks_total",
		Help:      "Total number of tokens marked revoked.",
	})

	if err := reg.Register(marks); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				marks = existing
			} else {
				return nil, fmt.Errorf("existing marks collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register marks collector: %w", err)
		}
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "check_duration_seconds",
		Help:      "Histogram of revocation check latencies in seconds.",
		Buckets:   buckets,
	})

	if err := reg.Register(duration); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Histogram); ok {
				duration = existing
			} else {
				return nil, fmt.Errorf("existing duration collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register duration collector: %w", err)
		}
	}

	backend := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_info",
		Help:      "Selected revocation backend, 1 for the active one.",
	}, []string{"backend"})

	if err := reg.Register(backend); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.GaugeVec); ok {
				backend = existing
			} else {
				return nil, fmt.Errorf("existing backend collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register backend collector: %w", err)
		}
	}

	return &RevocationMetrics{
		checks:   checks,
		marks:    marks,
		duration: duration,
		backend:  backend,
	}, nil
}

// IncCheckHit counts a check that found a live revocation entry.
func (m *RevocationMetrics) IncCheckHit() {
	m.checks.WithLabelValues("hit").Inc()
}

// IncCheckMiss counts a check that found no live revocation entry.
func (m *RevocationMetrics) IncCheckMiss() {
	m.checks.WithLabelValues("miss").Inc()
}

// IncCheckError counts a check the backend failed to answer.
func (m *RevocationMetrics) IncCheckError() {
	m.checks.WithLabelValues("error").Inc()
}

// IncMark counts a token marked revoked.
func (m *RevocationMetrics) IncMark() {
	m.marks.Inc()
}

// ObserveCheckDuration records the latency of a revocation check.
func (m *RevocationMetrics) ObserveCheckDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}

// SetBackend marks the selected backend in the info gauge.
func (m *RevocationMetrics) SetBackend(name string) {
	m.backend.Reset()
	m.backend.WithLabelValues(name).Set(1)
}

var _ port.RevocationMetrics = (*RevocationMetrics)(nil)
