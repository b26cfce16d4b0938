package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports gateway operation latency and failures to Prometheus
type Metrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors on reg.
// A nil reg selects the default registerer. Registering twice on the same
// registerer reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "todo",
			Subsystem: "gateway",
			Name:      "operation_duration_seconds",
			Help:      "Latency of storage gateway operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "todo",
			Subsystem: "gateway",
			Name:      "operation_errors_total",
			Help:      "Count of failed storage gateway operations.",
		}, []string{"operation"}),
	}

	if err := reg.Register(m.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register gateway histogram: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("register gateway histogram: %w", err)
		}
		m.duration = existing
	}

	if err := reg.Register(m.errors); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register gateway counter: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register gateway counter: %w", err)
		}
		m.errors = existing
	}

	return m, nil
}

func (m *Metrics) record(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
