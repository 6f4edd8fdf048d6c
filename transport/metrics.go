package transport

import (
	stderrors "errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-request counters and latencies.
// A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the client metrics and registers them on reg.
// Collectors already registered by another client are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dms",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of requests sent to the service",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dms",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
	if reg == nil {
		return m, nil
	}

	if err := reg.Register(m.RequestsTotal); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !stderrors.As(err, &are) {
			return nil, err
		}
		m.RequestsTotal = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.RequestDuration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !stderrors.As(err, &are) {
			return nil, err
		}
		m.RequestDuration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

// observe records one request. status is 0 when no response was received.
func (m *Metrics) observe(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, endpoint, label).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
