// Package metrics counts wallet crypto operations for prometheus and keeps a small
// in-process snapshot for the CLI.
package metrics

import (
	"sync"
	"time"

	"credwallet/go-core/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
)

type Recorder struct {
	Operations *prometheus.CounterVec
	Latency    *prometheus.HistogramVec

	mu    sync.Mutex
	stats map[string]models.OperationMetric
	sums  map[string]time.Duration
	last  time.Time
}

// New registers the collectors with reg. A nil reg registers nowhere, which tests use
// to avoid duplicate registration.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credwallet_crypto_operations_total",
			Help: "Crypto operations by operation and result",
		}, []string{"op", "result"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credwallet_crypto_operation_seconds",
			Help:    "Duration of crypto operations",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 2.5},
		}, []string{"op"}),
		stats: make(map[string]models.OperationMetric),
		sums:  make(map[string]time.Duration),
	}
}

// Observe records one operation. result is ResultOK, ResultError or ResultRejected
// (a verification that completed and said no).
func (r *Recorder) Observe(op, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.Operations.WithLabelValues(op, result).Inc()
	r.Latency.WithLabelValues(op).Observe(d.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.stats[op]
	m.Count++
	if result == ResultError {
		m.Errors++
	}
	r.sums[op] += d
	ms := d.Milliseconds()
	m.LastLatencyMs = ms
	if ms > m.MaxLatencyMs {
		m.MaxLatencyMs = ms
	}
	m.AvgLatencyMs = r.sums[op].Milliseconds() / int64(m.Count)
	r.stats[op] = m
	r.last = time.Now()
}

// Track starts a timer; the returned func records the result of err.
func (r *Recorder) Track(op string) func(err error) {
	start := time.Now()
	return func(err error) {
		result := ResultOK
		if err != nil {
			result = ResultError
		}
		r.Observe(op, result, time.Since(start))
	}
}

func (r *Recorder) Snapshot() models.MetricsSnapshot {
	if r == nil {
		return models.MetricsSnapshot{OperationStats: map[string]models.OperationMetric{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]models.OperationMetric, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return models.MetricsSnapshot{OperationStats: out, LastUpdatedAt: r.last}
}
