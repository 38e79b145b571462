// internal/blockchain/sui/transaction/metrics.go
package transaction

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successCounter   prometheus.Counter
	failureCounter   *prometheus.CounterVec
	pathCounter      *prometheus.CounterVec
	elapsedHistogram prometheus.Histogram
}

// NewMetrics creates executor metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	successCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sui_tx_success_total",
		Help: "Total number of confirmed successful transactions",
	})
	failureCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sui_tx_failure_total",
		Help: "Total number of failed transactions by failure kind",
	}, []string{"kind"})
	pathCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sui_tx_confirm_path_total",
		Help: "Confirmations by the response they were built from",
	}, []string{"path"})
	elapsedHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sui_tx_elapsed_seconds",
		Help:    "Time from submission to confirmation in seconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	if reg != nil {
		reg.MustRegister(successCounter, failureCounter, pathCounter, elapsedHistogram)
	}

	return &Metrics{
		successCounter:   successCounter,
		failureCounter:   failureCounter,
		pathCounter:      pathCounter,
		elapsedHistogram: elapsedHistogram,
	}
}

func (m *Metrics) trackSuccess(path ConfirmPath, elapsedMs int64) {
	m.successCounter.Inc()
	m.pathCounter.WithLabelValues(string(path)).Inc()
	m.elapsedHistogram.Observe(float64(elapsedMs) / 1000)
}

func (m *Metrics) trackFailure(kind Kind) {
	m.failureCounter.WithLabelValues(kind.String()).Inc()
}
