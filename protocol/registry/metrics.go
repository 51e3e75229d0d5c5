package registry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spymsg/spymsg-go/protocol"
)

// Metrics counts the outcomes of transitions.
type Metrics struct {
	// transitions counts finished transitions.
	// Labels: result (committed, invalid_payload, proof_mismatch, ...)
	transitions *prometheus.CounterVec

	// version is the version of the current commitment.
	version prometheus.Gauge

	// proving measures time spent between Idle and Committing.
	proving prometheus.Histogram
}

// NewMetrics creates the registry metrics and registers them with reg.
// A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spymsg",
			Subsystem: "registry",
			Name:      "transitions_total",
			Help:      "Finished transitions by result",
		}, []string{"result"}),
		version: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "spymsg",
			Subsystem: "registry",
			Name:      "commitment_version",
			Help:      "Version of the current commitment",
		}),
		proving: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spymsg",
			Subsystem: "registry",
			Name:      "prepare_duration_seconds",
			Help:      "Time to validate, verify and prove a transition",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
}

// resultLabel names the outcome of a transition.
func resultLabel(err error) string {
	if err == nil {
		return "committed"
	}
	var code protocol.ErrorCode
	if !errors.As(err, &code) {
		return "error"
	}
	switch code {
	case protocol.ErrInvalidPayload:
		return "invalid_payload"
	case protocol.ErrProofMismatch:
		return "proof_mismatch"
	case protocol.ErrStaleCommitment:
		return "stale_commitment"
	case protocol.ErrIndexOutOfRange:
		return "index_out_of_range"
	case protocol.ErrNotInitialized:
		return "not_initialized"
	default:
		return "error"
	}
}

func (m *Metrics) observe(err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) setVersion(v uint64) {
	if m == nil {
		return
	}
	m.version.Set(float64(v))
}

func (m *Metrics) observeProving(seconds float64) {
	if m == nil {
		return
	}
	m.proving.Observe(seconds)
}
