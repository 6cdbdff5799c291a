package rcm

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricNamespace = "fee_manager"

	labelOutcome = "outcome"
	labelKind    = "kind"

	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"

	kindProposer = "proposer"
	kindPattern  = "pattern"
)

// ResolverMetrics stores the pointers to execution config resolution metrics.
type ResolverMetrics struct {
	resolutions    *prometheus.CounterVec
	entriesEmitted *prometheus.CounterVec
}

// NewResolverMetrics registers the resolution metrics with r.
func NewResolverMetrics(r prometheus.Registerer) *ResolverMetrics {
	return &ResolverMetrics{
		resolutions: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "execution_config_resolutions_total",
				Help:      "the total execution config resolutions by outcome",
			}, []string{labelOutcome},
		),
		entriesEmitted: promauto.With(r).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "execution_config_entries_total",
				Help:      "the total proposer entries emitted in execution configs",
			}, []string{labelKind},
		),
	}
}

func (m *ResolverMetrics) observe(proposers, patterns int, err error) {
	if m == nil {
		return
	}

	switch {
	case err == nil:
		m.resolutions.WithLabelValues(outcomeOK).Inc()
		m.entriesEmitted.WithLabelValues(kindProposer).Add(float64(proposers))
		m.entriesEmitted.WithLabelValues(kindPattern).Add(float64(patterns))
	case errors.Is(err, ErrDefaultConfigNotFound):
		m.resolutions.WithLabelValues(outcomeNotFound).Inc()
	default:
		m.resolutions.WithLabelValues(outcomeError).Inc()
	}
}
