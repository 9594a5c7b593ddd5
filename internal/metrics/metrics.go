// Package metrics collects the matcher counters on a private registry and
// writes them in the Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "company_matcher"

// Explanation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeCached   = "cached"
	OutcomeFallback = "fallback"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	explanationsTotal   *prometheus.CounterVec
	explanationDuration *prometheus.HistogramVec
	companiesRanked     prometheus.Counter
	answersTotal        prometheus.Counter
	matchScore          prometheus.Histogram
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		explanationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explanations_total",
			Help:      "Explanations produced, by provider and outcome",
		}, []string{"provider", "outcome"}),

		explanationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "explanation_duration_seconds",
			Help:      "Explanation provider call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),

		companiesRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "companies_ranked_total",
			Help:      "Companies scored against a user vector",
		}),

		answersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Questionnaire answers accepted",
		}),

		matchScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Cosine similarity of ranked companies",
			Buckets:   []float64{-0.5, 0, 0.25, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
		}),
	}

	m.registry.MustRegister(
		m.explanationsTotal,
		m.explanationDuration,
		m.companiesRanked,
		m.answersTotal,
		m.matchScore,
	)

	return m
}

// Registry exposes the registry for callers that serve or gather it.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveExplanation records one explanation attempt.
func (m *Metrics) ObserveExplanation(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.explanationsTotal.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeCached {
		m.explanationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

// ObserveRanking records the scores of one ranking.
func (m *Metrics) ObserveRanking(scores []float64) {
	if m == nil {
		return
	}
	m.companiesRanked.Add(float64(len(scores)))
	for _, s := range scores {
		m.matchScore.Observe(s)
	}
}

// ObserveAnswer records an accepted answer.
func (m *Metrics) ObserveAnswer() {
	if m == nil {
		return
	}
	m.answersTotal.Inc()
}

// WriteTextfile writes every metric to path for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
