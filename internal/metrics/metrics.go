// Package metrics exposes Prometheus counters for the expansion engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for compilation runs.
type Metrics struct {
	// Vocabulary loading
	DocumentsLoadedTotal prometheus.Counter
	VerbConflictsTotal   prometheus.Counter

	// Expansion
	NodesExpandedTotal prometheus.Counter
	StepsEmittedTotal  prometheus.Counter

	// Policy outcomes
	UnknownVerbsTotal      *prometheus.CounterVec
	CapabilityDenialsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics for the engine.
//
// Registration happens once per process via sync.Once to avoid duplicate
// collector panics when multiple compilations run in one process (watch
// mode).
//
// All metrics are prefixed with "loomc_":
//   - loomc_documents_loaded_total - vocabulary documents loaded
//   - loomc_verb_conflicts_total - verbs overwritten by a later document
//   - loomc_nodes_expanded_total - author nodes expanded
//   - loomc_steps_emitted_total - canonical instructions emitted
//   - loomc_unknown_verbs_total{policy} - unresolved verbs, by warn/error policy
//   - loomc_capability_denials_total{mode} - missing capabilities, by gate mode
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			DocumentsLoadedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "loomc_documents_loaded_total",
				Help: "Total number of vocabulary documents loaded",
			}),
			VerbConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "loomc_verb_conflicts_total",
				Help: "Total number of author verbs overwritten by a later document",
			}),
			NodesExpandedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "loomc_nodes_expanded_total",
				Help: "Total number of author nodes expanded",
			}),
			StepsEmittedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "loomc_steps_emitted_total",
				Help: "Total number of canonical instructions emitted",
			}),
			UnknownVerbsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "loomc_unknown_verbs_total",
					Help: "Total number of author verbs with no vocabulary mapping",
				},
				[]string{"policy"}, // "warn" or "error"
			),
			CapabilityDenialsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "loomc_capability_denials_total",
					Help: "Total number of steps whose declared capability was not granted",
				},
				[]string{"mode"}, // "warn" or "block"
			),
		}
	})
	return globalMetrics
}
