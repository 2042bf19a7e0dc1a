// Package metrics exposes the Prometheus instruments the settlement
// engine reports into. Collectors register on the default registry;
// cmd/server mounts the scrape endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SummaryComputations counts full settlement-summary passes.
	SummaryComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_summary_computations_total",
		Help: "Number of settlement summary computation passes.",
	})

	// SummaryDuration observes how long one full pass takes.
	SummaryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tripledger_summary_duration_seconds",
		Help:    "Duration of settlement summary computation passes.",
		Buckets: prometheus.DefBuckets,
	})

	// Reconciliations counts pending-plan replacements.
	Reconciliations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_reconciliations_total",
		Help: "Number of pending settlement plan replacements.",
	})

	// ExcludedExpenses counts expenses skipped for lack of an FX rate.
	ExcludedExpenses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_excluded_expenses_total",
		Help: "Number of expenses excluded from aggregation because no FX rate snapshot was available.",
	})

	// SettlementsMarkedPaid counts pending-to-settled transitions.
	SettlementsMarkedPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripledger_settlements_marked_paid_total",
		Help: "Number of settlements transitioned from pending to settled.",
	})
)
