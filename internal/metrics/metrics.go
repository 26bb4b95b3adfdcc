// Package metrics exposes prometheus collectors for the collection and
// evaluation phases of a scan. All collectors live on Registry so a single
// scan can be written out as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Unit and rule outcomes used as label values.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomePanic   = "panic"
	OutcomeSkipped = "skipped"
	OutcomeCrashed = "crashed"
)

// Registry holds every cloudscan collector.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Collection metrics
	collectorUnitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudscan_collector_units_total",
			Help: "Total number of collector units by outcome",
		},
		[]string{"service", "operation", "outcome"},
	)

	collectorUnitDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudscan_collector_unit_duration_seconds",
			Help:    "Time taken by individual collector units",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 120},
		},
		[]string{"service", "operation"},
	)

	collectorUnitsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "cloudscan_collector_units_in_flight",
			Help: "Number of collector units currently fetching",
		},
	)

	// Evaluation metrics
	ruleEvaluationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudscan_rule_evaluations_total",
			Help: "Total number of rule evaluations by outcome",
		},
		[]string{"rule", "outcome"},
	)

	findingsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudscan_findings_total",
			Help: "Total number of findings emitted by status",
		},
		[]string{"status"},
	)
)

// UnitStarted increments the in-flight gauge and returns a function that
// records the unit's outcome and duration when called.
func UnitStarted(service, operation string) func(outcome string) {
	start := time.Now()
	collectorUnitsInFlight.Inc()
	return func(outcome string) {
		collectorUnitsInFlight.Dec()
		collectorUnitDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
		collectorUnitsTotal.WithLabelValues(service, operation, outcome).Inc()
	}
}

// UnitSkipped counts a dependent unit that never ran.
func UnitSkipped(service, operation string) {
	collectorUnitsTotal.WithLabelValues(service, operation, OutcomeSkipped).Inc()
}

// RuleEvaluated counts one rule invocation.
func RuleEvaluated(rule, outcome string) {
	ruleEvaluationsTotal.WithLabelValues(rule, outcome).Inc()
}

// FindingEmitted counts one finding by its status name.
func FindingEmitted(status string) {
	findingsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile writes the registry to path in the text exposition format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
