// Package metrics holds the prometheus counters of the import, promotion
// and member diff paths. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clubsched"

type Metrics struct {
	imported   *prometheus.CounterVec
	skipped    *prometheus.CounterVec
	duplicates prometheus.Counter
	promotions *prometheus.CounterVec
	toggles    prometheus.Counter
	diffs      *prometheus.CounterVec
	applied    *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		imported: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "schedule", Name: "imported_records_total",
			Help: "Records added to the ephemeral cache by imports.",
		}, []string{"source"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "schedule", Name: "skipped_rows_total",
			Help: "Rows or events excluded for missing required fields.",
		}, []string{"source"}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "schedule", Name: "duplicate_records_total",
			Help: "Imported records dropped as duplicates.",
		}),
		promotions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "schedule", Name: "promotions_total",
			Help: "Ephemeral records promoted to the persisted store.",
		}, []string{"outcome"}),
		toggles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "schedule", Name: "side_toggles_total",
			Help: "Home/away swaps that changed a record.",
		}),
		diffs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "members", Name: "diff_entries_total",
			Help: "Member diff entries by kind.",
		}, []string{"kind"}),
		applied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "members", Name: "applied_entries_total",
			Help: "Member diff entries written to the roster.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) Imported(source string, added, skipped, duplicates int) {
	if m == nil {
		return
	}
	m.imported.WithLabelValues(source).Add(float64(added))
	m.skipped.WithLabelValues(source).Add(float64(skipped))
	m.duplicates.Add(float64(duplicates))
}

// Promotion records one promotion attempt; outcome is "ok", "store_error"
// or "cache_error".
func (m *Metrics) Promotion(outcome string) {
	if m == nil {
		return
	}
	m.promotions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Toggled() {
	if m == nil {
		return
	}
	m.toggles.Inc()
}

func (m *Metrics) DiffEntries(kind string, n int) {
	if m == nil {
		return
	}
	m.diffs.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) Applied(kind string) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(kind).Inc()
}
