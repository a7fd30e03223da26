package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Imported("csv", 1, 2, 3)
	m.Promotion("ok")
	m.Toggled()
	m.DiffEntries("new", 1)
	m.Applied("update")
}

func TestImportedCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Imported("ics", 3, 1, 2)
	m.Imported("ics", 1, 0, 0)

	require.Equal(t, 4.0, testutil.ToFloat64(m.imported.WithLabelValues("ics")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("ics")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.duplicates))
}
