package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAPIRequest("getblockreward", nil)
	m.RecordAPIRequest("getblockreward", nil)
	m.RecordAPIRequest("getblockreward", errors.New("boom"))
	m.RecordSkippedTx("original", "nonce violation")
	m.RecordOrderVerdict(false)
	m.RecordComparison(true)
	m.RecordAnalysis("order", nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("getblockreward", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("getblockreward", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.simulationSkipsTotal.WithLabelValues("original", "nonce violation")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.orderVerdictsTotal.WithLabelValues("false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reorderImprovedTotal.WithLabelValues("true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.analysesTotal.WithLabelValues("order", "ok")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAPIRequest("x", nil)
		m.RecordAnalysis("x", nil)
		m.RecordSkippedTx("x", "y")
		m.RecordOrderVerdict(true)
		m.RecordComparison(false)
	})
}
