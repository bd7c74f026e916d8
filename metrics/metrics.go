package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the analyzer. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequestsTotal     *prometheus.CounterVec
	analysesTotal        *prometheus.CounterVec
	simulationSkipsTotal *prometheus.CounterVec
	orderVerdictsTotal   *prometheus.CounterVec
	reorderImprovedTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them. If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		apiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etherscan_requests_total",
				Help: "Total number of Etherscan API requests by action and status",
			},
			[]string{"action", "status"},
		),
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "block_analyses_total",
				Help: "Total number of block analyses by kind and status",
			},
			[]string{"kind", "status"},
		),
		simulationSkipsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simulation_skipped_transactions_total",
				Help: "Total number of transactions excluded from simulated blocks by ordering and reason",
			},
			[]string{"ordering", "reason"},
		),
		orderVerdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_audit_verdicts_total",
				Help: "Total number of transaction order audits by verdict",
			},
			[]string{"ordered"},
		),
		reorderImprovedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reorder_comparisons_total",
				Help: "Total number of ordering comparisons by outcome",
			},
			[]string{"improved"},
		),
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (m *Metrics) RecordAPIRequest(action string, err error) {
	if m == nil {
		return
	}
	m.apiRequestsTotal.WithLabelValues(action, statusLabel(err)).Inc()
}

func (m *Metrics) RecordAnalysis(kind string, err error) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

func (m *Metrics) RecordSkippedTx(ordering string, reason string) {
	if m == nil {
		return
	}
	m.simulationSkipsTotal.WithLabelValues(ordering, reason).Inc()
}

func (m *Metrics) RecordOrderVerdict(isOrdered bool) {
	if m == nil {
		return
	}
	m.orderVerdictsTotal.WithLabelValues(boolLabel(isOrdered)).Inc()
}

func (m *Metrics) RecordComparison(improved bool) {
	if m == nil {
		return
	}
	m.reorderImprovedTotal.WithLabelValues(boolLabel(improved)).Inc()
}
