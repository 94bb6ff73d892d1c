package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetricsCollector handles allocation metrics: fabric, pieces, payables, dispatch
type EngineMetricsCollector struct {
	fabricConsumed      *prometheus.CounterVec
	piecesMoved         *prometheus.CounterVec
	payablePieces       *prometheus.CounterVec
	payableAmount       *prometheus.CounterVec
	dispatchTransitions *prometheus.CounterVec
}

// NewEngineMetricsCollector creates a new engine metrics collector
func NewEngineMetricsCollector() *EngineMetricsCollector {
	return &EngineMetricsCollector{
		fabricConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fabric_consumed_meters_total",
				Help:      "Roll length reserved by cutting jobs",
			},
			[]string{"batch"},
		),

		// kind: worker, stock, external, finished
		piecesMoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pieces_moved_total",
				Help:      "Pieces moved out of a stage by kind",
			},
			[]string{"stage", "kind"},
		),

		payablePieces: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payable_pieces_total",
				Help:      "Pieces received back from subcontractors",
			},
			[]string{"subcontractor"},
		),

		payableAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payable_amount_total",
				Help:      "Amount owed to subcontractors from emitted payable events",
			},
			[]string{"subcontractor"},
		),

		dispatchTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_transitions_total",
				Help:      "Shipments moved to a dispatch state",
			},
			[]string{"state"},
		),
	}
}

// Register registers all engine metrics with the Prometheus registry
func (c *EngineMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.fabricConsumed,
		c.piecesMoved,
		c.payablePieces,
		c.payableAmount,
		c.dispatchTransitions,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *EngineMetricsCollector) RecordFabricReserved(batchID string, meters float64) {
	c.fabricConsumed.WithLabelValues(batchID).Add(meters)
}

func (c *EngineMetricsCollector) RecordPiecesMoved(stage string, kind string, pieces int) {
	c.piecesMoved.WithLabelValues(stage, kind).Add(float64(pieces))
}

func (c *EngineMetricsCollector) RecordPayable(subcontractor string, pieces int, amount float64) {
	c.payablePieces.WithLabelValues(subcontractor).Add(float64(pieces))
	c.payableAmount.WithLabelValues(subcontractor).Add(amount)
}

func (c *EngineMetricsCollector) RecordDispatchTransition(state string, shipments int) {
	c.dispatchTransitions.WithLabelValues(state).Add(float64(shipments))
}
