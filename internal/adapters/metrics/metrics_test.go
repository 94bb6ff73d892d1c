package metrics

import (
	"context"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

type assignCommand struct{}

type failingHandler struct{}

func (failingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return nil, shared.NewOverAssignmentError("M", 3, 2)
}

func TestPrometheusMiddleware_CountsRejectionsByCode(t *testing.T) {
	// Arrange
	InitRegistry()
	defer func() { Registry = nil }()
	collector := NewCommandMetricsCollector()
	require.NoError(t, collector.Register())

	m := mediator.NewMediator()
	m.RegisterMiddleware(PrometheusMiddleware(collector))
	require.NoError(t, m.Register(reflect.TypeOf(&assignCommand{}), failingHandler{}))

	// Act
	_, err := m.Send(context.Background(), &assignCommand{})

	// Assert
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("assignCommand", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.rejectionsTotal.WithLabelValues("assignCommand", "OVER_ASSIGNMENT")))
}

func TestEngineCollector_RecordsThroughGlobals(t *testing.T) {
	// Arrange
	collector := NewEngineMetricsCollector()
	SetGlobalEngineCollector(collector)
	defer SetGlobalEngineCollector(nil)

	// Act
	RecordPiecesMoved("stitching", "worker", 7)
	RecordPiecesMoved("stitching", "worker", 0)
	RecordPayable("acme", 4, 6.0)

	// Assert
	assert.Equal(t, 7.0, testutil.ToFloat64(collector.piecesMoved.WithLabelValues("stitching", "worker")))
	assert.Equal(t, 6.0, testutil.ToFloat64(collector.payableAmount.WithLabelValues("acme")))
}
