package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

type stageNames []string

func (s stageNames) Name(index int) string { return s[index-1] }

var testStages = stageNames{"cutting", "stitching", "overlock"}

type fakeShipment struct {
	tracker shared.DispatchTracker
}

func (f *fakeShipment) Dispatch() *shared.DispatchTracker { return &f.tracker }

func shipments(states ...shared.DispatchState) []Shipment {
	out := make([]Shipment, len(states))
	for i, s := range states {
		out[i] = &fakeShipment{tracker: shared.NewDispatchTracker(s)}
	}
	return out
}

func TestLinePhase(t *testing.T) {
	tests := []struct {
		name     string
		progress LineProgress
		expected string
	}{
		{name: "no cutting job", progress: LineProgress{}, expected: "PENDING"},
		{name: "open cutting job", progress: LineProgress{JobStarted: true}, expected: "cutting"},
		{
			name:     "lowest open stage wins",
			progress: LineProgress{JobStarted: true, JobCompleted: true, OpenStages: []int{3, 2}},
			expected: "stitching",
		},
		{
			name: "mixed shipments report the lowest",
			progress: LineProgress{JobStarted: true, JobCompleted: true,
				Shipments: []shared.DispatchState{shared.DispatchStateDelivered, shared.DispatchStatePacked}},
			expected: "PACKED",
		},
		{
			name: "all delivered",
			progress: LineProgress{JobStarted: true, JobCompleted: true,
				Shipments: []shared.DispatchState{shared.DispatchStateDelivered}},
			expected: "DELIVERED",
		},
		{
			name: "completed waiting for packing",
			progress: LineProgress{JobStarted: true, JobCompleted: true,
				Shipments: []shared.DispatchState{shared.DispatchStateCompleted, shared.DispatchStateDelivered}},
			expected: "COMPLETED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LinePhase(tt.progress, testStages).Name())
		})
	}
}

func TestOrderPhase_IsMinimumAcrossLines(t *testing.T) {
	lines := []Phase{
		{Kind: PhaseDelivered},
		{Kind: PhaseInProduction, StageIndex: 3, StageName: "overlock"},
		{Kind: PhaseInProduction, StageIndex: 2, StageName: "stitching"},
		{Kind: PhasePacked},
	}

	assert.Equal(t, "stitching", OrderPhase(lines).Name())
	assert.Equal(t, "PACKED", OrderPhase([]Phase{{Kind: PhaseDelivered}, {Kind: PhasePacked}}).Name())
	assert.Equal(t, "DELIVERED", OrderPhase([]Phase{{Kind: PhaseDelivered}}).Name())
}

func TestPack_IsIdempotent(t *testing.T) {
	// Arrange
	items := shipments(shared.DispatchStateCompleted, shared.DispatchStateCompleted, shared.DispatchStateDelivered)

	// Act
	packed, err := Pack("order-1", items)

	// Assert
	require.NoError(t, err)
	assert.Len(t, packed, 2)

	// Act: second call with no new completions
	again, err := Pack("order-1", items)

	// Assert
	assert.Nil(t, again)
	assert.True(t, errors.Is(err, shared.ErrNothingToPack))
	assert.Equal(t, shared.DispatchStatePacked, items[0].Dispatch().DispatchState())
	assert.Equal(t, shared.DispatchStateDelivered, items[2].Dispatch().DispatchState())
}

func TestDeliver_RequiresPackedQuantity(t *testing.T) {
	items := shipments(shared.DispatchStateCompleted)

	_, err := Deliver("order-1", items)
	assert.True(t, errors.Is(err, shared.ErrNothingPacked))

	_, err = Pack("order-1", items)
	require.NoError(t, err)
	delivered, err := Deliver("order-1", items)
	require.NoError(t, err)
	assert.Len(t, delivered, 1)
	assert.Equal(t, shared.DispatchStateDelivered, items[0].Dispatch().DispatchState())
}

func TestNewOrder_ValidatesShape(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := NewOrder("client-7", []LineSpec{{ProductID: "tee", Quantities: shared.QuantityMap{"S": -2}}}, at)
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(err))

	_, err = NewOrder("client-7", nil, at)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	order, err := NewOrder("client-7", []LineSpec{
		{ProductID: "tee", Quantities: shared.QuantityMap{"S": 2}},
		{ProductID: "polo", Quantities: shared.QuantityMap{"M": 1}},
	}, at)
	require.NoError(t, err)
	assert.Len(t, order.Lines(), 2)
	assert.Equal(t, order.ID(), order.Lines()[0].OrderID())
	line, ok := order.Line(order.LineIDs()[1])
	require.True(t, ok)
	assert.Equal(t, "polo", line.ProductID())
}
