package pipeline

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

func sendExternal(t *testing.T, sent shared.QuantityMap) (*Assignment, *Assignment) {
	t.Helper()
	parent := stageOne(t, sent.Clone())
	child, err := parent.SendExternal("acme-embroidery", decimal.RequireFromString("0.80"), sent, testCatalog, testNow)
	require.NoError(t, err)
	return parent, child
}

func TestReceive_OverReceiptLeavesStateUnchanged(t *testing.T) {
	// Arrange
	_, child := sendExternal(t, shared.QuantityMap{"L": 12})
	_, err := child.Receive(shared.QuantityMap{"L": 8}, testNow)
	require.NoError(t, err)

	// Act
	_, err = child.Receive(shared.QuantityMap{"L": 5}, testNow)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrOverReceipt))
	assert.True(t, shared.QuantityMap{"L": 8}.Equal(child.External().Received()))
	assert.Equal(t, AssignmentStatusActive, child.Status())

	// Act: the exact outstanding quantity completes the job
	payable, err := child.Receive(shared.QuantityMap{"L": 4}, testNow)

	// Assert
	require.NoError(t, err)
	assert.True(t, shared.QuantityMap{"L": 12}.Equal(child.External().Received()))
	assert.True(t, child.External().IsFullyReceived())
	assert.True(t, child.External().Outstanding().IsZero())
	assert.Equal(t, AssignmentStatusProcessedAwaitingNext, child.Status())
	assert.True(t, child.IsAvailable())
	assert.Equal(t, "acme-embroidery", payable.Subcontractor)
	assert.Equal(t, 4, payable.Quantity)
	assert.True(t, decimal.RequireFromString("3.20").Equal(payable.Amount))
}

func TestReceive_MonotoneAcrossDeliveries(t *testing.T) {
	_, child := sendExternal(t, shared.QuantityMap{"S": 3, "M": 5})
	deliveries := []shared.QuantityMap{
		{"S": 1},
		{"M": 6},
		{"M": 2, "S": 1},
		{"S": 2},
		{"M": 3, "S": 1},
	}

	previous := child.External().Received()
	for _, delta := range deliveries {
		_, _ = child.Receive(delta, testNow)
		current := child.External().Received()
		assert.True(t, current.Covers(previous), "received went from %s to %s", previous, current)
		assert.True(t, child.External().Sent().Covers(current))
		previous = current
	}
	assert.True(t, child.External().IsFullyReceived())
}

func TestExternalChild_NotForwardableUntilFullyReceived(t *testing.T) {
	_, child := sendExternal(t, shared.QuantityMap{"L": 2})
	_, err := child.Receive(shared.QuantityMap{"L": 1}, testNow)
	require.NoError(t, err)

	_, err = child.Assign(AssignRequest{StockUsage: shared.QuantityMap{"L": 1}}, testCatalog, testNow)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.False(t, child.IsAvailable())

	err = child.CompleteStage(testNow)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestSendExternal_ExceedingRemainingIsOverAssignment(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"L": 2})

	_, err := parent.SendExternal("acme-embroidery", decimal.NewFromInt(1), shared.QuantityMap{"L": 3}, testCatalog, testNow)

	assert.True(t, errors.Is(err, shared.ErrOverAssignment))
	assert.True(t, shared.QuantityMap{"L": 2}.Equal(parent.Remaining()))
}

func TestReceive_OnInHouseAssignmentFails(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"L": 2})

	_, err := parent.Receive(shared.QuantityMap{"L": 1}, testNow)

	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}
