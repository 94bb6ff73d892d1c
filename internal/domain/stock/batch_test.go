package stock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestBatch_WithdrawDecrementsAvailable(t *testing.T) {
	// Arrange
	batch, err := NewOpeningBatch("tee-basic", shared.QuantityMap{"S": 15, "M": 4}, testNow)
	require.NoError(t, err)

	// Act
	err = batch.Withdraw(shared.QuantityMap{"S": 10}, testNow)

	// Assert
	require.NoError(t, err)
	assert.True(t, shared.QuantityMap{"S": 5, "M": 4}.Equal(batch.Available()))
	assert.True(t, shared.QuantityMap{"S": 15, "M": 4}.Equal(batch.Produced()))
}

func TestBatch_WithdrawBeyondAvailableFailsWithoutChange(t *testing.T) {
	batch, err := NewOpeningBatch("tee-basic", shared.QuantityMap{"S": 15, "M": 4}, testNow)
	require.NoError(t, err)

	err = batch.Withdraw(shared.QuantityMap{"S": 1, "M": 5}, testNow)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrOverAllocation))
	var exceeded *shared.QuantityExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, "M", exceeded.Size)
	assert.Equal(t, 4, exceeded.Available)
	assert.True(t, shared.QuantityMap{"S": 15, "M": 4}.Equal(batch.Available()))
}

func TestBatch_OrderLineBatchStartsCompletedAndCannotSubstitute(t *testing.T) {
	batch, err := NewProducedBatch("tee-basic", "line-1", "asg-9", shared.QuantityMap{"L": 3}, testNow)
	require.NoError(t, err)

	assert.Equal(t, shared.DispatchStateCompleted, batch.DispatchState())
	assert.False(t, batch.IsInternal())
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(batch.CanSubstituteFor("tee-basic")))
}

func TestBatch_InternalBatchRejectsOtherProduct(t *testing.T) {
	batch, err := NewOpeningBatch("tee-basic", shared.QuantityMap{"L": 3}, testNow)
	require.NoError(t, err)

	assert.NoError(t, batch.CanSubstituteFor("tee-basic"))
	assert.Error(t, batch.CanSubstituteFor("polo"))
	assert.Equal(t, shared.DispatchStateNone, batch.DispatchState())
}

func TestResolveSubstitution(t *testing.T) {
	tests := []struct {
		name      string
		required  shared.QuantityMap
		available shared.QuantityMap
		produced  shared.QuantityMap
		expected  shared.QuantityMap
	}{
		{
			name:      "stock smaller than requirement",
			required:  shared.QuantityMap{"S": 10, "M": 20},
			available: shared.QuantityMap{"S": 15, "M": 5},
			expected:  shared.QuantityMap{"S": 10, "M": 5},
		},
		{
			name:      "already produced reduces the need",
			required:  shared.QuantityMap{"S": 10, "M": 20},
			available: shared.QuantityMap{"S": 15, "M": 30},
			produced:  shared.QuantityMap{"S": 4, "M": 20},
			expected:  shared.QuantityMap{"S": 6, "M": 0},
		},
		{
			name:      "overproduction never goes negative",
			required:  shared.QuantityMap{"S": 2},
			available: shared.QuantityMap{"S": 15},
			produced:  shared.QuantityMap{"S": 5},
			expected:  shared.QuantityMap{"S": 0},
		},
		{
			name:      "sizes missing from stock resolve to zero",
			required:  shared.QuantityMap{"XL": 7},
			available: shared.QuantityMap{"S": 15},
			expected:  shared.QuantityMap{"XL": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usable := ResolveSubstitution(tt.required, tt.available, tt.produced)

			assert.True(t, tt.expected.Equal(usable), "got %s", usable)
			assert.True(t, tt.required.Covers(usable))
			assert.True(t, tt.available.Covers(usable))
			assert.ElementsMatch(t, tt.required.Labels(), usable.Labels())
		})
	}
}

func TestResolveSubstitution_DoesNotMutateInputs(t *testing.T) {
	required := shared.QuantityMap{"S": 10}
	available := shared.QuantityMap{"S": 3}

	_ = ResolveSubstitution(required, available, nil)

	assert.Equal(t, shared.QuantityMap{"S": 10}, required)
	assert.Equal(t, shared.QuantityMap{"S": 3}, available)
}
