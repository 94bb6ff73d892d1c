package cutting

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestJob(t *testing.T, target shared.QuantityMap) *Job {
	t.Helper()
	job, err := NewJob("line-1", "tee-basic", target, shared.MustNewEmployeeID("emp-cutter"), testNow)
	require.NoError(t, err)
	return job
}

func TestNewJob_Validation(t *testing.T) {
	worker := shared.MustNewEmployeeID("emp-cutter")

	_, err := NewJob("line-1", "tee-basic", shared.QuantityMap{"S": -1}, worker, testNow)
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(err))

	_, err = NewJob("line-1", "tee-basic", shared.QuantityMap{"S": 0}, worker, testNow)
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(err))

	_, err = NewJob("line-1", "tee-basic", shared.QuantityMap{"S": 1}, shared.EmployeeID{}, testNow)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestJob_StockUsageThenCompleteRequiresEverySize(t *testing.T) {
	// Arrange
	job := newTestJob(t, shared.QuantityMap{"S": 10, "M": 20})
	require.NoError(t, job.RecordStockUsage("usage-1", "batch-1", shared.QuantityMap{"S": 10}, testNow))

	// Act
	_, err := job.Complete(testNow)

	// Assert
	var incomplete *IncompleteUsageError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"M"}, incomplete.MissingSizes)
	assert.True(t, errors.Is(err, shared.ErrIncompleteUsage))
	assert.True(t, job.IsOpen())

	// Act: fabric usage for M unblocks completion
	require.NoError(t, job.RecordFabricUsage("fu-1", "roll-1", decimal.NewFromInt(18), shared.QuantityMap{"M": 20}, testNow))
	remaining, err := job.Complete(testNow)

	// Assert
	require.NoError(t, err)
	assert.True(t, shared.QuantityMap{"M": 20}.Equal(remaining))
	assert.Equal(t, []string{"M", "S"}, remaining.Labels())
	assert.Equal(t, JobStatusCompleted, job.Status())
	require.NotNil(t, job.CompletedAt())
}

func TestJob_JobWideFabricUsageCoversAllSizes(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 10, "M": 20})
	require.NoError(t, job.RecordFabricUsage("fu-1", "roll-1", decimal.NewFromInt(40), nil, testNow))

	remaining, err := job.Complete(testNow)

	require.NoError(t, err)
	assert.True(t, shared.QuantityMap{"S": 10, "M": 20}.Equal(remaining))
}

func TestJob_ExplicitZeroPiecesDoNotCoverOtherSizes(t *testing.T) {
	// Arrange
	job := newTestJob(t, shared.QuantityMap{"S": 4, "M": 6})

	// Act
	require.NoError(t, job.RecordFabricUsage("fu-1", "roll-1", decimal.NewFromInt(3), shared.QuantityMap{"M": 0}, testNow))
	_, err := job.Complete(testNow)

	// Assert
	assert.Equal(t, shared.CodeIncompleteUsage, shared.CodeOf(err))
	assert.Equal(t, []string{"M", "S"}, job.MissingSizes())
	require.Len(t, job.FabricUsages(), 1)
	assert.NotNil(t, job.FabricUsages()[0].Pieces)
	assert.True(t, job.IsOpen())
}

func TestJob_StockUsageBeyondUnallocatedIsOverAllocation(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 10, "M": 20})
	require.NoError(t, job.RecordStockUsage("usage-1", "batch-1", shared.QuantityMap{"S": 6}, testNow))

	err := job.RecordStockUsage("usage-2", "batch-1", shared.QuantityMap{"S": 5}, testNow)

	var exceeded *shared.QuantityExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, shared.CodeOverAllocation, exceeded.Code)
	assert.Equal(t, "S", exceeded.Size)
	assert.Equal(t, 4, exceeded.Available)
	assert.Len(t, job.StockUsages(), 1)
}

func TestJob_AttributedPiecesCountAgainstTarget(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 10})
	require.NoError(t, job.RecordFabricUsage("fu-1", "roll-1", decimal.NewFromInt(5), shared.QuantityMap{"S": 8}, testNow))

	err := job.RecordStockUsage("usage-1", "batch-1", shared.QuantityMap{"S": 3}, testNow)

	assert.True(t, errors.Is(err, shared.ErrOverAllocation))
	assert.True(t, shared.QuantityMap{"S": 2}.Equal(job.Unallocated()))
}

func TestJob_ForeignSizeIsInvalidQuantityMap(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 10})

	err := job.RecordStockUsage("usage-1", "batch-1", shared.QuantityMap{"XXL": 1}, testNow)

	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(err))
}

func TestJob_FullStockCoverageCompletesWithZeroRemaining(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 4})
	require.NoError(t, job.RecordStockUsage("usage-1", "batch-1", shared.QuantityMap{"S": 4}, testNow))

	remaining, err := job.Complete(testNow)

	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
}

func TestJob_CompletedJobRejectsFurtherUsage(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 4})
	require.NoError(t, job.RecordFabricUsage("fu-1", "roll-1", decimal.NewFromInt(3), nil, testNow))
	_, err := job.Complete(testNow)
	require.NoError(t, err)

	err = job.CheckFabricUsage(nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	_, err = job.Complete(testNow)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestJob_RawLengthIsNotConstrainedByTarget(t *testing.T) {
	job := newTestJob(t, shared.QuantityMap{"S": 1})

	err := job.RecordFabricUsage("fu-1", "roll-1", decimal.NewFromInt(500), nil, testNow)

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(job.FabricLength()))
}
