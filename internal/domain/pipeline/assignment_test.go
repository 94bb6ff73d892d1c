package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

var (
	testNow     = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	testCatalog = MustNewStageCatalog("cutting", "stitching", "overlock", "finishing")
	testLineage = Lineage{JobID: "job-1", OrderLineID: "line-1", ProductID: "tee-basic"}
)

func stageOne(t *testing.T, remaining shared.QuantityMap) *Assignment {
	t.Helper()
	a, err := NewStageOneAssignment(testLineage, remaining, testNow)
	require.NoError(t, err)
	return a
}

func allocation(t *testing.T, employee string, q shared.QuantityMap) WorkerAllocation {
	t.Helper()
	alloc, err := NewWorkerAllocation(shared.MustNewEmployeeID(employee), q, decimal.RequireFromString("1.25"))
	require.NoError(t, err)
	return alloc
}

func TestAssign_WorkerAndStockSplit(t *testing.T) {
	// Arrange
	parent := stageOne(t, shared.QuantityMap{"M": 20})

	// Act
	result, err := parent.Assign(AssignRequest{
		Allocations: []WorkerAllocation{allocation(t, "emp-1", shared.QuantityMap{"M": 15})},
		StockUsage:  shared.QuantityMap{"M": 5},
	}, testCatalog, testNow)

	// Assert
	require.NoError(t, err)
	assert.True(t, parent.Remaining().IsZero())
	assert.Equal(t, []string{"M"}, parent.Remaining().Labels())
	require.NotNil(t, result.Child)
	assert.True(t, shared.QuantityMap{"M": 15}.Equal(result.Child.Remaining()))
	assert.Equal(t, 2, result.Child.StageIndex())
	assert.Equal(t, parent.ID(), result.Child.ParentID())
	assert.Equal(t, AssignmentStatusActive, result.Child.Status())
	assert.True(t, shared.QuantityMap{"M": 5}.Equal(result.StockUsed))
	assert.False(t, result.AutoFulfilled)
	assert.False(t, parent.IsAvailable())
}

func TestAssign_MultipleWorkersShareOneChild(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"S": 10, "M": 20})

	result, err := parent.Assign(AssignRequest{
		Allocations: []WorkerAllocation{
			allocation(t, "emp-1", shared.QuantityMap{"S": 4, "M": 10}),
			allocation(t, "emp-2", shared.QuantityMap{"M": 6}),
		},
	}, testCatalog, testNow)

	require.NoError(t, err)
	assert.True(t, shared.QuantityMap{"S": 6, "M": 4}.Equal(parent.Remaining()))
	assert.True(t, shared.QuantityMap{"S": 4, "M": 16}.Equal(result.Child.Remaining()))
	assert.Len(t, result.Child.Allocations(), 2)
	assert.Equal(t, []string{"M", "S"}, result.Child.Remaining().Labels())
	assert.True(t, parent.IsAvailable())
}

func TestAssign_OverAssignmentRejectsWholeBatch(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"S": 10, "M": 20})

	_, err := parent.Assign(AssignRequest{
		Allocations: []WorkerAllocation{
			allocation(t, "emp-1", shared.QuantityMap{"S": 10}),
			allocation(t, "emp-2", shared.QuantityMap{"M": 15}),
		},
		StockUsage: shared.QuantityMap{"M": 6},
	}, testCatalog, testNow)

	var exceeded *shared.QuantityExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, shared.CodeOverAssignment, exceeded.Code)
	assert.Equal(t, "M", exceeded.Size)
	assert.Equal(t, 21, exceeded.Requested)
	assert.Equal(t, 20, exceeded.Available)
	assert.True(t, shared.QuantityMap{"S": 10, "M": 20}.Equal(parent.Remaining()))
}

func TestAssign_StockOnlyFullCoverageIsAutoFulfilled(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"L": 3})

	result, err := parent.Assign(AssignRequest{StockUsage: shared.QuantityMap{"L": 3}}, testCatalog, testNow)

	require.NoError(t, err)
	assert.Nil(t, result.Child)
	assert.True(t, result.AutoFulfilled)
	assert.True(t, parent.AutoFulfilled())
	assert.True(t, parent.IsExhausted())
}

func TestAssign_PartialStockIsNotAutoFulfilled(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"L": 3})

	result, err := parent.Assign(AssignRequest{StockUsage: shared.QuantityMap{"L": 1}}, testCatalog, testNow)

	require.NoError(t, err)
	assert.Nil(t, result.Child)
	assert.False(t, result.AutoFulfilled)
	assert.True(t, shared.QuantityMap{"L": 2}.Equal(parent.Remaining()))
}

func TestAssign_StockAfterWorkerShareIsNotAutoFulfilled(t *testing.T) {
	// Arrange
	parent := stageOne(t, shared.QuantityMap{"M": 20})
	_, err := parent.Assign(AssignRequest{
		Allocations: []WorkerAllocation{allocation(t, "emp-1", shared.QuantityMap{"M": 5})},
	}, testCatalog, testNow)
	require.NoError(t, err)

	// Act
	result, err := parent.Assign(AssignRequest{StockUsage: shared.QuantityMap{"M": 15}}, testCatalog, testNow)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, result.Child)
	assert.False(t, result.AutoFulfilled)
	assert.False(t, parent.AutoFulfilled())
	assert.True(t, parent.Forwarded())
	assert.True(t, parent.IsExhausted())
}

func TestAssign_StockAfterExternalSendIsNotAutoFulfilled(t *testing.T) {
	// Arrange
	parent := stageOne(t, shared.QuantityMap{"L": 12})
	_, err := parent.SendExternal("Acme Wash", decimal.RequireFromString("0.80"), shared.QuantityMap{"L": 4}, testCatalog, testNow)
	require.NoError(t, err)

	// Act
	result, err := parent.Assign(AssignRequest{StockUsage: shared.QuantityMap{"L": 8}}, testCatalog, testNow)

	// Assert
	require.NoError(t, err)
	assert.False(t, result.AutoFulfilled)
}

func TestAssign_RejectsForeignSizeAndEmptyRequest(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"L": 3})

	_, err := parent.Assign(AssignRequest{StockUsage: shared.QuantityMap{"XL": 1}}, testCatalog, testNow)
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(err))

	_, err = parent.Assign(AssignRequest{}, testCatalog, testNow)
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(err))
}

func TestAssign_ActiveAssignmentCannotBeForwarded(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"M": 4})
	result, err := parent.Assign(AssignRequest{
		Allocations: []WorkerAllocation{allocation(t, "emp-1", shared.QuantityMap{"M": 4})},
	}, testCatalog, testNow)
	require.NoError(t, err)

	_, err = result.Child.Assign(AssignRequest{StockUsage: shared.QuantityMap{"M": 1}}, testCatalog, testNow)

	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestCompleteStageThenFinalizeAtTerminal(t *testing.T) {
	// Arrange: walk a lineage from stage 1 to the terminal stage 4
	current := stageOne(t, shared.QuantityMap{"M": 4})
	for stage := 2; stage <= testCatalog.Terminal(); stage++ {
		result, err := current.Assign(AssignRequest{
			Allocations: []WorkerAllocation{allocation(t, "emp-1", shared.QuantityMap{"M": 4})},
		}, testCatalog, testNow)
		require.NoError(t, err)
		current = result.Child
		require.NoError(t, current.CompleteStage(testNow))
	}

	// Act
	produced, err := current.Finalize(testCatalog, testNow)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, current.StageIndex())
	assert.True(t, shared.QuantityMap{"M": 4}.Equal(produced))
	assert.Equal(t, AssignmentStatusCompleted, current.Status())
	assert.True(t, current.IsExhausted())

	_, err = current.Finalize(testCatalog, testNow)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestAssign_TerminalStageCannotAssign(t *testing.T) {
	catalog := MustNewStageCatalog("cutting")
	parent := stageOne(t, shared.QuantityMap{"M": 4})

	_, err := parent.Assign(AssignRequest{StockUsage: shared.QuantityMap{"M": 1}}, catalog, testNow)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	produced, err := parent.Finalize(catalog, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, produced.Total())
}

func TestFinalize_BeforeTerminalStageFails(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"M": 4})

	_, err := parent.Finalize(testCatalog, testNow)

	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.True(t, shared.QuantityMap{"M": 4}.Equal(parent.Remaining()))
}

func TestCompleteStage_RequiresActive(t *testing.T) {
	parent := stageOne(t, shared.QuantityMap{"M": 4})

	err := parent.CompleteStage(testNow)

	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestLineageConservation(t *testing.T) {
	// Arrange
	target := shared.QuantityMap{"S": 10, "M": 20}
	root := stageOne(t, target)
	lineage := []*Assignment{root}
	stockUsed := shared.QuantityMap{}

	// Act
	r1, err := root.Assign(AssignRequest{
		Allocations: []WorkerAllocation{allocation(t, "emp-1", shared.QuantityMap{"S": 6, "M": 9})},
		StockUsage:  shared.QuantityMap{"M": 2},
	}, testCatalog, testNow)
	require.NoError(t, err)
	lineage = append(lineage, r1.Child)
	stockUsed = stockUsed.Add(r1.StockUsed)

	external, err := root.SendExternal("acme-embroidery", decimal.NewFromInt(2), shared.QuantityMap{"S": 4, "M": 9}, testCatalog, testNow)
	require.NoError(t, err)
	lineage = append(lineage, external)

	// Assert
	sum := stockUsed.Clone()
	for _, a := range lineage {
		sum = sum.Add(a.Remaining())
	}
	assert.True(t, target.Equal(sum), "lineage holds %s", sum)
	assert.True(t, root.IsExhausted())
}
