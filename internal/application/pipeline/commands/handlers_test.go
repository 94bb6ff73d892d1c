package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	"github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	"github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/garmentflow/internal/application/stock/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

// cutStageOne runs a cutting job to completion and returns its stage 1 assignment
func cutStageOne(t *testing.T, engine *helpers.TestEngine, target shared.QuantityMap) string {
	t.Helper()
	batch := helpers.MustSend[*fabricCommands.RegisterBatchResponse](t, engine.Mediator, &fabricCommands.RegisterBatchCommand{
		FabricType: "cotton", Color: "navy", Design: "plain", Quality: "A",
	})
	roll := helpers.MustSend[*fabricCommands.IntakeRollResponse](t, engine.Mediator, &fabricCommands.IntakeRollCommand{
		BatchID: batch.BatchID, Length: decimal.NewFromInt(100),
	})
	job := helpers.MustSend[*cuttingCommands.StartJobResponse](t, engine.Mediator, &cuttingCommands.StartJobCommand{
		ProductID: "tee", Target: target, WorkerID: "cutter-1",
	})
	helpers.MustSend[*cuttingCommands.RecordFabricUsageResponse](t, engine.Mediator, &cuttingCommands.RecordFabricUsageCommand{
		JobID: job.JobID, RollID: roll.RollID, Amount: decimal.NewFromInt(10),
	})
	completed := helpers.MustSend[*cuttingCommands.CompleteJobResponse](t, engine.Mediator, &cuttingCommands.CompleteJobCommand{
		JobID: job.JobID,
	})
	require.NotEmpty(t, completed.StageOneID)
	return completed.StageOneID
}

func importStock(t *testing.T, engine *helpers.TestEngine, q shared.QuantityMap) string {
	t.Helper()
	resp := helpers.MustSend[*stockCommands.ImportStockResponse](t, engine.Mediator, &stockCommands.ImportStockCommand{
		ProductID: "tee", Quantities: q,
	})
	return resp.StockBatchID
}

func share(worker string, q shared.QuantityMap) commands.WorkerShare {
	return commands.WorkerShare{WorkerID: worker, Quantities: q, RatePerPiece: decimal.RequireFromString("0.40")}
}

func TestAssign_WorkerAndStockSplitRemaining(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1", "stitcher-1")
	stageOne := cutStageOne(t, engine, helpers.Sizes("M", 20))
	batchID := importStock(t, engine, helpers.Sizes("M", 8))

	// Act
	resp := helpers.MustSend[*commands.AssignResponse](t, engine.Mediator, &commands.AssignCommand{
		AssignmentID: stageOne,
		Workers:      []commands.WorkerShare{share("stitcher-1", helpers.Sizes("M", 15))},
		StockBatchID: batchID,
		StockUsage:   helpers.Sizes("M", 5),
	})

	// Assert
	assert.True(t, resp.Remaining.IsZero())
	assert.False(t, resp.AutoFulfilled)
	require.NotEmpty(t, resp.ChildID)
	assert.NotEmpty(t, resp.StockUsageID)

	child := helpers.MustSend[*queries.AssignmentView](t, engine.Mediator, &queries.GetAssignmentQuery{AssignmentID: resp.ChildID})
	assert.Equal(t, 2, child.StageIndex)
	assert.Equal(t, "stitching", child.StageName)
	assert.Equal(t, stageOne, child.ParentID)
	assert.True(t, child.Remaining.Equal(helpers.Sizes("M", 15)))
	assert.Equal(t, string(pipeline.AssignmentStatusActive), child.Status)

	batch := helpers.MustSend[*stockQueries.BatchView](t, engine.Mediator, &stockQueries.GetBatchQuery{StockBatchID: batchID})
	assert.True(t, batch.Available.Equal(helpers.Sizes("M", 3)))
}

func TestAssign_OverAssignmentChangesNothing(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1", "stitcher-1", "stitcher-2")
	stageOne := cutStageOne(t, engine, helpers.Sizes("S", 10, "M", 10))
	batchID := importStock(t, engine, helpers.Sizes("S", 5))

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.AssignCommand{
		AssignmentID: stageOne,
		Workers: []commands.WorkerShare{
			share("stitcher-1", helpers.Sizes("S", 4, "M", 6)),
			share("stitcher-2", helpers.Sizes("M", 5)),
		},
		StockBatchID: batchID,
		StockUsage:   helpers.Sizes("S", 1),
	})

	// Assert
	var exceeded *shared.QuantityExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, shared.CodeOverAssignment, exceeded.Code)
	assert.Equal(t, "M", exceeded.Size)

	parent := helpers.MustSend[*queries.AssignmentView](t, engine.Mediator, &queries.GetAssignmentQuery{AssignmentID: stageOne})
	assert.True(t, parent.Remaining.Equal(helpers.Sizes("S", 10, "M", 10)))
	batch := helpers.MustSend[*stockQueries.BatchView](t, engine.Mediator, &stockQueries.GetBatchQuery{StockBatchID: batchID})
	assert.True(t, batch.Available.Equal(helpers.Sizes("S", 5)))
	lineage := helpers.MustSend[*queries.ListLineageResponse](t, engine.Mediator, &queries.ListLineageQuery{JobID: parent.JobID})
	assert.Len(t, lineage.Assignments, 1)
}

func TestAssign_ConcurrentAssignsCannotBothTakeTheSamePieces(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	stageOne := cutStageOne(t, engine, helpers.Sizes("M", 20))
	const workers = 8

	// Act
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Mediator.Send(context.Background(), &commands.AssignCommand{
				AssignmentID: stageOne,
				Workers:      []commands.WorkerShare{share("stitcher-1", helpers.Sizes("M", 15))},
			})
		}(i)
	}
	wg.Wait()

	// Assert
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, shared.CodeOverAssignment, shared.CodeOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)

	view := helpers.MustSend[*queries.AssignmentView](t, engine.Mediator, &queries.GetAssignmentQuery{AssignmentID: stageOne})
	assert.True(t, view.Remaining.Equal(helpers.Sizes("M", 5)), "remaining %s", view.Remaining)
}

func TestAssign_StockOnlyCoverageAutoFulfills(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	stageOne := cutStageOne(t, engine, helpers.Sizes("L", 2))
	batchID := importStock(t, engine, helpers.Sizes("L", 2))

	// Act
	resp := helpers.MustSend[*commands.AssignResponse](t, engine.Mediator, &commands.AssignCommand{
		AssignmentID: stageOne,
		StockBatchID: batchID,
		StockUsage:   helpers.Sizes("L", 2),
	})

	// Assert
	assert.True(t, resp.AutoFulfilled)
	assert.Empty(t, resp.ChildID)

	available := helpers.MustSend[*queries.ListAvailableResponse](t, engine.Mediator, &queries.ListAvailableQuery{})
	assert.Empty(t, available.Assignments)
	view := helpers.MustSend[*queries.AssignmentView](t, engine.Mediator, &queries.GetAssignmentQuery{AssignmentID: stageOne})
	assert.True(t, view.AutoFulfilled)
}

func TestAssign_StockWithoutBatchIsRejected(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	stageOne := cutStageOne(t, engine, helpers.Sizes("L", 2))

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.AssignCommand{AssignmentID: stageOne, StockUsage: helpers.Sizes("L", 1)})

	// Assert
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestPipeline_CompleteAndFinalizeAtTerminalStage(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithStages("cutting", "packing"))
	engine.HireWorkers("cutter-1", "packer-1")
	stageOne := cutStageOne(t, engine, helpers.Sizes("S", 3, "M", 2))
	assigned := helpers.MustSend[*commands.AssignResponse](t, engine.Mediator, &commands.AssignCommand{
		AssignmentID: stageOne,
		Workers:      []commands.WorkerShare{share("packer-1", helpers.Sizes("S", 3, "M", 2))},
	})

	// Act
	prematureErr := helpers.SendErr(engine.Mediator, &commands.FinalizeCommand{AssignmentID: assigned.ChildID})
	completed := helpers.MustSend[*commands.CompleteStageResponse](t, engine.Mediator, &commands.CompleteStageCommand{
		AssignmentID: assigned.ChildID,
	})
	beyondErr := helpers.SendErr(engine.Mediator, &commands.AssignCommand{
		AssignmentID: assigned.ChildID,
		Workers:      []commands.WorkerShare{share("packer-1", helpers.Sizes("S", 1))},
	})
	finalized := helpers.MustSend[*commands.FinalizeResponse](t, engine.Mediator, &commands.FinalizeCommand{
		AssignmentID: assigned.ChildID,
	})
	againErr := helpers.SendErr(engine.Mediator, &commands.FinalizeCommand{AssignmentID: assigned.ChildID})

	// Assert
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(prematureErr))
	assert.Equal(t, string(pipeline.AssignmentStatusProcessedAwaitingNext), completed.Status)
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(beyondErr))
	assert.True(t, finalized.Produced.Equal(helpers.Sizes("S", 3, "M", 2)))
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(againErr))

	batch := helpers.MustSend[*stockQueries.BatchView](t, engine.Mediator, &stockQueries.GetBatchQuery{StockBatchID: finalized.StockBatchID})
	assert.True(t, batch.Internal)
	assert.Equal(t, assigned.ChildID, batch.SourceAssignmentID)
	assert.True(t, batch.Produced.Equal(helpers.Sizes("S", 3, "M", 2)))
}

func TestCompleteStage_RequiresActiveAssignment(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	stageOne := cutStageOne(t, engine, helpers.Sizes("S", 1))

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.CompleteStageCommand{AssignmentID: stageOne})

	// Assert
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestListAvailable_FiltersByStage(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1", "stitcher-1")
	first := cutStageOne(t, engine, helpers.Sizes("S", 4))
	second := cutStageOne(t, engine, helpers.Sizes("S", 4))
	assigned := helpers.MustSend[*commands.AssignResponse](t, engine.Mediator, &commands.AssignCommand{
		AssignmentID: second,
		Workers:      []commands.WorkerShare{share("stitcher-1", helpers.Sizes("S", 4))},
	})
	helpers.MustSend[*commands.CompleteStageResponse](t, engine.Mediator, &commands.CompleteStageCommand{AssignmentID: assigned.ChildID})

	// Act
	stageOneList := helpers.MustSend[*queries.ListAvailableResponse](t, engine.Mediator, &queries.ListAvailableQuery{StageIndex: 1})
	stageTwoList := helpers.MustSend[*queries.ListAvailableResponse](t, engine.Mediator, &queries.ListAvailableQuery{StageIndex: 2})
	invalidErr := helpers.SendErr(engine.Mediator, &queries.ListAvailableQuery{StageIndex: 9})

	// Assert
	require.Len(t, stageOneList.Assignments, 1)
	assert.Equal(t, first, stageOneList.Assignments[0].ID)
	require.Len(t, stageTwoList.Assignments, 1)
	assert.Equal(t, assigned.ChildID, stageTwoList.Assignments[0].ID)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(invalidErr))
}
