package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	"github.com/andrescamacho/garmentflow/internal/application/cutting/queries"
	dispatchCommands "github.com/andrescamacho/garmentflow/internal/application/dispatch/commands"
	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/garmentflow/internal/application/stock/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

func newRoll(t *testing.T, engine *helpers.TestEngine, length int64) string {
	t.Helper()
	batch := helpers.MustSend[*fabricCommands.RegisterBatchResponse](t, engine.Mediator, &fabricCommands.RegisterBatchCommand{
		FabricType: "cotton", Color: "navy", Design: "plain", Quality: "A",
	})
	roll := helpers.MustSend[*fabricCommands.IntakeRollResponse](t, engine.Mediator, &fabricCommands.IntakeRollCommand{
		BatchID: batch.BatchID, Length: decimal.NewFromInt(length),
	})
	return roll.RollID
}

func startJob(t *testing.T, engine *helpers.TestEngine, target shared.QuantityMap) string {
	t.Helper()
	resp := helpers.MustSend[*commands.StartJobResponse](t, engine.Mediator, &commands.StartJobCommand{
		ProductID: "tee", Target: target, WorkerID: "cutter-1",
	})
	return resp.JobID
}

func TestCuttingJob_StockThenFabricCompletes(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	jobID := startJob(t, engine, helpers.Sizes("S", 10, "M", 20))
	stock := helpers.MustSend[*stockCommands.ImportStockResponse](t, engine.Mediator, &stockCommands.ImportStockCommand{
		ProductID: "tee", Quantities: helpers.Sizes("S", 15),
	})

	// Act
	usage := helpers.MustSend[*commands.RecordStockUsageResponse](t, engine.Mediator, &commands.RecordStockUsageCommand{
		JobID: jobID, StockBatchID: stock.StockBatchID, Quantities: helpers.Sizes("S", 10),
	})
	incompleteErr := helpers.SendErr(engine.Mediator, &commands.CompleteJobCommand{JobID: jobID})

	rollID := newRoll(t, engine, 40)
	helpers.MustSend[*commands.RecordFabricUsageResponse](t, engine.Mediator, &commands.RecordFabricUsageCommand{
		JobID: jobID, RollID: rollID, Amount: decimal.NewFromInt(12), Pieces: helpers.Sizes("M", 20),
	})
	completed := helpers.MustSend[*commands.CompleteJobResponse](t, engine.Mediator, &commands.CompleteJobCommand{JobID: jobID})

	// Assert
	assert.True(t, usage.BatchAvailable.Equal(helpers.Sizes("S", 5)))

	var incomplete *cutting.IncompleteUsageError
	require.True(t, errors.As(incompleteErr, &incomplete))
	assert.Equal(t, []string{"M"}, incomplete.MissingSizes)

	assert.NotEmpty(t, completed.StageOneID)
	assert.True(t, completed.Remaining.Equal(helpers.Sizes("M", 20)))

	job := helpers.MustSend[*queries.JobView](t, engine.Mediator, &queries.GetJobQuery{JobID: jobID})
	assert.Equal(t, string(cutting.JobStatusCompleted), job.Status)
	assert.True(t, job.StockCovered.Equal(helpers.Sizes("S", 10)))
	assert.True(t, job.Unallocated.IsZero())
	assert.Equal(t, completed.StageOneID, job.StageOneID)

	batch := helpers.MustSend[*stockQueries.BatchView](t, engine.Mediator, &stockQueries.GetBatchQuery{StockBatchID: stock.StockBatchID})
	assert.True(t, batch.Available.Equal(helpers.Sizes("S", 5)))
}

func TestCuttingJob_StockCoveringEverythingEmitsNoStage(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	jobID := startJob(t, engine, helpers.Sizes("L", 4))
	stock := helpers.MustSend[*stockCommands.ImportStockResponse](t, engine.Mediator, &stockCommands.ImportStockCommand{
		ProductID: "tee", Quantities: helpers.Sizes("L", 4),
	})
	helpers.MustSend[*commands.RecordStockUsageResponse](t, engine.Mediator, &commands.RecordStockUsageCommand{
		JobID: jobID, StockBatchID: stock.StockBatchID, Quantities: helpers.Sizes("L", 4),
	})

	// Act
	completed := helpers.MustSend[*commands.CompleteJobResponse](t, engine.Mediator, &commands.CompleteJobCommand{JobID: jobID})

	// Assert
	assert.Empty(t, completed.StageOneID)
	assert.True(t, completed.Remaining.IsZero())
}

func TestRecordStockUsage_OverAllocationRejectsWholeUsage(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	jobID := startJob(t, engine, helpers.Sizes("S", 3, "M", 3))
	stock := helpers.MustSend[*stockCommands.ImportStockResponse](t, engine.Mediator, &stockCommands.ImportStockCommand{
		ProductID: "tee", Quantities: helpers.Sizes("S", 10, "M", 10),
	})

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.RecordStockUsageCommand{
		JobID: jobID, StockBatchID: stock.StockBatchID, Quantities: helpers.Sizes("S", 2, "M", 4),
	})

	// Assert
	assert.True(t, errors.Is(err, shared.ErrOverAllocation))
	batch := helpers.MustSend[*stockQueries.BatchView](t, engine.Mediator, &stockQueries.GetBatchQuery{StockBatchID: stock.StockBatchID})
	assert.True(t, batch.Available.Equal(helpers.Sizes("S", 10, "M", 10)))
	job := helpers.MustSend[*queries.JobView](t, engine.Mediator, &queries.GetJobQuery{JobID: jobID})
	assert.Empty(t, job.StockUsages)
}

func TestRecordStockUsage_OtherProductIsRejected(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	jobID := startJob(t, engine, helpers.Sizes("S", 3))
	stock := helpers.MustSend[*stockCommands.ImportStockResponse](t, engine.Mediator, &stockCommands.ImportStockCommand{
		ProductID: "polo", Quantities: helpers.Sizes("S", 10),
	})

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.RecordStockUsageCommand{
		JobID: jobID, StockBatchID: stock.StockBatchID, Quantities: helpers.Sizes("S", 2),
	})

	// Assert
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestRecordFabricUsage_PieceAttributionBeyondTarget(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	jobID := startJob(t, engine, helpers.Sizes("M", 5))
	rollID := newRoll(t, engine, 20)

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.RecordFabricUsageCommand{
		JobID: jobID, RollID: rollID, Amount: decimal.NewFromInt(3), Pieces: helpers.Sizes("M", 6),
	})

	// Assert
	assert.True(t, errors.Is(err, shared.ErrOverAllocation))
	rolls, findErr := engine.Repos.Rolls.FindByID(context.Background(), rollID)
	require.NoError(t, findErr)
	assert.True(t, rolls.RemainingLength().Equal(decimal.NewFromInt(20)))
}

func TestRecordFabricUsage_FailedReservationLeavesJobUnchanged(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	jobID := startJob(t, engine, helpers.Sizes("M", 5))

	mock := helpers.NewMockMediator()
	mock.SetSendFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, fabric.NewInsufficientFabricError("roll-1", decimal.NewFromInt(9), decimal.NewFromInt(2))
	})
	handler := commands.NewRecordFabricUsageHandler(engine.Repos.Jobs, mock, engine.Transactor, engine.Clock)

	// Act
	_, err := handler.Handle(context.Background(), &commands.RecordFabricUsageCommand{
		JobID: jobID, RollID: "roll-1", Amount: decimal.NewFromInt(9),
	})

	// Assert
	assert.True(t, errors.Is(err, shared.ErrInsufficientFabric))
	assert.Equal(t, []string{"ReserveUsageCommand"}, mock.GetCallLog())
	job, findErr := engine.Repos.Jobs.FindByID(context.Background(), jobID)
	require.NoError(t, findErr)
	assert.Empty(t, job.FabricUsages())
}

func TestStartJob_UnknownWorkerIsRejected(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.StartJobCommand{
		ProductID: "tee", Target: helpers.Sizes("S", 1), WorkerID: "ghost",
	})

	// Assert
	var validation *shared.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "worker_id", validation.Field)
}

func TestStartJob_OrderLineDefaultsProductAndOwnsOneLineage(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	order := helpers.MustSend[*dispatchCommands.CreateOrderResponse](t, engine.Mediator, &dispatchCommands.CreateOrderCommand{
		Client: "ACME",
		Lines:  []dispatchCommands.OrderLineInput{{ProductID: "hoodie", Quantities: helpers.Sizes("M", 4)}},
	})
	lineID := order.LineIDs[0]

	// Act
	first := helpers.MustSend[*commands.StartJobResponse](t, engine.Mediator, &commands.StartJobCommand{
		OrderLineID: lineID, Target: helpers.Sizes("M", 4), WorkerID: "cutter-1",
	})
	secondErr := helpers.SendErr(engine.Mediator, &commands.StartJobCommand{
		OrderLineID: lineID, Target: helpers.Sizes("M", 4), WorkerID: "cutter-1",
	})
	mismatchErr := helpers.SendErr(engine.Mediator, &commands.StartJobCommand{
		OrderLineID: lineID, ProductID: "tee", Target: helpers.Sizes("M", 4), WorkerID: "cutter-1",
	})

	// Assert
	job := helpers.MustSend[*queries.JobView](t, engine.Mediator, &queries.GetJobQuery{JobID: first.JobID})
	assert.Equal(t, "hoodie", job.ProductID)
	assert.Equal(t, lineID, job.OrderLineID)
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(secondErr))
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(mismatchErr))
}

func TestStartJob_OrderLineTargetMustMatchLine(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	order := helpers.MustSend[*dispatchCommands.CreateOrderResponse](t, engine.Mediator, &dispatchCommands.CreateOrderCommand{
		Client: "ACME",
		Lines:  []dispatchCommands.OrderLineInput{{ProductID: "tee", Quantities: helpers.Sizes("S", 2)}},
	})
	lineID := order.LineIDs[0]

	// Act
	otherSizesErr := helpers.SendErr(engine.Mediator, &commands.StartJobCommand{
		OrderLineID: lineID, Target: helpers.Sizes("XL", 50), WorkerID: "cutter-1",
	})
	otherCountErr := helpers.SendErr(engine.Mediator, &commands.StartJobCommand{
		OrderLineID: lineID, Target: helpers.Sizes("S", 5), WorkerID: "cutter-1",
	})
	started := helpers.MustSend[*commands.StartJobResponse](t, engine.Mediator, &commands.StartJobCommand{
		OrderLineID: lineID, WorkerID: "cutter-1",
	})

	// Assert
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(otherSizesErr))
	assert.Equal(t, shared.CodeInvalidQuantityMap, shared.CodeOf(otherCountErr))
	job := helpers.MustSend[*queries.JobView](t, engine.Mediator, &queries.GetJobQuery{JobID: started.JobID})
	assert.True(t, job.Target.Equal(helpers.Sizes("S", 2)), "target %s", job.Target)
	assert.Equal(t, "tee", job.ProductID)
}

func TestStartJob_ConcurrentStartsForOneLineOpenOneLineage(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	order := helpers.MustSend[*dispatchCommands.CreateOrderResponse](t, engine.Mediator, &dispatchCommands.CreateOrderCommand{
		Client: "ACME",
		Lines:  []dispatchCommands.OrderLineInput{{ProductID: "tee", Quantities: helpers.Sizes("M", 4)}},
	})
	lineID := order.LineIDs[0]
	const starters = 8

	// Act
	errs := make([]error, starters)
	var wg sync.WaitGroup
	for i := 0; i < starters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Mediator.Send(context.Background(), &commands.StartJobCommand{
				OrderLineID: lineID, WorkerID: "cutter-1",
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
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)

	jobs, err := engine.Repos.Jobs.FindByOrderLines(context.Background(), []string{lineID})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestListJobs_FiltersByStatus(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	startJob(t, engine, helpers.Sizes("S", 1))
	startJob(t, engine, helpers.Sizes("M", 1))

	// Act
	open := helpers.MustSend[*queries.ListJobsResponse](t, engine.Mediator, &queries.ListJobsQuery{Status: "OPEN"})
	completed := helpers.MustSend[*queries.ListJobsResponse](t, engine.Mediator, &queries.ListJobsQuery{Status: "COMPLETED"})
	invalidErr := helpers.SendErr(engine.Mediator, &queries.ListJobsQuery{Status: "BOGUS"})

	// Assert
	assert.Len(t, open.Jobs, 2)
	assert.Empty(t, completed.Jobs)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(invalidErr))
}
