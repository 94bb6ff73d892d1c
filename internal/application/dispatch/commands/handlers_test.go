package commands_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	"github.com/andrescamacho/garmentflow/internal/application/dispatch/commands"
	"github.com/andrescamacho/garmentflow/internal/application/dispatch/queries"
	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

func orderStatus(t *testing.T, engine *helpers.TestEngine, orderID string) *queries.OrderStatusView {
	t.Helper()
	return helpers.MustSend[*queries.OrderStatusView](t, engine.Mediator, &queries.GetOrderStatusQuery{OrderID: orderID})
}

func TestOrderLifecycle_ProductionThroughDelivery(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithStages("cutting", "packing"), helpers.WithoutCollaborators())
	order := helpers.MustSend[*commands.CreateOrderResponse](t, engine.Mediator, &commands.CreateOrderCommand{
		Client: "Boutique Lune",
		Lines:  []commands.OrderLineInput{{ProductID: "tee", Quantities: helpers.Sizes("S", 2)}},
	})
	lineID := order.LineIDs[0]
	pending := orderStatus(t, engine, order.OrderID)

	batch := helpers.MustSend[*fabricCommands.RegisterBatchResponse](t, engine.Mediator, &fabricCommands.RegisterBatchCommand{
		FabricType: "cotton", Color: "black", Design: "plain", Quality: "A",
	})
	roll := helpers.MustSend[*fabricCommands.IntakeRollResponse](t, engine.Mediator, &fabricCommands.IntakeRollCommand{
		BatchID: batch.BatchID, Length: decimal.NewFromInt(10),
	})
	job := helpers.MustSend[*cuttingCommands.StartJobResponse](t, engine.Mediator, &cuttingCommands.StartJobCommand{
		OrderLineID: lineID, Target: helpers.Sizes("S", 2), WorkerID: "cutter-1",
	})
	cuttingStatus := orderStatus(t, engine, order.OrderID)

	helpers.MustSend[*cuttingCommands.RecordFabricUsageResponse](t, engine.Mediator, &cuttingCommands.RecordFabricUsageCommand{
		JobID: job.JobID, RollID: roll.RollID, Amount: decimal.NewFromInt(2),
	})
	completed := helpers.MustSend[*cuttingCommands.CompleteJobResponse](t, engine.Mediator, &cuttingCommands.CompleteJobCommand{JobID: job.JobID})
	assigned := helpers.MustSend[*pipelineCommands.AssignResponse](t, engine.Mediator, &pipelineCommands.AssignCommand{
		AssignmentID: completed.StageOneID,
		Workers: []pipelineCommands.WorkerShare{{
			WorkerID: "packer-1", Quantities: helpers.Sizes("S", 2), RatePerPiece: decimal.NewFromInt(1),
		}},
	})
	packingStatus := orderStatus(t, engine, order.OrderID)

	helpers.MustSend[*pipelineCommands.CompleteStageResponse](t, engine.Mediator, &pipelineCommands.CompleteStageCommand{AssignmentID: assigned.ChildID})
	helpers.MustSend[*pipelineCommands.FinalizeResponse](t, engine.Mediator, &pipelineCommands.FinalizeCommand{AssignmentID: assigned.ChildID})
	finishedStatus := orderStatus(t, engine, order.OrderID)

	// Act
	dispatchTooEarly := helpers.SendErr(engine.Mediator, &commands.DispatchOrderCommand{OrderID: order.OrderID})
	packed := helpers.MustSend[*commands.PackOrderResponse](t, engine.Mediator, &commands.PackOrderCommand{OrderID: order.OrderID})
	packAgain := helpers.SendErr(engine.Mediator, &commands.PackOrderCommand{OrderID: order.OrderID})
	packedStatus := orderStatus(t, engine, order.OrderID)
	delivered := helpers.MustSend[*commands.DispatchOrderResponse](t, engine.Mediator, &commands.DispatchOrderCommand{OrderID: order.OrderID})
	deliveredStatus := orderStatus(t, engine, order.OrderID)

	// Assert
	assert.Equal(t, "PENDING", pending.Status)
	assert.Equal(t, "cutting", cuttingStatus.Status)
	assert.Equal(t, "packing", packingStatus.Status)
	assert.Equal(t, "COMPLETED", finishedStatus.Status)
	assert.True(t, finishedStatus.Lines[0].Finished.Equal(helpers.Sizes("S", 2)))

	assert.True(t, errors.Is(dispatchTooEarly, shared.ErrNothingPacked))
	assert.Equal(t, 1, packed.Packed)
	assert.True(t, errors.Is(packAgain, shared.ErrNothingToPack))
	assert.Equal(t, "PACKED", packedStatus.Status)
	assert.Equal(t, 1, delivered.Delivered)
	assert.Equal(t, "DELIVERED", deliveredStatus.Status)
	assert.True(t, deliveredStatus.Lines[0].Delivered.Equal(helpers.Sizes("S", 2)))
}

func TestOrderStatus_IsMinimumAcrossLines(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	order := helpers.MustSend[*commands.CreateOrderResponse](t, engine.Mediator, &commands.CreateOrderCommand{
		Client: "ACME",
		Lines: []commands.OrderLineInput{
			{ProductID: "tee", Quantities: helpers.Sizes("M", 3)},
			{ProductID: "polo", Quantities: helpers.Sizes("L", 1)},
		},
	})
	stock := helpers.MustSend[*stockCommands.ImportStockResponse](t, engine.Mediator, &stockCommands.ImportStockCommand{
		ProductID: "tee", Quantities: helpers.Sizes("M", 3),
	})
	job := helpers.MustSend[*cuttingCommands.StartJobResponse](t, engine.Mediator, &cuttingCommands.StartJobCommand{
		OrderLineID: order.LineIDs[0], Target: helpers.Sizes("M", 3), WorkerID: "cutter-1",
	})
	helpers.MustSend[*cuttingCommands.RecordStockUsageResponse](t, engine.Mediator, &cuttingCommands.RecordStockUsageCommand{
		JobID: job.JobID, StockBatchID: stock.StockBatchID, Quantities: helpers.Sizes("M", 3),
	})
	helpers.MustSend[*cuttingCommands.CompleteJobResponse](t, engine.Mediator, &cuttingCommands.CompleteJobCommand{JobID: job.JobID})

	// Act
	status := orderStatus(t, engine, order.OrderID)
	packed := helpers.MustSend[*commands.PackOrderResponse](t, engine.Mediator, &commands.PackOrderCommand{OrderID: order.OrderID})
	afterPack := orderStatus(t, engine, order.OrderID)

	// Assert
	require.Len(t, status.Lines, 2)
	assert.Equal(t, "COMPLETED", status.Lines[0].Status)
	assert.Equal(t, "PENDING", status.Lines[1].Status)
	assert.Equal(t, "PENDING", status.Status)
	assert.Equal(t, 1, packed.Packed)
	assert.Equal(t, "PACKED", afterPack.Lines[0].Status)
	assert.Equal(t, "PENDING", afterPack.Status)
}

func TestCreateOrder_RejectsNegativeQuantities(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.CreateOrderCommand{
		Client: "ACME",
		Lines:  []commands.OrderLineInput{{ProductID: "tee", Quantities: helpers.Sizes("M", -1)}},
	})

	// Assert
	assert.True(t, errors.Is(err, shared.ErrInvalidQuantityMap))
}

func TestListOrders_NewestFirstWithStatus(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())
	first := helpers.MustSend[*commands.CreateOrderResponse](t, engine.Mediator, &commands.CreateOrderCommand{
		Client: "A", Lines: []commands.OrderLineInput{{ProductID: "tee", Quantities: helpers.Sizes("S", 1)}},
	})
	engine.Clock.Advance(time.Minute)
	second := helpers.MustSend[*commands.CreateOrderResponse](t, engine.Mediator, &commands.CreateOrderCommand{
		Client: "B", Lines: []commands.OrderLineInput{{ProductID: "tee", Quantities: helpers.Sizes("S", 1)}},
	})

	// Act
	listed := helpers.MustSend[*queries.ListOrdersResponse](t, engine.Mediator, &queries.ListOrdersQuery{})

	// Assert
	require.Len(t, listed.Orders, 2)
	assert.Equal(t, second.OrderID, listed.Orders[0].OrderID)
	assert.Equal(t, first.OrderID, listed.Orders[1].OrderID)
	assert.Equal(t, "PENDING", listed.Orders[0].Status)
}
