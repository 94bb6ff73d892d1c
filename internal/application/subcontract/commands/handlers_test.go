package commands_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	"github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
	"github.com/andrescamacho/garmentflow/internal/application/subcontract/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

func cutStageOne(t *testing.T, engine *helpers.TestEngine, target shared.QuantityMap) string {
	t.Helper()
	batch := helpers.MustSend[*fabricCommands.RegisterBatchResponse](t, engine.Mediator, &fabricCommands.RegisterBatchCommand{
		FabricType: "linen", Color: "white", Design: "stripe", Quality: "B",
	})
	roll := helpers.MustSend[*fabricCommands.IntakeRollResponse](t, engine.Mediator, &fabricCommands.IntakeRollCommand{
		BatchID: batch.BatchID, Length: decimal.NewFromInt(60),
	})
	job := helpers.MustSend[*cuttingCommands.StartJobResponse](t, engine.Mediator, &cuttingCommands.StartJobCommand{
		ProductID: "shirt", Target: target, WorkerID: "cutter-1",
	})
	helpers.MustSend[*cuttingCommands.RecordFabricUsageResponse](t, engine.Mediator, &cuttingCommands.RecordFabricUsageCommand{
		JobID: job.JobID, RollID: roll.RollID, Amount: decimal.NewFromInt(15),
	})
	completed := helpers.MustSend[*cuttingCommands.CompleteJobResponse](t, engine.Mediator, &cuttingCommands.CompleteJobCommand{JobID: job.JobID})
	return completed.StageOneID
}

func sendToEmbroidery(t *testing.T, engine *helpers.TestEngine, sent shared.QuantityMap) string {
	t.Helper()
	stageOne := cutStageOne(t, engine, sent)
	resp := helpers.MustSend[*commands.SendExternalResponse](t, engine.Mediator, &commands.SendExternalCommand{
		AssignmentID:  stageOne,
		Subcontractor: "embroidery-co",
		RatePerPiece:  decimal.RequireFromString("1.25"),
		Quantities:    sent,
	})
	return resp.ExternalID
}

func TestReceiveExternal_OverReceiptThenFullReceipt(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	externalID := sendToEmbroidery(t, engine, helpers.Sizes("L", 12))
	helpers.MustSend[*commands.ReceiveExternalResponse](t, engine.Mediator, &commands.ReceiveExternalCommand{
		AssignmentID: externalID, Quantities: helpers.Sizes("L", 8),
	})

	// Act
	overErr := helpers.SendErr(engine.Mediator, &commands.ReceiveExternalCommand{
		AssignmentID: externalID, Quantities: helpers.Sizes("L", 5),
	})
	last := helpers.MustSend[*commands.ReceiveExternalResponse](t, engine.Mediator, &commands.ReceiveExternalCommand{
		AssignmentID: externalID, Quantities: helpers.Sizes("L", 4),
	})

	// Assert
	assert.True(t, errors.Is(overErr, shared.ErrOverReceipt))
	assert.True(t, last.FullyReceived)
	assert.True(t, last.Outstanding.IsZero())
	assert.Equal(t, 4, last.Quantity)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, last.Published)

	view := helpers.MustSend[*pipelineQueries.AssignmentView](t, engine.Mediator, &pipelineQueries.GetAssignmentQuery{AssignmentID: externalID})
	require.NotNil(t, view.External)
	assert.True(t, view.External.Received.Equal(helpers.Sizes("L", 12)))
	assert.True(t, view.Available)

	payables := helpers.MustSend[*queries.ListPayablesResponse](t, engine.Mediator, &queries.ListPayablesQuery{Subcontractor: "embroidery-co"})
	assert.Len(t, payables.Payables, 2)
	assert.True(t, payables.Total.Equal(decimal.NewFromInt(15)))
	assert.Len(t, engine.Publisher.Published(), 2)
}

func TestSendExternal_PartialReceiptBlocksDownstream(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1", "washer-1")
	externalID := sendToEmbroidery(t, engine, helpers.Sizes("M", 6))
	helpers.MustSend[*commands.ReceiveExternalResponse](t, engine.Mediator, &commands.ReceiveExternalCommand{
		AssignmentID: externalID, Quantities: helpers.Sizes("M", 2),
	})

	// Act
	err := helpers.SendErr(engine.Mediator, &pipelineCommands.AssignCommand{
		AssignmentID: externalID,
		Workers: []pipelineCommands.WorkerShare{{
			WorkerID: "washer-1", Quantities: helpers.Sizes("M", 2), RatePerPiece: decimal.NewFromInt(1),
		}},
	})

	// Assert
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
}

func TestReceiveExternal_PublishFailureLeavesOutboxPending(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	externalID := sendToEmbroidery(t, engine, helpers.Sizes("S", 3))
	engine.Publisher.SetError(errors.New("nats: no servers available for connection"))

	// Act
	received := helpers.MustSend[*commands.ReceiveExternalResponse](t, engine.Mediator, &commands.ReceiveExternalCommand{
		AssignmentID: externalID, Quantities: helpers.Sizes("S", 3),
	})
	engine.Publisher.SetError(nil)
	flushed := helpers.MustSend[*commands.PublishPendingPayablesResponse](t, engine.Mediator, &commands.PublishPendingPayablesCommand{})
	again := helpers.MustSend[*commands.PublishPendingPayablesResponse](t, engine.Mediator, &commands.PublishPendingPayablesCommand{})

	// Assert
	assert.False(t, received.Published)
	assert.Equal(t, 1, flushed.Pending)
	assert.Equal(t, 1, flushed.Published)
	assert.Equal(t, 0, again.Pending)
	require.Len(t, engine.Publisher.Published(), 1)
	assert.Equal(t, received.PayableID, engine.Publisher.Published()[0].ID)
}

func TestPublishPendingPayables_DisabledPublisher(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t, helpers.WithoutCollaborators())

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.PublishPendingPayablesCommand{})

	// Assert
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestReceiveExternal_InHouseAssignmentIsRejected(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	engine.HireWorkers("cutter-1")
	stageOne := cutStageOne(t, engine, helpers.Sizes("S", 2))

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.ReceiveExternalCommand{
		AssignmentID: stageOne, Quantities: helpers.Sizes("S", 1),
	})

	// Assert
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
}
