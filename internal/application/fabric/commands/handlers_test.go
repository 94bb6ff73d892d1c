package commands_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	"github.com/andrescamacho/garmentflow/internal/application/fabric/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

func intakeRoll(t *testing.T, engine *helpers.TestEngine, length string) (string, string) {
	t.Helper()
	batch := helpers.MustSend[*commands.RegisterBatchResponse](t, engine.Mediator, &commands.RegisterBatchCommand{
		FabricType: "denim", Color: "indigo", Design: "plain", Quality: "A",
	})
	roll := helpers.MustSend[*commands.IntakeRollResponse](t, engine.Mediator, &commands.IntakeRollCommand{
		BatchID: batch.BatchID, Length: decimal.RequireFromString(length),
	})
	return batch.BatchID, roll.RollID
}

func TestReserveUsage_InsufficientFabricLeavesRollUntouched(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	_, rollID := intakeRoll(t, engine, "30")

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.ReserveUsageCommand{
		RollID: rollID, JobID: "job-1", Amount: decimal.NewFromInt(45),
	})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientFabric))
	assert.False(t, shared.IsRetryable(err))

	roll := helpers.MustSend[*queries.RollView](t, engine.Mediator, &queries.GetRollQuery{RollID: rollID})
	assert.True(t, roll.RemainingLength.Equal(decimal.NewFromInt(30)))
	assert.Empty(t, roll.Usages)
}

func TestReserveUsage_DrainedRollIsRetained(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	batchID, rollID := intakeRoll(t, engine, "12.5")

	// Act
	first := helpers.MustSend[*commands.ReserveUsageResponse](t, engine.Mediator, &commands.ReserveUsageCommand{
		RollID: rollID, JobID: "job-1", Amount: decimal.RequireFromString("10"),
	})
	second := helpers.MustSend[*commands.ReserveUsageResponse](t, engine.Mediator, &commands.ReserveUsageCommand{
		RollID: rollID, JobID: "job-2", Amount: decimal.RequireFromString("2.5"),
	})

	// Assert
	assert.False(t, first.Exhausted)
	assert.True(t, second.Exhausted)
	assert.True(t, second.RemainingLength.IsZero())

	listed := helpers.MustSend[*queries.ListRollsResponse](t, engine.Mediator, &queries.ListRollsQuery{BatchID: batchID})
	require.Len(t, listed.Rolls, 1)
	assert.True(t, listed.Rolls[0].Exhausted)
	assert.Len(t, listed.Rolls[0].Usages, 2)
	assert.Equal(t, "denim/indigo/plain/A", listed.Batch.Description)
}

func TestIntakeRoll_UnknownBatch(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)

	// Act
	err := helpers.SendErr(engine.Mediator, &commands.IntakeRollCommand{
		BatchID: "missing", Length: decimal.NewFromInt(10),
	})

	// Assert
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestGetHistoricalUsage_LegacyRollIsDerivedAndFlagged(t *testing.T) {
	// Arrange
	engine := helpers.NewTestEngine(t)
	batchID, _ := intakeRoll(t, engine, "5")
	legacy := helpers.MustSend[*commands.ImportLegacyRollResponse](t, engine.Mediator, &commands.ImportLegacyRollCommand{
		BatchID:         batchID,
		OriginalLength:  decimal.NewFromInt(50),
		RemainingLength: decimal.NewFromInt(20),
	})

	// Act
	historical := helpers.MustSend[*fabric.HistoricalUsage](t, engine.Mediator, &queries.GetHistoricalUsageQuery{
		RollID: legacy.RollID, JobID: "old-job",
	})

	// Assert
	assert.True(t, historical.Derived)
	assert.True(t, historical.Amount.Equal(decimal.NewFromInt(30)))
	assert.NotEmpty(t, historical.Warning)
}
