package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/adapters/persistence"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestRollRepository_ReserveRoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRollRepository(db)

	roll, err := fabric.NewRoll("batch-1", decimal.RequireFromString("10.5"), now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, roll))

	// Act
	locked, err := repo.FindForUpdate(ctx, roll.ID())
	require.NoError(t, err)
	_, err = locked.Reserve("job-1", decimal.RequireFromString("4.25"), now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, locked))

	// Assert
	found, err := repo.FindByID(ctx, roll.ID())
	require.NoError(t, err)
	assert.True(t, found.RemainingLength().Equal(decimal.RequireFromString("6.25")))
	assert.Equal(t, 1, found.Version())
	require.Len(t, found.Usages(), 1)
	assert.Equal(t, "job-1", found.Usages()[0].JobID())

	rolls, err := repo.ListByBatch(ctx, "batch-1")
	require.NoError(t, err)
	assert.Len(t, rolls, 1)
}

func TestRollRepository_StaleVersionIsConcurrentModification(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRollRepository(db)

	roll, err := fabric.NewRoll("batch-1", decimal.NewFromInt(10), now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, roll))

	first, err := repo.FindByID(ctx, roll.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, roll.ID())
	require.NoError(t, err)

	_, err = first.Reserve("job-1", decimal.NewFromInt(6), now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, first))

	// Act
	_, err = second.Reserve("job-2", decimal.NewFromInt(6), now)
	require.NoError(t, err)
	err = repo.Update(ctx, second)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
	assert.True(t, shared.IsRetryable(err))

	found, err := repo.FindByID(ctx, roll.ID())
	require.NoError(t, err)
	assert.True(t, found.RemainingLength().Equal(decimal.NewFromInt(4)))
	assert.Len(t, found.Usages(), 1)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	tx := persistence.NewGormTransactor(db)
	repo := persistence.NewGormFabricBatchRepository(db)

	batch, err := fabric.NewBatch("cotton", "navy", "plain", "A", now)
	require.NoError(t, err)

	// Act
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, batch); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			return shared.NewValidationError("amount", "must be positive")
		})
	})

	// Assert
	require.Error(t, err)
	_, err = repo.FindByID(ctx, batch.ID())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestJobRepository_HydratesFabricAndStockUsage(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	jobs := persistence.NewGormJobRepository(db)
	usages := persistence.NewGormStockUsageRepository(db)

	job, err := cutting.NewJob("line-1", "tee", shared.QuantityMap{"S": 2, "M": 3}, shared.MustNewEmployeeID("emp-1"), now)
	require.NoError(t, err)
	require.NoError(t, jobs.Create(ctx, job))

	require.NoError(t, job.RecordFabricUsage("usage-1", "roll-1", decimal.NewFromInt(3), nil, now))
	usage := stock.NewUsage("batch-9", job.ID(), "", "line-1", "tee", 0, shared.QuantityMap{"S": 2}, now)
	require.NoError(t, usages.Create(ctx, usage))
	require.NoError(t, job.RecordStockUsage(usage.ID(), "batch-9", shared.QuantityMap{"S": 2}, now))
	require.NoError(t, jobs.Update(ctx, job))

	// Act
	found, err := jobs.FindByID(ctx, job.ID())

	// Assert
	require.NoError(t, err)
	require.Len(t, found.FabricUsages(), 1)
	assert.Nil(t, found.FabricUsages()[0].Pieces)
	require.Len(t, found.StockUsages(), 1)
	assert.Equal(t, shared.QuantityMap{"S": 2}, found.StockUsages()[0].Quantities)
	assert.Equal(t, 1, found.Version())
	assert.Empty(t, found.MissingSizes())
}

func TestAssignmentRepository_ExternalMetadataAndAvailability(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormAssignmentRepository(db)
	catalog := pipeline.MustNewStageCatalog("cutting", "stitching", "finishing")

	parent, err := pipeline.NewStageOneAssignment(pipeline.Lineage{JobID: "job-1", ProductID: "tee"}, shared.QuantityMap{"M": 10}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, parent))

	child, err := parent.SendExternal("acme-stitch", decimal.RequireFromString("1.5"), shared.QuantityMap{"M": 10}, catalog, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, parent))
	require.NoError(t, repo.Create(ctx, child))

	_, err = child.Receive(shared.QuantityMap{"M": 4}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, child))

	// Act
	found, err := repo.FindByID(ctx, child.ID())
	available, listErr := repo.ListAvailable(ctx, nil)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, found.External())
	assert.Equal(t, "acme-stitch", found.External().Subcontractor())
	assert.Equal(t, shared.QuantityMap{"M": 10}, found.External().Sent())
	assert.Equal(t, shared.QuantityMap{"M": 4}, found.External().Received())
	assert.Equal(t, shared.QuantityMap{"M": 10}, found.Remaining())

	require.NoError(t, listErr)
	assert.Empty(t, available, "exhausted parent and active child are not available")

	lineage, err := repo.FindByJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, lineage, 2)
}

func TestPayableRepository_Outbox(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPayableRepository(db, shared.NewMockClock(now))

	event := pipeline.NewPayableEvent("asg-1", "acme-stitch", shared.QuantityMap{"M": 4}, decimal.RequireFromString("1.5"), now)
	require.NoError(t, repo.Create(ctx, event))

	// Act
	pending, err := repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, repo.MarkPublished(ctx, event.ID))

	// Assert
	pending, err = repo.FindUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := repo.FindBySubcontractor(ctx, "acme-stitch")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Amount.Equal(decimal.NewFromInt(6)))
	assert.NotNil(t, all[0].PublishedAt)
}

func TestOrderAndStockRepositories_DispatchState(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db := helpers.NewTestDB(t)
	orders := persistence.NewGormOrderRepository(db)
	batches := persistence.NewGormStockBatchRepository(db)

	order, err := dispatch.NewOrder("client-7", []dispatch.LineSpec{
		{ProductID: "tee", Quantities: shared.QuantityMap{"M": 5}},
		{ProductID: "polo", Quantities: shared.QuantityMap{"L": 2}},
	}, now)
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, order))

	lineID := order.Lines()[0].ID()
	batch, err := stock.NewProducedBatch("tee", lineID, "asg-1", shared.QuantityMap{"M": 5}, now)
	require.NoError(t, err)
	require.NoError(t, batches.Create(ctx, batch))

	// Act
	batch.Dispatch().Pack()
	require.NoError(t, batches.Update(ctx, batch))

	// Assert
	found, err := orders.FindByID(ctx, order.ID())
	require.NoError(t, err)
	assert.Equal(t, order.LineIDs(), found.LineIDs())

	owned, err := batches.FindByOrderLines(ctx, found.LineIDs())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, shared.DispatchStatePacked, owned[0].DispatchState())

	internal, err := batches.List(ctx, stock.BatchFilter{ProductID: "tee", InternalOnly: true})
	require.NoError(t, err)
	assert.Empty(t, internal)
}
