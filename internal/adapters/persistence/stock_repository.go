package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// GormStockBatchRepository implements stock.BatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GORM stock batch repository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// Create persists a new finished stock batch
func (r *GormStockBatchRepository) Create(ctx context.Context, batch *stock.Batch) error {
	model := &StockBatchModel{
		ID:                 batch.ID(),
		ProductID:          batch.ProductID(),
		OrderLineID:        batch.OrderLineID(),
		SourceAssignmentID: batch.SourceAssignmentID(),
		Produced:           quantitiesToJSON(batch.Produced()),
		Available:          quantitiesToJSON(batch.Available()),
		DispatchState:      string(batch.DispatchState()),
		CreatedAt:          batch.CreatedAt(),
		UpdatedAt:          batch.UpdatedAt(),
		Version:            batch.Version(),
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create stock batch: %w", err)
	}
	return nil
}

// FindByID retrieves a stock batch by ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id string) (*stock.Batch, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindForUpdate retrieves a stock batch and locks its row
func (r *GormStockBatchRepository) FindForUpdate(ctx context.Context, id string) (*stock.Batch, error) {
	return r.find(forUpdate(conn(ctx, r.db)), id)
}

func (r *GormStockBatchRepository) find(db *gorm.DB, id string) (*stock.Batch, error) {
	var model StockBatchModel
	result := db.Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("stock batch", id)
		}
		return nil, fmt.Errorf("failed to find stock batch: %w", result.Error)
	}
	return modelToStockBatch(&model)
}

// Update writes back available quantities and dispatch state under the version guard
func (r *GormStockBatchRepository) Update(ctx context.Context, batch *stock.Batch) error {
	err := guardedUpdate(conn(ctx, r.db), &StockBatchModel{}, "stock batch", batch.ID(), batch.Version(), map[string]interface{}{
		"available":      quantitiesToJSON(batch.Available()),
		"dispatch_state": string(batch.DispatchState()),
		"updated_at":     batch.UpdatedAt(),
	})
	if err != nil {
		return err
	}
	batch.BumpVersion()
	return nil
}

// List retrieves stock batches matching the filter
func (r *GormStockBatchRepository) List(ctx context.Context, filter stock.BatchFilter) ([]*stock.Batch, error) {
	query := conn(ctx, r.db).Order("created_at ASC, id ASC")
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.InternalOnly {
		query = query.Where("order_line_id = ''")
	}
	var models []StockBatchModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock batches: %w", err)
	}
	return modelsToStockBatches(models)
}

// FindByOrderLines retrieves batches finalized for the given order lines
func (r *GormStockBatchRepository) FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*stock.Batch, error) {
	if len(orderLineIDs) == 0 {
		return []*stock.Batch{}, nil
	}
	var models []StockBatchModel
	if err := conn(ctx, r.db).Where("order_line_id IN ?", orderLineIDs).
		Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stock batches: %w", err)
	}
	return modelsToStockBatches(models)
}

func modelsToStockBatches(models []StockBatchModel) ([]*stock.Batch, error) {
	batches := make([]*stock.Batch, 0, len(models))
	for i := range models {
		b, err := modelToStockBatch(&models[i])
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func modelToStockBatch(model *StockBatchModel) (*stock.Batch, error) {
	produced, err := requiredQuantities(model.Produced)
	if err != nil {
		return nil, err
	}
	available, err := requiredQuantities(model.Available)
	if err != nil {
		return nil, err
	}
	state, err := shared.ParseDispatchState(model.DispatchState)
	if err != nil {
		return nil, err
	}
	return stock.ReconstructBatch(
		model.ID,
		model.ProductID,
		model.OrderLineID,
		model.SourceAssignmentID,
		produced,
		available,
		state,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	), nil
}

// GormStockUsageRepository implements stock.UsageRepository using GORM
type GormStockUsageRepository struct {
	db *gorm.DB
}

// NewGormStockUsageRepository creates a new GORM stock usage repository
func NewGormStockUsageRepository(db *gorm.DB) *GormStockUsageRepository {
	return &GormStockUsageRepository{db: db}
}

// Create persists a substitution record
func (r *GormStockUsageRepository) Create(ctx context.Context, usage *stock.Usage) error {
	model := &StockUsageModel{
		ID:            usage.ID(),
		SourceBatchID: usage.SourceBatchID(),
		JobID:         usage.JobID(),
		AssignmentID:  usage.AssignmentID(),
		OrderLineID:   usage.OrderLineID(),
		ProductID:     usage.ProductID(),
		StageIndex:    usage.StageIndex(),
		Quantities:    quantitiesToJSON(usage.Quantities()),
		DispatchState: string(usage.DispatchState()),
		CreatedAt:     usage.CreatedAt(),
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create stock usage: %w", err)
	}
	return nil
}

// Update writes back the dispatch state; quantities are immutable.
// Callers hold the owning order's lock.
func (r *GormStockUsageRepository) Update(ctx context.Context, usage *stock.Usage) error {
	result := conn(ctx, r.db).Model(&StockUsageModel{}).Where("id = ?", usage.ID()).
		Update("dispatch_state", string(usage.DispatchState()))
	if result.Error != nil {
		return fmt.Errorf("failed to update stock usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("stock usage", usage.ID())
	}
	return nil
}

// FindByJob retrieves every substitution made for a cutting job's lineage
func (r *GormStockUsageRepository) FindByJob(ctx context.Context, jobID string) ([]*stock.Usage, error) {
	var models []StockUsageModel
	if err := conn(ctx, r.db).Where("job_id = ?", jobID).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stock usages: %w", err)
	}
	return modelsToStockUsages(models)
}

// FindByOrderLines retrieves substitutions owned by the given order lines
func (r *GormStockUsageRepository) FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*stock.Usage, error) {
	if len(orderLineIDs) == 0 {
		return []*stock.Usage{}, nil
	}
	var models []StockUsageModel
	if err := conn(ctx, r.db).Where("order_line_id IN ?", orderLineIDs).
		Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stock usages: %w", err)
	}
	return modelsToStockUsages(models)
}

func modelsToStockUsages(models []StockUsageModel) ([]*stock.Usage, error) {
	usages := make([]*stock.Usage, 0, len(models))
	for _, m := range models {
		quantities, err := requiredQuantities(m.Quantities)
		if err != nil {
			return nil, err
		}
		state, err := shared.ParseDispatchState(m.DispatchState)
		if err != nil {
			return nil, err
		}
		usages = append(usages, stock.ReconstructUsage(
			m.ID,
			m.SourceBatchID,
			m.JobID,
			m.AssignmentID,
			m.OrderLineID,
			m.ProductID,
			m.StageIndex,
			quantities,
			state,
			m.CreatedAt,
		))
	}
	return usages, nil
}
