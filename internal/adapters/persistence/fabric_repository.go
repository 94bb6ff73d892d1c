package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// GormFabricBatchRepository implements fabric.BatchRepository using GORM
type GormFabricBatchRepository struct {
	db *gorm.DB
}

// NewGormFabricBatchRepository creates a new GORM fabric batch repository
func NewGormFabricBatchRepository(db *gorm.DB) *GormFabricBatchRepository {
	return &GormFabricBatchRepository{db: db}
}

// Create persists a new fabric batch
func (r *GormFabricBatchRepository) Create(ctx context.Context, batch *fabric.Batch) error {
	model := &FabricBatchModel{
		ID:         batch.ID(),
		FabricType: batch.FabricType(),
		Color:      batch.Color(),
		Design:     batch.Design(),
		Quality:    batch.Quality(),
		CreatedAt:  batch.CreatedAt(),
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create fabric batch: %w", err)
	}
	return nil
}

// FindByID retrieves a fabric batch by ID
func (r *GormFabricBatchRepository) FindByID(ctx context.Context, id string) (*fabric.Batch, error) {
	var model FabricBatchModel
	result := conn(ctx, r.db).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("fabric batch", id)
		}
		return nil, fmt.Errorf("failed to find fabric batch: %w", result.Error)
	}
	return modelToFabricBatch(&model), nil
}

// List retrieves all fabric batches, oldest first
func (r *GormFabricBatchRepository) List(ctx context.Context) ([]*fabric.Batch, error) {
	var models []FabricBatchModel
	if err := conn(ctx, r.db).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list fabric batches: %w", err)
	}

	batches := make([]*fabric.Batch, 0, len(models))
	for i := range models {
		batches = append(batches, modelToFabricBatch(&models[i]))
	}
	return batches, nil
}

func modelToFabricBatch(model *FabricBatchModel) *fabric.Batch {
	return fabric.ReconstructBatch(model.ID, model.FabricType, model.Color, model.Design, model.Quality, model.CreatedAt)
}

// GormRollRepository implements fabric.RollRepository using GORM
type GormRollRepository struct {
	db *gorm.DB
}

// NewGormRollRepository creates a new GORM roll repository
func NewGormRollRepository(db *gorm.DB) *GormRollRepository {
	return &GormRollRepository{db: db}
}

// Create persists a new roll and any usage it was loaded with
func (r *GormRollRepository) Create(ctx context.Context, roll *fabric.Roll) error {
	db := conn(ctx, r.db)
	if err := db.Create(rollToModel(roll)).Error; err != nil {
		return fmt.Errorf("failed to create roll: %w", err)
	}
	if err := r.appendUsages(db, roll); err != nil {
		return err
	}
	return nil
}

// FindByID retrieves a roll with its usage log
func (r *GormRollRepository) FindByID(ctx context.Context, id string) (*fabric.Roll, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindForUpdate retrieves a roll and locks its row
func (r *GormRollRepository) FindForUpdate(ctx context.Context, id string) (*fabric.Roll, error) {
	return r.find(forUpdate(conn(ctx, r.db)), id)
}

func (r *GormRollRepository) find(db *gorm.DB, id string) (*fabric.Roll, error) {
	var model FabricRollModel
	result := db.Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("roll", id)
		}
		return nil, fmt.Errorf("failed to find roll: %w", result.Error)
	}

	var usages []RollUsageModel
	if err := db.Session(&gorm.Session{NewDB: true}).Where("roll_id = ?", id).
		Order("recorded_at ASC, id ASC").Find(&usages).Error; err != nil {
		return nil, fmt.Errorf("failed to load roll usages: %w", err)
	}

	return modelToRoll(&model, usages), nil
}

// Update writes back the remaining length under the version guard and
// appends usage records not yet stored
func (r *GormRollRepository) Update(ctx context.Context, roll *fabric.Roll) error {
	db := conn(ctx, r.db)
	err := guardedUpdate(db, &FabricRollModel{}, "roll", roll.ID(), roll.Version(), map[string]interface{}{
		"remaining_length": roll.RemainingLength(),
		"updated_at":       roll.UpdatedAt(),
	})
	if err != nil {
		return err
	}
	if err := r.appendUsages(db, roll); err != nil {
		return err
	}
	roll.BumpVersion()
	return nil
}

// ListByBatch retrieves every roll of a batch, exhausted ones included
func (r *GormRollRepository) ListByBatch(ctx context.Context, batchID string) ([]*fabric.Roll, error) {
	db := conn(ctx, r.db)

	var models []FabricRollModel
	if err := db.Where("batch_id = ?", batchID).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rolls: %w", err)
	}
	if len(models) == 0 {
		return []*fabric.Roll{}, nil
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	var usages []RollUsageModel
	if err := db.Session(&gorm.Session{NewDB: true}).Where("roll_id IN ?", ids).
		Order("recorded_at ASC, id ASC").Find(&usages).Error; err != nil {
		return nil, fmt.Errorf("failed to load roll usages: %w", err)
	}
	byRoll := make(map[string][]RollUsageModel)
	for _, u := range usages {
		byRoll[u.RollID] = append(byRoll[u.RollID], u)
	}

	rolls := make([]*fabric.Roll, 0, len(models))
	for i := range models {
		rolls = append(rolls, modelToRoll(&models[i], byRoll[models[i].ID]))
	}
	return rolls, nil
}

func (r *GormRollRepository) appendUsages(db *gorm.DB, roll *fabric.Roll) error {
	usages := roll.Usages()
	if len(usages) == 0 {
		return nil
	}
	rows := make([]RollUsageModel, 0, len(usages))
	for _, u := range usages {
		rows = append(rows, RollUsageModel{
			ID:         u.ID(),
			RollID:     u.RollID(),
			JobID:      u.JobID(),
			Amount:     u.Amount(),
			RecordedAt: u.RecordedAt(),
		})
	}
	if err := appendOnly(db, &rows); err != nil {
		return fmt.Errorf("failed to append roll usages: %w", err)
	}
	return nil
}

func rollToModel(roll *fabric.Roll) *FabricRollModel {
	return &FabricRollModel{
		ID:              roll.ID(),
		BatchID:         roll.BatchID(),
		OriginalLength:  roll.OriginalLength(),
		RemainingLength: roll.RemainingLength(),
		Legacy:          roll.IsLegacy(),
		CreatedAt:       roll.CreatedAt(),
		UpdatedAt:       roll.UpdatedAt(),
		Version:         roll.Version(),
	}
}

func modelToRoll(model *FabricRollModel, usageModels []RollUsageModel) *fabric.Roll {
	usages := make([]*fabric.Usage, 0, len(usageModels))
	for _, u := range usageModels {
		usages = append(usages, fabric.ReconstructUsage(u.ID, u.RollID, u.JobID, u.Amount, u.RecordedAt))
	}
	return fabric.ReconstructRoll(
		model.ID,
		model.BatchID,
		model.OriginalLength,
		model.RemainingLength,
		model.Legacy,
		usages,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
}
