package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// GormJobRepository implements cutting.JobRepository using GORM.
// Stock allocations are read back from stock_usages rows recorded at stage 0.
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GORM cutting job repository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Create persists a new cutting job
func (r *GormJobRepository) Create(ctx context.Context, job *cutting.Job) error {
	db := conn(ctx, r.db)
	if err := db.Create(jobToModel(job)).Error; err != nil {
		return fmt.Errorf("failed to create cutting job: %w", err)
	}
	return r.appendFabricUsages(db, job)
}

// FindByID retrieves a cutting job with its usages
func (r *GormJobRepository) FindByID(ctx context.Context, id string) (*cutting.Job, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindForUpdate retrieves a cutting job and locks its row
func (r *GormJobRepository) FindForUpdate(ctx context.Context, id string) (*cutting.Job, error) {
	return r.find(forUpdate(conn(ctx, r.db)), id)
}

func (r *GormJobRepository) find(db *gorm.DB, id string) (*cutting.Job, error) {
	var model CuttingJobModel
	result := db.Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("cutting job", id)
		}
		return nil, fmt.Errorf("failed to find cutting job: %w", result.Error)
	}

	jobs, err := r.hydrate(db.Session(&gorm.Session{NewDB: true}), []CuttingJobModel{model})
	if err != nil {
		return nil, err
	}
	return jobs[0], nil
}

// Update writes back status and completion under the version guard and
// appends fabric usages not yet stored
func (r *GormJobRepository) Update(ctx context.Context, job *cutting.Job) error {
	db := conn(ctx, r.db)
	err := guardedUpdate(db, &CuttingJobModel{}, "cutting job", job.ID(), job.Version(), map[string]interface{}{
		"status":       string(job.Status()),
		"completed_at": job.CompletedAt(),
		"stage_one_id": job.StageOneAssignmentID(),
	})
	if err != nil {
		return err
	}
	if err := r.appendFabricUsages(db, job); err != nil {
		return err
	}
	job.BumpVersion()
	return nil
}

// FindByOrderLines retrieves the jobs of the given order lines
func (r *GormJobRepository) FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*cutting.Job, error) {
	if len(orderLineIDs) == 0 {
		return []*cutting.Job{}, nil
	}
	db := conn(ctx, r.db)

	var models []CuttingJobModel
	if err := db.Where("order_line_id IN ?", orderLineIDs).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find cutting jobs: %w", err)
	}
	return r.hydrate(db, models)
}

// List retrieves jobs, optionally filtered by status
func (r *GormJobRepository) List(ctx context.Context, status *cutting.JobStatus) ([]*cutting.Job, error) {
	db := conn(ctx, r.db)

	query := db.Order("created_at ASC, id ASC")
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	var models []CuttingJobModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list cutting jobs: %w", err)
	}
	return r.hydrate(db, models)
}

// hydrate loads fabric and stock usages for a set of job rows
func (r *GormJobRepository) hydrate(db *gorm.DB, models []CuttingJobModel) ([]*cutting.Job, error) {
	if len(models) == 0 {
		return []*cutting.Job{}, nil
	}
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	var fabricRows []JobFabricUsageModel
	if err := db.Where("job_id IN ?", ids).Order("recorded_at ASC, id ASC").Find(&fabricRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load fabric usages: %w", err)
	}
	var stockRows []StockUsageModel
	if err := db.Where("job_id IN ? AND stage_index = 0", ids).Order("created_at ASC, id ASC").Find(&stockRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock usages: %w", err)
	}

	fabricByJob := make(map[string][]cutting.FabricUsage)
	for _, row := range fabricRows {
		pieces, err := jsonToQuantities(row.Pieces)
		if err != nil {
			return nil, err
		}
		fabricByJob[row.JobID] = append(fabricByJob[row.JobID], cutting.FabricUsage{
			ID:         row.ID,
			RollID:     row.RollID,
			Amount:     row.Amount,
			Pieces:     pieces,
			RecordedAt: row.RecordedAt,
		})
	}
	stockByJob := make(map[string][]cutting.StockAllocation)
	for _, row := range stockRows {
		quantities, err := requiredQuantities(row.Quantities)
		if err != nil {
			return nil, err
		}
		stockByJob[row.JobID] = append(stockByJob[row.JobID], cutting.StockAllocation{
			UsageID:    row.ID,
			BatchID:    row.SourceBatchID,
			Quantities: quantities,
			RecordedAt: row.CreatedAt,
		})
	}

	jobs := make([]*cutting.Job, 0, len(models))
	for i := range models {
		job, err := modelToJob(&models[i], fabricByJob[models[i].ID], stockByJob[models[i].ID])
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (r *GormJobRepository) appendFabricUsages(db *gorm.DB, job *cutting.Job) error {
	usages := job.FabricUsages()
	if len(usages) == 0 {
		return nil
	}
	rows := make([]JobFabricUsageModel, 0, len(usages))
	for _, u := range usages {
		rows = append(rows, JobFabricUsageModel{
			ID:         u.ID,
			JobID:      job.ID(),
			RollID:     u.RollID,
			Amount:     u.Amount,
			Pieces:     optionalQuantitiesToJSON(u.Pieces),
			RecordedAt: u.RecordedAt,
		})
	}
	if err := appendOnly(db, &rows); err != nil {
		return fmt.Errorf("failed to append fabric usages: %w", err)
	}
	return nil
}

func jobToModel(job *cutting.Job) *CuttingJobModel {
	return &CuttingJobModel{
		ID:          job.ID(),
		OrderLineID: job.OrderLineID(),
		ProductID:   job.ProductID(),
		Target:      quantitiesToJSON(job.Target()),
		WorkerID:    job.WorkerID().String(),
		Status:      string(job.Status()),
		StageOneID:  job.StageOneAssignmentID(),
		CreatedAt:   job.CreatedAt(),
		CompletedAt: job.CompletedAt(),
		Version:     job.Version(),
	}
}

func modelToJob(model *CuttingJobModel, fabricUsages []cutting.FabricUsage, stockUsages []cutting.StockAllocation) (*cutting.Job, error) {
	target, err := requiredQuantities(model.Target)
	if err != nil {
		return nil, err
	}
	status, err := cutting.ParseJobStatus(model.Status)
	if err != nil {
		return nil, err
	}
	worker, err := shared.NewEmployeeID(model.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("invalid worker ID in database: %w", err)
	}

	return cutting.ReconstructJob(
		model.ID,
		model.OrderLineID,
		model.ProductID,
		target,
		worker,
		status,
		fabricUsages,
		stockUsages,
		model.CreatedAt,
		model.CompletedAt,
		model.StageOneID,
		model.Version,
	), nil
}
