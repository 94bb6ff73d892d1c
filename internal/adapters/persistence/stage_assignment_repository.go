package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// GormAssignmentRepository implements pipeline.AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GORM stage assignment repository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create persists a new assignment with its worker allocations
func (r *GormAssignmentRepository) Create(ctx context.Context, assignment *pipeline.Assignment) error {
	db := conn(ctx, r.db)
	if err := db.Create(assignmentToModel(assignment)).Error; err != nil {
		return fmt.Errorf("failed to create stage assignment: %w", err)
	}
	return r.appendAllocations(db, assignment)
}

// FindByID retrieves an assignment by ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id string) (*pipeline.Assignment, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindForUpdate retrieves an assignment and locks its row
func (r *GormAssignmentRepository) FindForUpdate(ctx context.Context, id string) (*pipeline.Assignment, error) {
	return r.find(forUpdate(conn(ctx, r.db)), id)
}

func (r *GormAssignmentRepository) find(db *gorm.DB, id string) (*pipeline.Assignment, error) {
	var model StageAssignmentModel
	result := db.Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("stage assignment", id)
		}
		return nil, fmt.Errorf("failed to find stage assignment: %w", result.Error)
	}

	assignments, err := r.hydrate(db.Session(&gorm.Session{NewDB: true}), []StageAssignmentModel{model})
	if err != nil {
		return nil, err
	}
	return assignments[0], nil
}

// Update writes back remaining, status and receipts under the version guard
func (r *GormAssignmentRepository) Update(ctx context.Context, assignment *pipeline.Assignment) error {
	db := conn(ctx, r.db)
	fields := map[string]interface{}{
		"remaining":      quantitiesToJSON(assignment.Remaining()),
		"status":         string(assignment.Status()),
		"auto_fulfilled": assignment.AutoFulfilled(),
		"forwarded":      assignment.Forwarded(),
		"updated_at":     assignment.UpdatedAt(),
	}
	if ext := assignment.External(); ext != nil {
		fields["received"] = quantitiesToJSON(ext.Received())
	}
	if err := guardedUpdate(db, &StageAssignmentModel{}, "stage assignment", assignment.ID(), assignment.Version(), fields); err != nil {
		return err
	}
	if err := r.appendAllocations(db, assignment); err != nil {
		return err
	}
	assignment.BumpVersion()
	return nil
}

// FindByJob retrieves the whole lineage of a cutting job, ordered by stage
func (r *GormAssignmentRepository) FindByJob(ctx context.Context, jobID string) ([]*pipeline.Assignment, error) {
	db := conn(ctx, r.db)

	var models []StageAssignmentModel
	if err := db.Where("job_id = ?", jobID).Order("stage_index ASC, created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stage assignments: %w", err)
	}
	return r.hydrate(db, models)
}

// FindByOrderLines retrieves assignments for the given order lines
func (r *GormAssignmentRepository) FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*pipeline.Assignment, error) {
	if len(orderLineIDs) == 0 {
		return []*pipeline.Assignment{}, nil
	}
	db := conn(ctx, r.db)

	var models []StageAssignmentModel
	if err := db.Where("order_line_id IN ?", orderLineIDs).Order("stage_index ASC, created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stage assignments: %w", err)
	}
	return r.hydrate(db, models)
}

// ListAvailable returns assignments ready to move forward that still hold pieces
func (r *GormAssignmentRepository) ListAvailable(ctx context.Context, stageIndex *int) ([]*pipeline.Assignment, error) {
	db := conn(ctx, r.db)

	query := db.Where("status = ?", string(pipeline.AssignmentStatusProcessedAwaitingNext)).
		Order("stage_index ASC, created_at ASC, id ASC")
	if stageIndex != nil {
		query = query.Where("stage_index = ?", *stageIndex)
	}
	var models []StageAssignmentModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list stage assignments: %w", err)
	}

	assignments, err := r.hydrate(db, models)
	if err != nil {
		return nil, err
	}

	// all-zero remaining is terminal; the JSON column cannot be filtered portably
	available := make([]*pipeline.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.IsAvailable() {
			available = append(available, a)
		}
	}
	return available, nil
}

func (r *GormAssignmentRepository) hydrate(db *gorm.DB, models []StageAssignmentModel) ([]*pipeline.Assignment, error) {
	if len(models) == 0 {
		return []*pipeline.Assignment{}, nil
	}
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	var rows []WorkerAllocationModel
	if err := db.Where("assignment_id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load worker allocations: %w", err)
	}
	allocations := make(map[string][]pipeline.WorkerAllocation)
	for _, row := range rows {
		quantities, err := requiredQuantities(row.Quantities)
		if err != nil {
			return nil, err
		}
		employee, err := shared.NewEmployeeID(row.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("invalid employee ID in database: %w", err)
		}
		allocations[row.AssignmentID] = append(allocations[row.AssignmentID], pipeline.WorkerAllocation{
			ID:           row.ID,
			EmployeeID:   employee,
			Quantities:   quantities,
			RatePerPiece: row.RatePerPiece,
		})
	}

	assignments := make([]*pipeline.Assignment, 0, len(models))
	for i := range models {
		a, err := modelToAssignment(&models[i], allocations[models[i].ID])
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (r *GormAssignmentRepository) appendAllocations(db *gorm.DB, assignment *pipeline.Assignment) error {
	allocations := assignment.Allocations()
	if len(allocations) == 0 {
		return nil
	}
	rows := make([]WorkerAllocationModel, 0, len(allocations))
	for _, alloc := range allocations {
		rows = append(rows, WorkerAllocationModel{
			ID:           alloc.ID,
			AssignmentID: assignment.ID(),
			EmployeeID:   alloc.EmployeeID.String(),
			Quantities:   quantitiesToJSON(alloc.Quantities),
			RatePerPiece: alloc.RatePerPiece,
		})
	}
	if err := appendOnly(db, &rows); err != nil {
		return fmt.Errorf("failed to append worker allocations: %w", err)
	}
	return nil
}

func assignmentToModel(a *pipeline.Assignment) *StageAssignmentModel {
	model := &StageAssignmentModel{
		ID:            a.ID(),
		JobID:         a.JobID(),
		ParentID:      a.ParentID(),
		OrderLineID:   a.OrderLineID(),
		ProductID:     a.ProductID(),
		StageIndex:    a.StageIndex(),
		Remaining:     quantitiesToJSON(a.Remaining()),
		Status:        string(a.Status()),
		AutoFulfilled: a.AutoFulfilled(),
		Forwarded:     a.Forwarded(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
		Version:       a.Version(),
	}
	if ext := a.External(); ext != nil {
		subcontractor := ext.Subcontractor()
		sentAt := ext.SentAt()
		model.Subcontractor = &subcontractor
		model.ExternalRate = decimal.NewNullDecimal(ext.RatePerPiece())
		model.Sent = quantitiesToJSON(ext.Sent())
		model.Received = quantitiesToJSON(ext.Received())
		model.SentAt = &sentAt
	}
	return model
}

func modelToAssignment(model *StageAssignmentModel, allocations []pipeline.WorkerAllocation) (*pipeline.Assignment, error) {
	remaining, err := requiredQuantities(model.Remaining)
	if err != nil {
		return nil, err
	}
	status, err := pipeline.ParseAssignmentStatus(model.Status)
	if err != nil {
		return nil, err
	}

	var external *pipeline.ExternalJobMeta
	if model.Subcontractor != nil {
		sent, err := requiredQuantities(model.Sent)
		if err != nil {
			return nil, err
		}
		received, err := requiredQuantities(model.Received)
		if err != nil {
			return nil, err
		}
		sentAt := model.CreatedAt
		if model.SentAt != nil {
			sentAt = *model.SentAt
		}
		external = pipeline.ReconstructExternalJobMeta(*model.Subcontractor, model.ExternalRate.Decimal, sent, received, sentAt)
	}

	return pipeline.ReconstructAssignment(
		model.ID,
		pipeline.Lineage{JobID: model.JobID, OrderLineID: model.OrderLineID, ProductID: model.ProductID},
		model.ParentID,
		model.StageIndex,
		remaining,
		allocations,
		external,
		status,
		model.AutoFulfilled,
		model.Forwarded,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	), nil
}
