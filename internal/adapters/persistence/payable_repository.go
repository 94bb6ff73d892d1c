package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// GormPayableRepository implements pipeline.PayableRepository using GORM.
// Rows are written in the receiving transaction and published afterwards.
type GormPayableRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormPayableRepository creates a new GORM payable outbox repository
func NewGormPayableRepository(db *gorm.DB, clock shared.Clock) *GormPayableRepository {
	return &GormPayableRepository{db: db, clock: shared.ClockOrReal(clock)}
}

// Create stores a payable event in the outbox
func (r *GormPayableRepository) Create(ctx context.Context, event *pipeline.PayableEvent) error {
	model := &PayableEventModel{
		ID:            event.ID,
		AssignmentID:  event.AssignmentID,
		Subcontractor: event.Subcontractor,
		Quantities:    quantitiesToJSON(event.Quantities),
		Quantity:      event.Quantity,
		RatePerPiece:  event.RatePerPiece,
		Amount:        event.Amount,
		OccurredAt:    event.OccurredAt,
		PublishedAt:   event.PublishedAt,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to store payable event: %w", err)
	}
	return nil
}

// MarkPublished stamps an event as delivered to the broker
func (r *GormPayableRepository) MarkPublished(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Model(&PayableEventModel{}).
		Where("id = ? AND published_at IS NULL", id).
		Update("published_at", r.clock.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark payable event published: %w", result.Error)
	}
	return nil
}

// FindBySubcontractor lists every payable of a subcontractor, oldest first.
// An empty subcontractor lists all payables.
func (r *GormPayableRepository) FindBySubcontractor(ctx context.Context, subcontractor string) ([]*pipeline.PayableEvent, error) {
	query := conn(ctx, r.db).Order("occurred_at ASC, id ASC")
	if subcontractor != "" {
		query = query.Where("subcontractor = ?", subcontractor)
	}
	var models []PayableEventModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list payable events: %w", err)
	}
	return modelsToPayables(models)
}

// FindUnpublished returns the oldest events not yet delivered to the broker
func (r *GormPayableRepository) FindUnpublished(ctx context.Context, limit int) ([]*pipeline.PayableEvent, error) {
	query := conn(ctx, r.db).Where("published_at IS NULL").Order("occurred_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []PayableEventModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list unpublished payable events: %w", err)
	}
	return modelsToPayables(models)
}

func modelsToPayables(models []PayableEventModel) ([]*pipeline.PayableEvent, error) {
	events := make([]*pipeline.PayableEvent, 0, len(models))
	for _, m := range models {
		quantities, err := requiredQuantities(m.Quantities)
		if err != nil {
			return nil, err
		}
		var publishedAt *time.Time
		if m.PublishedAt != nil {
			t := *m.PublishedAt
			publishedAt = &t
		}
		events = append(events, &pipeline.PayableEvent{
			ID:            m.ID,
			AssignmentID:  m.AssignmentID,
			Subcontractor: m.Subcontractor,
			Quantities:    quantities,
			Quantity:      m.Quantity,
			RatePerPiece:  m.RatePerPiece,
			Amount:        m.Amount,
			OccurredAt:    m.OccurredAt,
			PublishedAt:   publishedAt,
		})
	}
	return events, nil
}
