package pipeline

import "context"

// AssignmentRepository persists stage assignments. Each row is its own lock scope.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *Assignment) error
	FindByID(ctx context.Context, id string) (*Assignment, error)

	// FindForUpdate loads an assignment and locks its row for the surrounding transaction
	FindForUpdate(ctx context.Context, id string) (*Assignment, error)

	// Update writes back remaining, status and external receipts under a version guard
	Update(ctx context.Context, assignment *Assignment) error

	FindByJob(ctx context.Context, jobID string) ([]*Assignment, error)
	FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*Assignment, error)

	// ListAvailable returns ProcessedAwaitingNext assignments with remaining pieces
	ListAvailable(ctx context.Context, stageIndex *int) ([]*Assignment, error)
}

// PayableRepository is the outbox of subcontractor payable events
type PayableRepository interface {
	Create(ctx context.Context, event *PayableEvent) error
	MarkPublished(ctx context.Context, id string) error
	FindBySubcontractor(ctx context.Context, subcontractor string) ([]*PayableEvent, error)
	FindUnpublished(ctx context.Context, limit int) ([]*PayableEvent, error)
}
