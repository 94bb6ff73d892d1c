package fabric

import "context"

// BatchRepository persists fabric batches
type BatchRepository interface {
	Create(ctx context.Context, batch *Batch) error
	FindByID(ctx context.Context, id string) (*Batch, error)
	List(ctx context.Context) ([]*Batch, error)
}

// RollRepository persists rolls together with their usage log
type RollRepository interface {
	Create(ctx context.Context, roll *Roll) error

	// FindByID loads a roll without locking
	FindByID(ctx context.Context, id string) (*Roll, error)

	// FindForUpdate loads a roll and locks its row for the surrounding transaction
	FindForUpdate(ctx context.Context, id string) (*Roll, error)

	// Update writes back the remaining length and appends new usage records.
	// Fails with ConcurrentModification when the stored version moved on.
	Update(ctx context.Context, roll *Roll) error

	ListByBatch(ctx context.Context, batchID string) ([]*Roll, error)
}
