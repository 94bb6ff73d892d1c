package stock

import "context"

// BatchRepository persists finished stock batches
type BatchRepository interface {
	Create(ctx context.Context, batch *Batch) error
	FindByID(ctx context.Context, id string) (*Batch, error)

	// FindForUpdate loads a batch and locks its row for the surrounding transaction
	FindForUpdate(ctx context.Context, id string) (*Batch, error)

	// Update writes back available quantities and dispatch state under a version guard
	Update(ctx context.Context, batch *Batch) error

	List(ctx context.Context, filter BatchFilter) ([]*Batch, error)
	FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*Batch, error)
}

// BatchFilter narrows batch listings; empty fields are ignored
type BatchFilter struct {
	ProductID    string
	InternalOnly bool
}

// UsageRepository persists substitution records
type UsageRepository interface {
	Create(ctx context.Context, usage *Usage) error
	Update(ctx context.Context, usage *Usage) error
	FindByJob(ctx context.Context, jobID string) ([]*Usage, error)
	FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*Usage, error)
}
