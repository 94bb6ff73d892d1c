package dispatch

import "context"

// OrderRepository persists orders with their lines
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindForUpdate locks the order row so pack and dispatch serialize per order
	FindForUpdate(ctx context.Context, id string) (*Order, error)

	FindLine(ctx context.Context, lineID string) (*OrderLine, error)

	// FindLineForUpdate locks the line row so cutting jobs start one at a time per line
	FindLineForUpdate(ctx context.Context, lineID string) (*OrderLine, error)
	List(ctx context.Context, limit int) ([]*Order, error)
}
