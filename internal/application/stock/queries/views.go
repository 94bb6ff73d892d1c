package queries

import (
	"time"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// BatchView is the read model of a finished stock batch
type BatchView struct {
	ID                 string             `json:"id"`
	ProductID          string             `json:"product_id"`
	OrderLineID        string             `json:"order_line_id,omitempty"`
	SourceAssignmentID string             `json:"source_assignment_id,omitempty"`
	Produced           shared.QuantityMap `json:"produced"`
	Available          shared.QuantityMap `json:"available"`
	DispatchState      string             `json:"dispatch_state"`
	Internal           bool               `json:"internal"`
	CreatedAt          time.Time          `json:"created_at"`
}

func toBatchView(b *stock.Batch) BatchView {
	return BatchView{
		ID:                 b.ID(),
		ProductID:          b.ProductID(),
		OrderLineID:        b.OrderLineID(),
		SourceAssignmentID: b.SourceAssignmentID(),
		Produced:           b.Produced(),
		Available:          b.Available(),
		DispatchState:      b.DispatchState().String(),
		Internal:           b.IsInternal(),
		CreatedAt:          b.CreatedAt(),
	}
}
