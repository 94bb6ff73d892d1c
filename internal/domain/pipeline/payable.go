package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// PayableEvent credits a subcontractor for received pieces. Posting to a
// ledger happens outside the engine; the event is only emitted.
type PayableEvent struct {
	ID            string
	AssignmentID  string
	Subcontractor string
	Quantities    shared.QuantityMap
	Quantity      int
	RatePerPiece  decimal.Decimal
	Amount        decimal.Decimal
	OccurredAt    time.Time
	PublishedAt   *time.Time
}

func NewPayableEvent(assignmentID, subcontractor string, received shared.QuantityMap, rate decimal.Decimal, at time.Time) *PayableEvent {
	quantity := received.Total()
	return &PayableEvent{
		ID:            shared.NewID(),
		AssignmentID:  assignmentID,
		Subcontractor: subcontractor,
		Quantities:    received.Normalize(),
		Quantity:      quantity,
		RatePerPiece:  rate,
		Amount:        rate.Mul(decimal.NewFromInt(int64(quantity))),
		OccurredAt:    at,
	}
}
