package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// PayableView is the read model of a payable event
type PayableView struct {
	ID            string             `json:"id"`
	AssignmentID  string             `json:"assignment_id"`
	Subcontractor string             `json:"subcontractor"`
	Quantities    shared.QuantityMap `json:"quantities"`
	Quantity      int                `json:"quantity"`
	RatePerPiece  decimal.Decimal    `json:"rate_per_piece"`
	Amount        decimal.Decimal    `json:"amount"`
	OccurredAt    time.Time          `json:"occurred_at"`
	PublishedAt   *time.Time         `json:"published_at,omitempty"`
}

// ListPayablesQuery lists payable events; an empty Subcontractor lists all
type ListPayablesQuery struct {
	Subcontractor string
}

// ListPayablesResponse includes the summed amount of the listed events
type ListPayablesResponse struct {
	Payables []PayableView   `json:"payables"`
	Total    decimal.Decimal `json:"total"`
}

// ListPayablesHandler handles the ListPayables query
type ListPayablesHandler struct {
	payableRepo pipeline.PayableRepository
}

// NewListPayablesHandler creates a new ListPayablesHandler
func NewListPayablesHandler(payableRepo pipeline.PayableRepository) *ListPayablesHandler {
	return &ListPayablesHandler{payableRepo: payableRepo}
}

// Handle executes the ListPayables query
func (h *ListPayablesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListPayablesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPayablesQuery")
	}

	events, err := h.payableRepo.FindBySubcontractor(ctx, query.Subcontractor)
	if err != nil {
		return nil, err
	}

	response := &ListPayablesResponse{Payables: make([]PayableView, 0, len(events)), Total: decimal.Zero}
	for _, e := range events {
		response.Payables = append(response.Payables, PayableView{
			ID:            e.ID,
			AssignmentID:  e.AssignmentID,
			Subcontractor: e.Subcontractor,
			Quantities:    e.Quantities,
			Quantity:      e.Quantity,
			RatePerPiece:  e.RatePerPiece,
			Amount:        e.Amount,
			OccurredAt:    e.OccurredAt,
			PublishedAt:   e.PublishedAt,
		})
		response.Total = response.Total.Add(e.Amount)
	}
	return response, nil
}
