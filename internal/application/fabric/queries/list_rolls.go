package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

// ListRollsQuery lists the rolls of a batch, exhausted ones included
type ListRollsQuery struct {
	BatchID string
}

// ListRollsResponse contains the rolls of the batch
type ListRollsResponse struct {
	Batch BatchView  `json:"batch"`
	Rolls []RollView `json:"rolls"`
}

// ListRollsHandler handles the ListRolls query
type ListRollsHandler struct {
	batchRepo fabric.BatchRepository
	rollRepo  fabric.RollRepository
}

// NewListRollsHandler creates a new ListRollsHandler
func NewListRollsHandler(batchRepo fabric.BatchRepository, rollRepo fabric.RollRepository) *ListRollsHandler {
	return &ListRollsHandler{batchRepo: batchRepo, rollRepo: rollRepo}
}

// Handle executes the ListRolls query
func (h *ListRollsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListRollsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRollsQuery")
	}

	batch, err := h.batchRepo.FindByID(ctx, query.BatchID)
	if err != nil {
		return nil, err
	}
	rolls, err := h.rollRepo.ListByBatch(ctx, query.BatchID)
	if err != nil {
		return nil, err
	}

	views := make([]RollView, 0, len(rolls))
	for _, r := range rolls {
		views = append(views, toRollView(r))
	}
	return &ListRollsResponse{Batch: toBatchView(batch), Rolls: views}, nil
}
