package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// ListBatchesQuery lists finished stock. InternalOnly keeps substitution stock only.
type ListBatchesQuery struct {
	ProductID    string
	InternalOnly bool
}

type ListBatchesResponse struct {
	Batches []BatchView `json:"batches"`
}

// ListBatchesHandler handles the ListBatches query
type ListBatchesHandler struct {
	batchRepo stock.BatchRepository
}

// NewListBatchesHandler creates a new ListBatchesHandler
func NewListBatchesHandler(batchRepo stock.BatchRepository) *ListBatchesHandler {
	return &ListBatchesHandler{batchRepo: batchRepo}
}

// Handle executes the ListBatches query
func (h *ListBatchesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListBatchesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListBatchesQuery")
	}

	batches, err := h.batchRepo.List(ctx, stock.BatchFilter{ProductID: query.ProductID, InternalOnly: query.InternalOnly})
	if err != nil {
		return nil, err
	}

	views := make([]BatchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, toBatchView(b))
	}
	return &ListBatchesResponse{Batches: views}, nil
}
