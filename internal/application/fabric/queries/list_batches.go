package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

// ListBatchesQuery lists every registered fabric batch
type ListBatchesQuery struct{}

// ListBatchesResponse contains the batches, oldest first
type ListBatchesResponse struct {
	Batches []BatchView `json:"batches"`
}

// ListBatchesHandler handles the ListBatches query
type ListBatchesHandler struct {
	batchRepo fabric.BatchRepository
}

// NewListBatchesHandler creates a new ListBatchesHandler
func NewListBatchesHandler(batchRepo fabric.BatchRepository) *ListBatchesHandler {
	return &ListBatchesHandler{batchRepo: batchRepo}
}

// Handle executes the ListBatches query
func (h *ListBatchesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ListBatchesQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListBatchesQuery")
	}

	batches, err := h.batchRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]BatchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, toBatchView(b))
	}
	return &ListBatchesResponse{Batches: views}, nil
}
