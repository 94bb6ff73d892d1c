package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// GetBatchQuery fetches one finished stock batch
type GetBatchQuery struct {
	StockBatchID string
}

// GetBatchHandler handles the GetBatch query
type GetBatchHandler struct {
	batchRepo stock.BatchRepository
}

// NewGetBatchHandler creates a new GetBatchHandler
func NewGetBatchHandler(batchRepo stock.BatchRepository) *GetBatchHandler {
	return &GetBatchHandler{batchRepo: batchRepo}
}

// Handle executes the GetBatch query and returns a *BatchView
func (h *GetBatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetBatchQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetBatchQuery")
	}

	batch, err := h.batchRepo.FindByID(ctx, query.StockBatchID)
	if err != nil {
		return nil, err
	}

	view := toBatchView(batch)
	return &view, nil
}
