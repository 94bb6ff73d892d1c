package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// ImportStockCommand loads internal finished stock that predates the engine
type ImportStockCommand struct {
	ProductID  string
	Quantities shared.QuantityMap
}

type ImportStockResponse struct {
	StockBatchID string `json:"stock_batch_id"`
}

// ImportStockHandler handles the ImportStock command
type ImportStockHandler struct {
	batchRepo stock.BatchRepository
	clock     shared.Clock
}

// NewImportStockHandler creates a new ImportStockHandler
func NewImportStockHandler(batchRepo stock.BatchRepository, clock shared.Clock) *ImportStockHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ImportStockHandler{batchRepo: batchRepo, clock: clock}
}

// Handle executes the ImportStock command
func (h *ImportStockHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ImportStockCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportStockCommand")
	}

	batch, err := stock.NewOpeningBatch(cmd.ProductID, cmd.Quantities, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to persist stock batch: %w", err)
	}

	common.LoggerFromContext(ctx).Info().
		Str("stock_batch_id", batch.ID()).
		Str("product_id", cmd.ProductID).
		Int("pieces", cmd.Quantities.Total()).
		Msg("opening stock imported")

	return &ImportStockResponse{StockBatchID: batch.ID()}, nil
}
