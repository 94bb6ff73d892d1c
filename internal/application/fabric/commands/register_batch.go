package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// RegisterBatchCommand registers a fabric batch identity (type, color, design, quality)
type RegisterBatchCommand struct {
	FabricType string
	Color      string
	Design     string
	Quality    string
}

// RegisterBatchResponse contains the new batch id
type RegisterBatchResponse struct {
	BatchID string `json:"batch_id"`
}

// RegisterBatchHandler handles the RegisterBatch command
type RegisterBatchHandler struct {
	batchRepo fabric.BatchRepository
	clock     shared.Clock
}

// NewRegisterBatchHandler creates a new RegisterBatchHandler
func NewRegisterBatchHandler(batchRepo fabric.BatchRepository, clock shared.Clock) *RegisterBatchHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RegisterBatchHandler{batchRepo: batchRepo, clock: clock}
}

// Handle executes the RegisterBatch command
func (h *RegisterBatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RegisterBatchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RegisterBatchCommand")
	}

	batch, err := fabric.NewBatch(cmd.FabricType, cmd.Color, cmd.Design, cmd.Quality, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to persist fabric batch: %w", err)
	}

	return &RegisterBatchResponse{BatchID: batch.ID()}, nil
}
