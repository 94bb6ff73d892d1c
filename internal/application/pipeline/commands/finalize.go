package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// FinalizeCommand converts the remaining of a terminal-stage assignment into finished stock
type FinalizeCommand struct {
	AssignmentID string
}

// FinalizeResponse reports the finished stock batch
type FinalizeResponse struct {
	AssignmentID string             `json:"assignment_id"`
	StockBatchID string             `json:"stock_batch_id"`
	Produced     shared.QuantityMap `json:"produced"`
}

// FinalizeHandler handles the Finalize command
type FinalizeHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	batchRepo      stock.BatchRepository
	transactor     common.Transactor
	catalog        *pipeline.StageCatalog
	clock          shared.Clock
}

// NewFinalizeHandler creates a new FinalizeHandler
func NewFinalizeHandler(
	assignmentRepo pipeline.AssignmentRepository,
	batchRepo stock.BatchRepository,
	transactor common.Transactor,
	catalog *pipeline.StageCatalog,
	clock shared.Clock,
) *FinalizeHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &FinalizeHandler{
		assignmentRepo: assignmentRepo,
		batchRepo:      batchRepo,
		transactor:     transactor,
		catalog:        catalog,
		clock:          clock,
	}
}

// Handle executes the Finalize command
func (h *FinalizeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*FinalizeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FinalizeCommand")
	}

	var response *FinalizeResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		assignment, err := h.assignmentRepo.FindForUpdate(ctx, cmd.AssignmentID)
		if err != nil {
			return err
		}

		now := h.clock.Now()
		produced, err := assignment.Finalize(h.catalog, now)
		if err != nil {
			return err
		}

		batch, err := stock.NewProducedBatch(assignment.ProductID(), assignment.OrderLineID(), assignment.ID(), produced, now)
		if err != nil {
			return err
		}
		if err := h.batchRepo.Create(ctx, batch); err != nil {
			return err
		}
		if err := h.assignmentRepo.Update(ctx, assignment); err != nil {
			return err
		}

		response = &FinalizeResponse{AssignmentID: assignment.ID(), StockBatchID: batch.ID(), Produced: produced}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPiecesMoved(h.catalog.Name(h.catalog.Terminal()), "finished", response.Produced.Total())
	common.LoggerFromContext(ctx).Info().
		Str("assignment_id", response.AssignmentID).
		Str("stock_batch_id", response.StockBatchID).
		Int("pieces", response.Produced.Total()).
		Msg("terminal stage finalized")
	return response, nil
}
