package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// SendExternalCommand hands pieces of a ready assignment to a subcontractor
type SendExternalCommand struct {
	AssignmentID  string
	Subcontractor string
	RatePerPiece  decimal.Decimal
	Quantities    shared.QuantityMap
}

// SendExternalResponse contains the external child created at the next stage
type SendExternalResponse struct {
	AssignmentID string             `json:"assignment_id"`
	ExternalID   string             `json:"external_id"`
	StageIndex   int                `json:"stage_index"`
	Remaining    shared.QuantityMap `json:"remaining"`
}

// SendExternalHandler handles the SendExternal command
type SendExternalHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	transactor     common.Transactor
	catalog        *pipeline.StageCatalog
	clock          shared.Clock
}

// NewSendExternalHandler creates a new SendExternalHandler
func NewSendExternalHandler(
	assignmentRepo pipeline.AssignmentRepository,
	transactor common.Transactor,
	catalog *pipeline.StageCatalog,
	clock shared.Clock,
) *SendExternalHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SendExternalHandler{assignmentRepo: assignmentRepo, transactor: transactor, catalog: catalog, clock: clock}
}

// Handle executes the SendExternal command
func (h *SendExternalHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SendExternalCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SendExternalCommand")
	}

	var response *SendExternalResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		parent, err := h.assignmentRepo.FindForUpdate(ctx, cmd.AssignmentID)
		if err != nil {
			return err
		}

		child, err := parent.SendExternal(cmd.Subcontractor, cmd.RatePerPiece, cmd.Quantities, h.catalog, h.clock.Now())
		if err != nil {
			return err
		}

		if err := h.assignmentRepo.Create(ctx, child); err != nil {
			return err
		}
		if err := h.assignmentRepo.Update(ctx, parent); err != nil {
			return err
		}

		response = &SendExternalResponse{
			AssignmentID: parent.ID(),
			ExternalID:   child.ID(),
			StageIndex:   child.StageIndex(),
			Remaining:    parent.Remaining(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPiecesMoved(h.catalog.Name(response.StageIndex), "external", cmd.Quantities.Total())
	common.LoggerFromContext(ctx).Info().
		Str("external_id", response.ExternalID).
		Str("subcontractor", cmd.Subcontractor).
		Int("pieces", cmd.Quantities.Total()).
		Msg("pieces sent to subcontractor")
	return response, nil
}
