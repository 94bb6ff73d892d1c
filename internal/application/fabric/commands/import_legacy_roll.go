package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ImportLegacyRollCommand loads a roll whose consumption predates the usage ledger
type ImportLegacyRollCommand struct {
	BatchID         string
	OriginalLength  decimal.Decimal
	RemainingLength decimal.Decimal
}

// ImportLegacyRollResponse contains the imported roll id
type ImportLegacyRollResponse struct {
	RollID string `json:"roll_id"`
}

// ImportLegacyRollHandler handles the ImportLegacyRoll command
type ImportLegacyRollHandler struct {
	batchRepo fabric.BatchRepository
	rollRepo  fabric.RollRepository
	clock     shared.Clock
}

// NewImportLegacyRollHandler creates a new ImportLegacyRollHandler
func NewImportLegacyRollHandler(batchRepo fabric.BatchRepository, rollRepo fabric.RollRepository, clock shared.Clock) *ImportLegacyRollHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ImportLegacyRollHandler{batchRepo: batchRepo, rollRepo: rollRepo, clock: clock}
}

// Handle executes the ImportLegacyRoll command
func (h *ImportLegacyRollHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ImportLegacyRollCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ImportLegacyRollCommand")
	}

	if _, err := h.batchRepo.FindByID(ctx, cmd.BatchID); err != nil {
		return nil, err
	}

	roll, err := fabric.NewLegacyRoll(cmd.BatchID, cmd.OriginalLength, cmd.RemainingLength, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.rollRepo.Create(ctx, roll); err != nil {
		return nil, fmt.Errorf("failed to persist legacy roll: %w", err)
	}

	common.LoggerFromContext(ctx).Info().
		Str("roll_id", roll.ID()).
		Str("consumed", cmd.OriginalLength.Sub(cmd.RemainingLength).String()).
		Msg("legacy roll imported without usage log")

	return &ImportLegacyRollResponse{RollID: roll.ID()}, nil
}
