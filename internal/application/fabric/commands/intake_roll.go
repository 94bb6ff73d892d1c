package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// IntakeRollCommand receives a new roll into a registered batch
type IntakeRollCommand struct {
	BatchID string
	Length  decimal.Decimal
}

// IntakeRollResponse contains the new roll id
type IntakeRollResponse struct {
	RollID string          `json:"roll_id"`
	Length decimal.Decimal `json:"length"`
}

// IntakeRollHandler handles the IntakeRoll command
type IntakeRollHandler struct {
	batchRepo fabric.BatchRepository
	rollRepo  fabric.RollRepository
	clock     shared.Clock
}

// NewIntakeRollHandler creates a new IntakeRollHandler
func NewIntakeRollHandler(batchRepo fabric.BatchRepository, rollRepo fabric.RollRepository, clock shared.Clock) *IntakeRollHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &IntakeRollHandler{batchRepo: batchRepo, rollRepo: rollRepo, clock: clock}
}

// Handle executes the IntakeRoll command
func (h *IntakeRollHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*IntakeRollCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *IntakeRollCommand")
	}

	if _, err := h.batchRepo.FindByID(ctx, cmd.BatchID); err != nil {
		return nil, err
	}

	roll, err := fabric.NewRoll(cmd.BatchID, cmd.Length, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.rollRepo.Create(ctx, roll); err != nil {
		return nil, fmt.Errorf("failed to persist roll: %w", err)
	}

	return &IntakeRollResponse{RollID: roll.ID(), Length: roll.OriginalLength()}, nil
}
