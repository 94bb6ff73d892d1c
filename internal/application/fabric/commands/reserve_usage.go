package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ReserveUsageCommand consumes roll length for a cutting job
type ReserveUsageCommand struct {
	RollID string
	JobID  string
	Amount decimal.Decimal
}

// ReserveUsageResponse reports the recorded usage and what is left on the roll
type ReserveUsageResponse struct {
	UsageID         string          `json:"usage_id"`
	RollID          string          `json:"roll_id"`
	BatchID         string          `json:"batch_id"`
	RemainingLength decimal.Decimal `json:"remaining_length"`
	Exhausted       bool            `json:"exhausted"`
}

// ReserveUsageHandler handles the ReserveUsage command.
// The roll row is locked for the check-then-decrement; a drained roll is kept.
type ReserveUsageHandler struct {
	rollRepo   fabric.RollRepository
	transactor common.Transactor
	clock      shared.Clock
}

// NewReserveUsageHandler creates a new ReserveUsageHandler
func NewReserveUsageHandler(rollRepo fabric.RollRepository, transactor common.Transactor, clock shared.Clock) *ReserveUsageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ReserveUsageHandler{rollRepo: rollRepo, transactor: transactor, clock: clock}
}

// Handle executes the ReserveUsage command
func (h *ReserveUsageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReserveUsageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReserveUsageCommand")
	}

	var response *ReserveUsageResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		roll, err := h.rollRepo.FindForUpdate(ctx, cmd.RollID)
		if err != nil {
			return err
		}

		usage, err := roll.Reserve(cmd.JobID, cmd.Amount, h.clock.Now())
		if err != nil {
			return err
		}

		if err := h.rollRepo.Update(ctx, roll); err != nil {
			return err
		}

		response = &ReserveUsageResponse{
			UsageID:         usage.ID(),
			RollID:          roll.ID(),
			BatchID:         roll.BatchID(),
			RemainingLength: roll.RemainingLength(),
			Exhausted:       roll.IsExhausted(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordFabricReserved(response.BatchID, cmd.Amount.InexactFloat64())
	if response.Exhausted {
		common.LoggerFromContext(ctx).Info().Str("roll_id", response.RollID).Msg("roll exhausted")
	}

	return response, nil
}
