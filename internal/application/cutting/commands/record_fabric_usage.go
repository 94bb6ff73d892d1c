package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	fabricCmd "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// RecordFabricUsageCommand consumes roll length for a job. Pieces optionally
// attributes the cut to sizes and is checked against what is still unallocated.
type RecordFabricUsageCommand struct {
	JobID  string
	RollID string
	Amount decimal.Decimal
	Pieces shared.QuantityMap
}

// RecordFabricUsageResponse reports the usage and the roll after reservation
type RecordFabricUsageResponse struct {
	UsageID         string             `json:"usage_id"`
	RemainingLength decimal.Decimal    `json:"remaining_length"`
	RollExhausted   bool               `json:"roll_exhausted"`
	Unallocated     shared.QuantityMap `json:"unallocated"`
}

// RecordFabricUsageHandler handles the RecordFabricUsage command.
// The roll reservation is delegated to ReserveUsageCommand inside the same transaction.
type RecordFabricUsageHandler struct {
	jobRepo    cutting.JobRepository
	mediator   mediator.Mediator
	transactor common.Transactor
	clock      shared.Clock
}

// NewRecordFabricUsageHandler creates a new RecordFabricUsageHandler
func NewRecordFabricUsageHandler(
	jobRepo cutting.JobRepository,
	mediator mediator.Mediator,
	transactor common.Transactor,
	clock shared.Clock,
) *RecordFabricUsageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RecordFabricUsageHandler{jobRepo: jobRepo, mediator: mediator, transactor: transactor, clock: clock}
}

// Handle executes the RecordFabricUsage command
func (h *RecordFabricUsageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecordFabricUsageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordFabricUsageCommand")
	}

	var response *RecordFabricUsageResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		job, err := h.jobRepo.FindForUpdate(ctx, cmd.JobID)
		if err != nil {
			return err
		}
		if err := job.CheckFabricUsage(cmd.Pieces); err != nil {
			return err
		}

		resp, err := h.mediator.Send(ctx, &fabricCmd.ReserveUsageCommand{
			RollID: cmd.RollID,
			JobID:  job.ID(),
			Amount: cmd.Amount,
		})
		if err != nil {
			return err
		}
		reserved, ok := resp.(*fabricCmd.ReserveUsageResponse)
		if !ok {
			return fmt.Errorf("unexpected response type from ReserveUsageCommand: %T", resp)
		}

		if err := job.RecordFabricUsage(reserved.UsageID, reserved.RollID, cmd.Amount, cmd.Pieces, h.clock.Now()); err != nil {
			return err
		}
		if err := h.jobRepo.Update(ctx, job); err != nil {
			return err
		}

		response = &RecordFabricUsageResponse{
			UsageID:         reserved.UsageID,
			RemainingLength: reserved.RemainingLength,
			RollExhausted:   reserved.Exhausted,
			Unallocated:     job.Unallocated(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}
