package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// CompleteStageCommand marks in-house work on an assignment as done
type CompleteStageCommand struct {
	AssignmentID string
}

type CompleteStageResponse struct {
	AssignmentID string `json:"assignment_id"`
	Status       string `json:"status"`
}

// CompleteStageHandler handles the CompleteStage command
type CompleteStageHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	transactor     common.Transactor
	clock          shared.Clock
}

// NewCompleteStageHandler creates a new CompleteStageHandler
func NewCompleteStageHandler(assignmentRepo pipeline.AssignmentRepository, transactor common.Transactor, clock shared.Clock) *CompleteStageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CompleteStageHandler{assignmentRepo: assignmentRepo, transactor: transactor, clock: clock}
}

// Handle executes the CompleteStage command
func (h *CompleteStageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CompleteStageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CompleteStageCommand")
	}

	var response *CompleteStageResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		assignment, err := h.assignmentRepo.FindForUpdate(ctx, cmd.AssignmentID)
		if err != nil {
			return err
		}
		if err := assignment.CompleteStage(h.clock.Now()); err != nil {
			return err
		}
		if err := h.assignmentRepo.Update(ctx, assignment); err != nil {
			return err
		}
		response = &CompleteStageResponse{AssignmentID: assignment.ID(), Status: string(assignment.Status())}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
