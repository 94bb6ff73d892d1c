package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// CompleteJobCommand closes a cutting job and emits its stage 1 assignment
type CompleteJobCommand struct {
	JobID string
}

// CompleteJobResponse reports the emitted assignment. StageOneID is empty
// when stock covered the whole target.
type CompleteJobResponse struct {
	JobID      string             `json:"job_id"`
	StageOneID string             `json:"stage_one_id"`
	Remaining  shared.QuantityMap `json:"remaining"`
}

// CompleteJobHandler handles the CompleteJob command
type CompleteJobHandler struct {
	jobRepo        cutting.JobRepository
	assignmentRepo pipeline.AssignmentRepository
	transactor     common.Transactor
	clock          shared.Clock
}

// NewCompleteJobHandler creates a new CompleteJobHandler
func NewCompleteJobHandler(
	jobRepo cutting.JobRepository,
	assignmentRepo pipeline.AssignmentRepository,
	transactor common.Transactor,
	clock shared.Clock,
) *CompleteJobHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CompleteJobHandler{jobRepo: jobRepo, assignmentRepo: assignmentRepo, transactor: transactor, clock: clock}
}

// Handle executes the CompleteJob command
func (h *CompleteJobHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CompleteJobCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CompleteJobCommand")
	}

	var response *CompleteJobResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		job, err := h.jobRepo.FindForUpdate(ctx, cmd.JobID)
		if err != nil {
			return err
		}

		now := h.clock.Now()
		remaining, err := job.Complete(now)
		if err != nil {
			return err
		}

		response = &CompleteJobResponse{JobID: job.ID(), Remaining: remaining}
		if remaining.Total() > 0 {
			lineage := pipeline.Lineage{JobID: job.ID(), OrderLineID: job.OrderLineID(), ProductID: job.ProductID()}
			stageOne, err := pipeline.NewStageOneAssignment(lineage, remaining, now)
			if err != nil {
				return err
			}
			if err := h.assignmentRepo.Create(ctx, stageOne); err != nil {
				return err
			}
			job.LinkStageOne(stageOne.ID())
			response.StageOneID = stageOne.ID()
		}

		return h.jobRepo.Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPiecesMoved("cutting", "worker", response.Remaining.Total())

	logger := common.LoggerFromContext(ctx)
	if response.StageOneID == "" {
		logger.Info().Str("job_id", response.JobID).Msg("cutting job fully covered by stock, no stage assignment emitted")
	} else {
		logger.Info().
			Str("job_id", response.JobID).
			Str("assignment_id", response.StageOneID).
			Int("pieces", response.Remaining.Total()).
			Msg("cutting job completed")
	}
	return response, nil
}
