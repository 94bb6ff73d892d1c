package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// StartJobCommand opens a cutting job. OrderLineID is empty for jobs that
// produce internal stock; ProductID and Target default to the order line's.
type StartJobCommand struct {
	OrderLineID string
	ProductID   string
	Target      shared.QuantityMap
	WorkerID    string
}

// StartJobResponse contains the opened job id
type StartJobResponse struct {
	JobID string `json:"job_id"`
}

// StartJobHandler handles the StartJob command
type StartJobHandler struct {
	jobRepo    cutting.JobRepository
	orderRepo  dispatch.OrderRepository
	directory  common.EmployeeDirectory
	transactor common.Transactor
	clock      shared.Clock
}

// NewStartJobHandler creates a new StartJobHandler.
// directory may be nil, in which case worker ids are not checked.
func NewStartJobHandler(
	jobRepo cutting.JobRepository,
	orderRepo dispatch.OrderRepository,
	directory common.EmployeeDirectory,
	transactor common.Transactor,
	clock shared.Clock,
) *StartJobHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartJobHandler{
		jobRepo:    jobRepo,
		orderRepo:  orderRepo,
		directory:  directory,
		transactor: transactor,
		clock:      clock,
	}
}

// Handle executes the StartJob command
func (h *StartJobHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartJobCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartJobCommand")
	}

	worker, err := shared.NewEmployeeID(cmd.WorkerID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateWorkers(ctx, h.directory, worker); err != nil {
		return nil, err
	}

	var job *cutting.Job
	err = h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		productID, target := cmd.ProductID, cmd.Target
		if cmd.OrderLineID != "" {
			productID, target, err = h.resolveOrderLine(ctx, cmd.OrderLineID, productID, target)
			if err != nil {
				return err
			}
		}

		job, err = cutting.NewJob(cmd.OrderLineID, productID, target, worker, h.clock.Now())
		if err != nil {
			return err
		}
		if err := h.jobRepo.Create(ctx, job); err != nil {
			return fmt.Errorf("failed to persist cutting job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Info().
		Str("job_id", job.ID()).
		Str("product_id", job.ProductID()).
		Int("pieces", job.Target().Total()).
		Msg("cutting job opened")

	return &StartJobResponse{JobID: job.ID()}, nil
}

// resolveOrderLine locks the line and checks it matches the product and target
// and has no lineage yet. The lock holds until the job row is written.
func (h *StartJobHandler) resolveOrderLine(
	ctx context.Context,
	lineID, productID string,
	target shared.QuantityMap,
) (string, shared.QuantityMap, error) {
	line, err := h.orderRepo.FindLineForUpdate(ctx, lineID)
	if err != nil {
		return "", nil, err
	}
	if productID == "" {
		productID = line.ProductID()
	}
	if productID != line.ProductID() {
		return "", nil, shared.NewValidationError("product_id",
			fmt.Sprintf("order line %s is for product %s, not %s", lineID, line.ProductID(), productID))
	}
	target, err = line.JobTarget(target)
	if err != nil {
		return "", nil, err
	}

	existing, err := h.jobRepo.FindByOrderLines(ctx, []string{lineID})
	if err != nil {
		return "", nil, err
	}
	if len(existing) > 0 {
		return "", nil, shared.NewInvalidStateError("order line", lineID, "IN_PRODUCTION", "start a second cutting job for")
	}
	return productID, target, nil
}
