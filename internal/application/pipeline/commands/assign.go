package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// WorkerShare is one worker's part of an assignment request
type WorkerShare struct {
	WorkerID     string
	Quantities   shared.QuantityMap
	RatePerPiece decimal.Decimal
}

// AssignCommand pushes pieces from a ready assignment to the next stage.
// Every share plus the stock usage is validated against remaining before
// anything is written.
type AssignCommand struct {
	AssignmentID string
	Workers      []WorkerShare
	StockBatchID string
	StockUsage   shared.QuantityMap
}

// AssignResponse reports the transition. ChildID is empty when only stock was used.
type AssignResponse struct {
	AssignmentID  string             `json:"assignment_id"`
	ChildID       string             `json:"child_id"`
	StockUsageID  string             `json:"stock_usage_id"`
	Remaining     shared.QuantityMap `json:"remaining"`
	AutoFulfilled bool               `json:"auto_fulfilled"`
}

// AssignHandler handles the Assign command
type AssignHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	batchRepo      stock.BatchRepository
	usageRepo      stock.UsageRepository
	transactor     common.Transactor
	directory      common.EmployeeDirectory
	catalog        *pipeline.StageCatalog
	clock          shared.Clock
}

// NewAssignHandler creates a new AssignHandler
func NewAssignHandler(
	assignmentRepo pipeline.AssignmentRepository,
	batchRepo stock.BatchRepository,
	usageRepo stock.UsageRepository,
	transactor common.Transactor,
	directory common.EmployeeDirectory,
	catalog *pipeline.StageCatalog,
	clock shared.Clock,
) *AssignHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &AssignHandler{
		assignmentRepo: assignmentRepo,
		batchRepo:      batchRepo,
		usageRepo:      usageRepo,
		transactor:     transactor,
		directory:      directory,
		catalog:        catalog,
		clock:          clock,
	}
}

// Handle executes the Assign command
func (h *AssignHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignCommand")
	}

	allocations, err := h.buildAllocations(ctx, cmd.Workers)
	if err != nil {
		return nil, err
	}
	usesStock := cmd.StockUsage != nil && !cmd.StockUsage.IsZero()
	if usesStock && cmd.StockBatchID == "" {
		return nil, shared.NewValidationError("stock_batch_id", "required when stock usage is given")
	}

	var (
		response  *AssignResponse
		stageName string
		workers   int
	)
	err = h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		assignment, err := h.assignmentRepo.FindForUpdate(ctx, cmd.AssignmentID)
		if err != nil {
			return err
		}

		var batch *stock.Batch
		if usesStock {
			batch, err = h.batchRepo.FindForUpdate(ctx, cmd.StockBatchID)
			if err != nil {
				return err
			}
			if err := batch.CanSubstituteFor(assignment.ProductID()); err != nil {
				return err
			}
		}

		now := h.clock.Now()
		result, err := assignment.Assign(pipeline.AssignRequest{
			Allocations: allocations,
			StockUsage:  cmd.StockUsage,
		}, h.catalog, now)
		if err != nil {
			return err
		}

		response = &AssignResponse{AssignmentID: assignment.ID(), AutoFulfilled: result.AutoFulfilled}
		nextStage := assignment.StageIndex() + 1
		stageName = h.catalog.Name(nextStage)

		if batch != nil {
			if err := batch.Withdraw(result.StockUsed, now); err != nil {
				return err
			}
			usage := stock.NewUsage(batch.ID(), assignment.JobID(), assignment.ID(),
				assignment.OrderLineID(), assignment.ProductID(), nextStage, result.StockUsed, now)
			if err := h.batchRepo.Update(ctx, batch); err != nil {
				return err
			}
			if err := h.usageRepo.Create(ctx, usage); err != nil {
				return err
			}
			response.StockUsageID = usage.ID()
		}

		if result.Child != nil {
			if err := h.assignmentRepo.Create(ctx, result.Child); err != nil {
				return err
			}
			response.ChildID = result.Child.ID()
			workers = result.Child.Remaining().Total()
		}

		if err := h.assignmentRepo.Update(ctx, assignment); err != nil {
			return err
		}
		response.Remaining = assignment.Remaining()
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPiecesMoved(stageName, "worker", workers)
	if usesStock {
		metrics.RecordPiecesMoved(stageName, "stock", cmd.StockUsage.Total())
	}
	if response.AutoFulfilled {
		common.LoggerFromContext(ctx).Info().
			Str("assignment_id", response.AssignmentID).
			Msg("transition auto-fulfilled from stock")
	}
	return response, nil
}

func (h *AssignHandler) buildAllocations(ctx context.Context, shares []WorkerShare) ([]pipeline.WorkerAllocation, error) {
	allocations := make([]pipeline.WorkerAllocation, 0, len(shares))
	workers := make([]shared.EmployeeID, 0, len(shares))
	for _, share := range shares {
		worker, err := shared.NewEmployeeID(share.WorkerID)
		if err != nil {
			return nil, err
		}
		alloc, err := pipeline.NewWorkerAllocation(worker, share.Quantities, share.RatePerPiece)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
		workers = append(workers, worker)
	}
	if err := common.ValidateWorkers(ctx, h.directory, workers...); err != nil {
		return nil, err
	}
	return allocations, nil
}
