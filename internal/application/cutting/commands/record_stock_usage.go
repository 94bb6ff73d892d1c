package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// RecordStockUsageCommand pulls finished internal stock into a job instead of cutting
type RecordStockUsageCommand struct {
	JobID        string
	StockBatchID string
	Quantities   shared.QuantityMap
}

// RecordStockUsageResponse reports the substitution record and what is left to cover
type RecordStockUsageResponse struct {
	UsageID        string             `json:"usage_id"`
	BatchAvailable shared.QuantityMap `json:"batch_available"`
	Unallocated    shared.QuantityMap `json:"unallocated"`
}

// RecordStockUsageHandler handles the RecordStockUsage command.
// Job and batch rows are both locked; either limit failing rejects the whole usage.
type RecordStockUsageHandler struct {
	jobRepo    cutting.JobRepository
	batchRepo  stock.BatchRepository
	usageRepo  stock.UsageRepository
	transactor common.Transactor
	clock      shared.Clock
}

// NewRecordStockUsageHandler creates a new RecordStockUsageHandler
func NewRecordStockUsageHandler(
	jobRepo cutting.JobRepository,
	batchRepo stock.BatchRepository,
	usageRepo stock.UsageRepository,
	transactor common.Transactor,
	clock shared.Clock,
) *RecordStockUsageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RecordStockUsageHandler{
		jobRepo:    jobRepo,
		batchRepo:  batchRepo,
		usageRepo:  usageRepo,
		transactor: transactor,
		clock:      clock,
	}
}

// Handle executes the RecordStockUsage command
func (h *RecordStockUsageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecordStockUsageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordStockUsageCommand")
	}

	var response *RecordStockUsageResponse
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		job, err := h.jobRepo.FindForUpdate(ctx, cmd.JobID)
		if err != nil {
			return err
		}
		if err := job.CheckStockUsage(cmd.Quantities); err != nil {
			return err
		}

		batch, err := h.batchRepo.FindForUpdate(ctx, cmd.StockBatchID)
		if err != nil {
			return err
		}
		if err := batch.CanSubstituteFor(job.ProductID()); err != nil {
			return err
		}

		now := h.clock.Now()
		if err := batch.Withdraw(cmd.Quantities, now); err != nil {
			return err
		}

		usage := stock.NewUsage(batch.ID(), job.ID(), "", job.OrderLineID(), job.ProductID(), 0, cmd.Quantities, now)
		if err := job.RecordStockUsage(usage.ID(), batch.ID(), cmd.Quantities, now); err != nil {
			return err
		}

		if err := h.batchRepo.Update(ctx, batch); err != nil {
			return err
		}
		if err := h.usageRepo.Create(ctx, usage); err != nil {
			return err
		}
		if err := h.jobRepo.Update(ctx, job); err != nil {
			return err
		}

		response = &RecordStockUsageResponse{
			UsageID:        usage.ID(),
			BatchAvailable: batch.Available(),
			Unallocated:    job.Unallocated(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPiecesMoved("cutting", "stock", cmd.Quantities.Total())
	return response, nil
}
