package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// JobView is the read model of a cutting job
type JobView struct {
	ID           string             `json:"id"`
	OrderLineID  string             `json:"order_line_id,omitempty"`
	ProductID    string             `json:"product_id"`
	WorkerID     string             `json:"worker_id"`
	Status       string             `json:"status"`
	Target       shared.QuantityMap `json:"target"`
	Allocated    shared.QuantityMap `json:"allocated"`
	Unallocated  shared.QuantityMap `json:"unallocated"`
	StockCovered shared.QuantityMap `json:"stock_covered"`
	FabricLength decimal.Decimal    `json:"fabric_length"`
	MissingSizes []string           `json:"missing_sizes,omitempty"`
	StageOneID   string             `json:"stage_one_assignment_id,omitempty"`
	FabricUsages []FabricUsageView  `json:"fabric_usages"`
	StockUsages  []StockUsageView   `json:"stock_usages"`
	CreatedAt    time.Time          `json:"created_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

type FabricUsageView struct {
	ID         string             `json:"id"`
	RollID     string             `json:"roll_id"`
	Amount     decimal.Decimal    `json:"amount"`
	Pieces     shared.QuantityMap `json:"pieces,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
}

type StockUsageView struct {
	UsageID    string             `json:"usage_id"`
	BatchID    string             `json:"stock_batch_id"`
	Quantities shared.QuantityMap `json:"quantities"`
	RecordedAt time.Time          `json:"recorded_at"`
}

func toJobView(job *cutting.Job) JobView {
	view := JobView{
		ID:           job.ID(),
		OrderLineID:  job.OrderLineID(),
		ProductID:    job.ProductID(),
		WorkerID:     job.WorkerID().String(),
		Status:       string(job.Status()),
		Target:       job.Target(),
		Allocated:    job.Allocated(),
		Unallocated:  job.Unallocated(),
		StockCovered: job.StockCovered(),
		FabricLength: job.FabricLength(),
		StageOneID:   job.StageOneAssignmentID(),
		CreatedAt:    job.CreatedAt(),
		CompletedAt:  job.CompletedAt(),
	}
	if job.IsOpen() {
		view.MissingSizes = job.MissingSizes()
	}
	for _, u := range job.FabricUsages() {
		view.FabricUsages = append(view.FabricUsages, FabricUsageView{
			ID: u.ID, RollID: u.RollID, Amount: u.Amount, Pieces: u.Pieces, RecordedAt: u.RecordedAt,
		})
	}
	for _, u := range job.StockUsages() {
		view.StockUsages = append(view.StockUsages, StockUsageView{
			UsageID: u.UsageID, BatchID: u.BatchID, Quantities: u.Quantities, RecordedAt: u.RecordedAt,
		})
	}
	return view
}

// GetJobQuery fetches one cutting job
type GetJobQuery struct {
	JobID string
}

// GetJobHandler handles the GetJob query
type GetJobHandler struct {
	jobRepo cutting.JobRepository
}

// NewGetJobHandler creates a new GetJobHandler
func NewGetJobHandler(jobRepo cutting.JobRepository) *GetJobHandler {
	return &GetJobHandler{jobRepo: jobRepo}
}

// Handle executes the GetJob query and returns a *JobView
func (h *GetJobHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetJobQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetJobQuery")
	}

	job, err := h.jobRepo.FindByID(ctx, query.JobID)
	if err != nil {
		return nil, err
	}

	view := toJobView(job)
	return &view, nil
}
