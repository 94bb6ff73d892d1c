package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// SuggestSubstitutionQuery computes how much of a stock batch could feed a job
// or an assignment. Exactly one of JobID and AssignmentID is set. Nothing is written.
type SuggestSubstitutionQuery struct {
	JobID        string
	AssignmentID string
	StockBatchID string
}

// SuggestSubstitutionResponse reports the usable quantity per size
type SuggestSubstitutionResponse struct {
	StockBatchID    string             `json:"stock_batch_id"`
	Required        shared.QuantityMap `json:"required"`
	AlreadyProduced shared.QuantityMap `json:"already_produced"`
	Available       shared.QuantityMap `json:"available"`
	Usable          shared.QuantityMap `json:"usable"`

	// CoversAll is set when the batch alone would satisfy what is still required
	CoversAll bool `json:"covers_all"`
}

// SuggestSubstitutionHandler handles the SuggestSubstitution query
type SuggestSubstitutionHandler struct {
	jobRepo        cutting.JobRepository
	assignmentRepo pipeline.AssignmentRepository
	batchRepo      stock.BatchRepository
}

// NewSuggestSubstitutionHandler creates a new SuggestSubstitutionHandler
func NewSuggestSubstitutionHandler(
	jobRepo cutting.JobRepository,
	assignmentRepo pipeline.AssignmentRepository,
	batchRepo stock.BatchRepository,
) *SuggestSubstitutionHandler {
	return &SuggestSubstitutionHandler{jobRepo: jobRepo, assignmentRepo: assignmentRepo, batchRepo: batchRepo}
}

// Handle executes the SuggestSubstitution query
func (h *SuggestSubstitutionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*SuggestSubstitutionQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SuggestSubstitutionQuery")
	}
	if (query.JobID == "") == (query.AssignmentID == "") {
		return nil, shared.NewValidationError("target", "exactly one of job_id and assignment_id is required")
	}

	var (
		productID       string
		required        shared.QuantityMap
		alreadyProduced shared.QuantityMap
	)
	if query.JobID != "" {
		job, err := h.jobRepo.FindByID(ctx, query.JobID)
		if err != nil {
			return nil, err
		}
		productID = job.ProductID()
		required = job.Target()
		alreadyProduced = job.Allocated()
	} else {
		assignment, err := h.assignmentRepo.FindByID(ctx, query.AssignmentID)
		if err != nil {
			return nil, err
		}
		productID = assignment.ProductID()
		required = assignment.Remaining()
		alreadyProduced = required.ZeroLike()
	}

	batch, err := h.batchRepo.FindByID(ctx, query.StockBatchID)
	if err != nil {
		return nil, err
	}
	if err := batch.CanSubstituteFor(productID); err != nil {
		return nil, err
	}

	available := batch.Available()
	usable := stock.ResolveSubstitution(required, available, alreadyProduced)
	outstanding := stock.ResolveSubstitution(required, required, alreadyProduced)

	return &SuggestSubstitutionResponse{
		StockBatchID:    batch.ID(),
		Required:        required,
		AlreadyProduced: alreadyProduced,
		Available:       available,
		Usable:          usable,
		CoversAll:       usable.Equal(outstanding) && usable.Total() > 0,
	}, nil
}
