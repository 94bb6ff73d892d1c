package queries

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
)

// ListLineageQuery lists every assignment descending from a cutting job
type ListLineageQuery struct {
	JobID string
}

// ListLineageResponse holds the lineage ordered by stage, then creation
type ListLineageResponse struct {
	JobID       string           `json:"job_id"`
	Assignments []AssignmentView `json:"assignments"`
}

// ListLineageHandler handles the ListLineage query
type ListLineageHandler struct {
	jobRepo        cutting.JobRepository
	assignmentRepo pipeline.AssignmentRepository
	catalog        *pipeline.StageCatalog
}

// NewListLineageHandler creates a new ListLineageHandler
func NewListLineageHandler(
	jobRepo cutting.JobRepository,
	assignmentRepo pipeline.AssignmentRepository,
	catalog *pipeline.StageCatalog,
) *ListLineageHandler {
	return &ListLineageHandler{jobRepo: jobRepo, assignmentRepo: assignmentRepo, catalog: catalog}
}

// Handle executes the ListLineage query
func (h *ListLineageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListLineageQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListLineageQuery")
	}

	if _, err := h.jobRepo.FindByID(ctx, query.JobID); err != nil {
		return nil, err
	}

	assignments, err := h.assignmentRepo.FindByJob(ctx, query.JobID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].StageIndex() != assignments[j].StageIndex() {
			return assignments[i].StageIndex() < assignments[j].StageIndex()
		}
		return assignments[i].CreatedAt().Before(assignments[j].CreatedAt())
	})

	return &ListLineageResponse{JobID: query.JobID, Assignments: toAssignmentViews(assignments, h.catalog)}, nil
}
