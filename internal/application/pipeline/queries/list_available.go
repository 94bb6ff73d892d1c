package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ListAvailableQuery lists assignments whose remaining can move forward.
// StageIndex 0 means every stage.
type ListAvailableQuery struct {
	StageIndex int
}

type ListAvailableResponse struct {
	Assignments []AssignmentView `json:"assignments"`
}

// ListAvailableHandler handles the ListAvailable query
type ListAvailableHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	catalog        *pipeline.StageCatalog
}

// NewListAvailableHandler creates a new ListAvailableHandler
func NewListAvailableHandler(assignmentRepo pipeline.AssignmentRepository, catalog *pipeline.StageCatalog) *ListAvailableHandler {
	return &ListAvailableHandler{assignmentRepo: assignmentRepo, catalog: catalog}
}

// Handle executes the ListAvailable query
func (h *ListAvailableHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListAvailableQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListAvailableQuery")
	}

	var stage *int
	if query.StageIndex != 0 {
		if !h.catalog.Contains(query.StageIndex) {
			return nil, shared.NewValidationError("stage_index",
				fmt.Sprintf("must be between 1 and %d", h.catalog.Terminal()))
		}
		stage = &query.StageIndex
	}

	assignments, err := h.assignmentRepo.ListAvailable(ctx, stage)
	if err != nil {
		return nil, err
	}
	return &ListAvailableResponse{Assignments: toAssignmentViews(assignments, h.catalog)}, nil
}
