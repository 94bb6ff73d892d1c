package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
)

// GetAssignmentQuery fetches one stage assignment
type GetAssignmentQuery struct {
	AssignmentID string
}

// GetAssignmentHandler handles the GetAssignment query
type GetAssignmentHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	catalog        *pipeline.StageCatalog
}

// NewGetAssignmentHandler creates a new GetAssignmentHandler
func NewGetAssignmentHandler(assignmentRepo pipeline.AssignmentRepository, catalog *pipeline.StageCatalog) *GetAssignmentHandler {
	return &GetAssignmentHandler{assignmentRepo: assignmentRepo, catalog: catalog}
}

// Handle executes the GetAssignment query and returns an *AssignmentView
func (h *GetAssignmentHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetAssignmentQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetAssignmentQuery")
	}

	assignment, err := h.assignmentRepo.FindByID(ctx, query.AssignmentID)
	if err != nil {
		return nil, err
	}

	view := ToAssignmentView(assignment, h.catalog)
	return &view, nil
}
