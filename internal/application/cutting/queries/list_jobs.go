package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ListJobsQuery lists cutting jobs, optionally narrowed by status
type ListJobsQuery struct {
	Status string
}

type ListJobsResponse struct {
	Jobs []JobView `json:"jobs"`
}

// ListJobsHandler handles the ListJobs query
type ListJobsHandler struct {
	jobRepo cutting.JobRepository
}

// NewListJobsHandler creates a new ListJobsHandler
func NewListJobsHandler(jobRepo cutting.JobRepository) *ListJobsHandler {
	return &ListJobsHandler{jobRepo: jobRepo}
}

// Handle executes the ListJobs query
func (h *ListJobsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListJobsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListJobsQuery")
	}

	var status *cutting.JobStatus
	if query.Status != "" {
		parsed, err := cutting.ParseJobStatus(query.Status)
		if err != nil {
			return nil, shared.NewValidationError("status", err.Error())
		}
		status = &parsed
	}

	jobs, err := h.jobRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, toJobView(job))
	}
	return &ListJobsResponse{Jobs: views}, nil
}
