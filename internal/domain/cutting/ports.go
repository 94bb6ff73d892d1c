package cutting

import "context"

// JobRepository persists cutting jobs with their usage records
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id string) (*Job, error)

	// FindForUpdate loads a job and locks its row for the surrounding transaction
	FindForUpdate(ctx context.Context, id string) (*Job, error)

	// Update writes back status and appends new usage records under a version guard
	Update(ctx context.Context, job *Job) error

	FindByOrderLines(ctx context.Context, orderLineIDs []string) ([]*Job, error)
	List(ctx context.Context, status *JobStatus) ([]*Job, error)
}
