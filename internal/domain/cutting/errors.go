package cutting

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// IncompleteUsageError lists target sizes with neither fabric nor stock recorded
type IncompleteUsageError struct {
	*shared.DomainError
	JobID        string
	MissingSizes []string
}

func NewIncompleteUsageError(jobID string, missing []string) *IncompleteUsageError {
	return &IncompleteUsageError{
		DomainError: shared.NewDomainError(shared.CodeIncompleteUsage,
			fmt.Sprintf("cutting job %s has no fabric or stock usage for sizes %s", jobID, strings.Join(missing, ", "))),
		JobID:        jobID,
		MissingSizes: missing,
	}
}

func (e *IncompleteUsageError) Details() map[string]interface{} {
	return map[string]interface{}{
		"job_id":        e.JobID,
		"missing_sizes": e.MissingSizes,
	}
}
