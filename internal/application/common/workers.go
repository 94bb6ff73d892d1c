package common

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ValidateWorkers checks that every worker is an active employee.
// A nil directory disables the check.
func ValidateWorkers(ctx context.Context, directory EmployeeDirectory, workers ...shared.EmployeeID) error {
	if directory == nil || len(workers) == 0 {
		return nil
	}

	employees, err := directory.ListEmployees(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}

	active := make(map[string]bool, len(employees))
	for _, e := range employees {
		active[e.ID] = e.Active
	}
	for _, w := range workers {
		isActive, known := active[w.String()]
		if !known {
			return shared.NewValidationError("worker_id", fmt.Sprintf("unknown employee %s", w))
		}
		if !isActive {
			return shared.NewValidationError("worker_id", fmt.Sprintf("employee %s is inactive", w))
		}
	}
	return nil
}
