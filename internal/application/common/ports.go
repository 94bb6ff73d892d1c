package common

import (
	"context"

	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
)

// Transactor runs fn inside one database transaction. Repositories called with
// the context handed to fn join that transaction; nested calls reuse it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Employee is a worker known to the employee directory
type Employee struct {
	ID     string
	Name   string
	Role   string
	Active bool
}

// EmployeeDirectory is the collaborating service that owns worker identities
type EmployeeDirectory interface {
	ListEmployees(ctx context.Context, role string) ([]Employee, error)
}

// PayablePublisher forwards payable events to downstream consumers.
// Publishing happens after commit; the outbox row is the source of truth.
type PayablePublisher interface {
	PublishPayable(ctx context.Context, event *pipeline.PayableEvent) error
}
