package stock

import (
	"time"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// Usage records one substitution of finished stock into a production lineage.
// Stage index 0 is the cutting job; higher indexes are pipeline transitions.
type Usage struct {
	id            string
	sourceBatchID string
	jobID         string
	assignmentID  string
	orderLineID   string
	productID     string
	stageIndex    int
	quantities    shared.QuantityMap
	dispatch      shared.DispatchTracker
	createdAt     time.Time
}

// NewUsage records stock consumed by a job (assignmentID empty) or by a stage transition
func NewUsage(
	sourceBatchID string,
	jobID string,
	assignmentID string,
	orderLineID string,
	productID string,
	stageIndex int,
	quantities shared.QuantityMap,
	at time.Time,
) *Usage {
	state := shared.DispatchStateNone
	if orderLineID != "" {
		state = shared.DispatchStateCompleted
	}
	return &Usage{
		id:            shared.NewID(),
		sourceBatchID: sourceBatchID,
		jobID:         jobID,
		assignmentID:  assignmentID,
		orderLineID:   orderLineID,
		productID:     productID,
		stageIndex:    stageIndex,
		quantities:    quantities.Clone(),
		dispatch:      shared.NewDispatchTracker(state),
		createdAt:     at,
	}
}

func ReconstructUsage(
	id string,
	sourceBatchID string,
	jobID string,
	assignmentID string,
	orderLineID string,
	productID string,
	stageIndex int,
	quantities shared.QuantityMap,
	dispatchState shared.DispatchState,
	createdAt time.Time,
) *Usage {
	return &Usage{
		id:            id,
		sourceBatchID: sourceBatchID,
		jobID:         jobID,
		assignmentID:  assignmentID,
		orderLineID:   orderLineID,
		productID:     productID,
		stageIndex:    stageIndex,
		quantities:    quantities,
		dispatch:      shared.NewDispatchTracker(dispatchState),
		createdAt:     createdAt,
	}
}

func (u *Usage) ID() string                          { return u.id }
func (u *Usage) SourceBatchID() string               { return u.sourceBatchID }
func (u *Usage) JobID() string                       { return u.jobID }
func (u *Usage) AssignmentID() string                { return u.assignmentID }
func (u *Usage) OrderLineID() string                 { return u.orderLineID }
func (u *Usage) ProductID() string                   { return u.productID }
func (u *Usage) StageIndex() int                     { return u.stageIndex }
func (u *Usage) Quantities() shared.QuantityMap      { return u.quantities.Clone() }
func (u *Usage) DispatchState() shared.DispatchState { return u.dispatch.DispatchState() }
func (u *Usage) Dispatch() *shared.DispatchTracker   { return &u.dispatch }
func (u *Usage) CreatedAt() time.Time                { return u.createdAt }
