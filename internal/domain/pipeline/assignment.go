package pipeline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// AssignmentStatus is the state of one stage assignment
type AssignmentStatus string

const (
	// AssignmentStatusActive - workers (or a subcontractor) hold the pieces
	AssignmentStatusActive AssignmentStatus = "ACTIVE"

	// AssignmentStatusProcessedAwaitingNext - work done, remaining may be pushed forward
	AssignmentStatusProcessedAwaitingNext AssignmentStatus = "PROCESSED_AWAITING_NEXT"

	// AssignmentStatusCompleted - finalized into finished stock at the terminal stage
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
)

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch AssignmentStatus(s) {
	case AssignmentStatusActive, AssignmentStatusProcessedAwaitingNext, AssignmentStatusCompleted:
		return AssignmentStatus(s), nil
	default:
		return "", fmt.Errorf("invalid assignment status: %s", s)
	}
}

// WorkerAllocation is the share of a transition given to one employee
type WorkerAllocation struct {
	ID           string
	EmployeeID   shared.EmployeeID
	Quantities   shared.QuantityMap
	RatePerPiece decimal.Decimal
}

// NewWorkerAllocation validates one worker's share
func NewWorkerAllocation(employee shared.EmployeeID, quantities shared.QuantityMap, rate decimal.Decimal) (WorkerAllocation, error) {
	if employee.IsZero() {
		return WorkerAllocation{}, shared.NewValidationError("employee_id", "cannot be empty")
	}
	if err := quantities.Validate(); err != nil {
		return WorkerAllocation{}, err
	}
	if quantities.Total() == 0 {
		return WorkerAllocation{}, shared.NewInvalidQuantityMapError(
			fmt.Sprintf("allocation for employee %s has no pieces", employee))
	}
	if rate.IsNegative() {
		return WorkerAllocation{}, shared.NewValidationError("rate_per_piece", "cannot be negative")
	}
	return WorkerAllocation{
		ID:           shared.NewID(),
		EmployeeID:   employee,
		Quantities:   quantities.Clone(),
		RatePerPiece: rate,
	}, nil
}

// Assignment is one node of a cutting job's downstream lineage.
//
// Invariants:
//   - remaining never increases; it is decremented in place by Assign and
//     SendExternal and is never recomputed from children
//   - every allocation out of remaining fails as a whole if any size exceeds it
//   - a zero remaining is terminal regardless of status
type Assignment struct {
	id            string
	jobID         string
	parentID      string
	orderLineID   string
	productID     string
	stageIndex    int
	remaining     shared.QuantityMap
	allocations   []WorkerAllocation
	external      *ExternalJobMeta
	status        AssignmentStatus
	autoFulfilled bool
	forwarded     bool
	createdAt     time.Time
	updatedAt     time.Time
	version       int
}

// Lineage identifies the job a new assignment descends from
type Lineage struct {
	JobID       string
	OrderLineID string
	ProductID   string
}

// NewStageOneAssignment emits the cutting output. Cutting is the work of
// stage 1, so the assignment is immediately ready to move forward.
func NewStageOneAssignment(lineage Lineage, remaining shared.QuantityMap, at time.Time) (*Assignment, error) {
	if lineage.JobID == "" {
		return nil, shared.NewValidationError("job_id", "cannot be empty")
	}
	if err := remaining.Validate(); err != nil {
		return nil, err
	}
	if remaining.Total() == 0 {
		return nil, shared.NewInvalidQuantityMapError("stage 1 needs at least one piece")
	}
	return &Assignment{
		id:          shared.NewID(),
		jobID:       lineage.JobID,
		orderLineID: lineage.OrderLineID,
		productID:   lineage.ProductID,
		stageIndex:  1,
		remaining:   remaining.Clone(),
		status:      AssignmentStatusProcessedAwaitingNext,
		createdAt:   at,
		updatedAt:   at,
	}, nil
}

// ReconstructAssignment rebuilds an assignment from persistence
func ReconstructAssignment(
	id string,
	lineage Lineage,
	parentID string,
	stageIndex int,
	remaining shared.QuantityMap,
	allocations []WorkerAllocation,
	external *ExternalJobMeta,
	status AssignmentStatus,
	autoFulfilled bool,
	forwarded bool,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *Assignment {
	return &Assignment{
		id:            id,
		jobID:         lineage.JobID,
		parentID:      parentID,
		orderLineID:   lineage.OrderLineID,
		productID:     lineage.ProductID,
		stageIndex:    stageIndex,
		remaining:     remaining,
		allocations:   allocations,
		external:      external,
		status:        status,
		autoFulfilled: autoFulfilled,
		forwarded:     forwarded,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		version:       version,
	}
}

func (a *Assignment) ID() string                    { return a.id }
func (a *Assignment) JobID() string                 { return a.jobID }
func (a *Assignment) ParentID() string              { return a.parentID }
func (a *Assignment) OrderLineID() string           { return a.orderLineID }
func (a *Assignment) ProductID() string             { return a.productID }
func (a *Assignment) StageIndex() int               { return a.stageIndex }
func (a *Assignment) Remaining() shared.QuantityMap { return a.remaining.Clone() }
func (a *Assignment) External() *ExternalJobMeta    { return a.external }
func (a *Assignment) IsExternal() bool              { return a.external != nil }
func (a *Assignment) Status() AssignmentStatus      { return a.status }
func (a *Assignment) AutoFulfilled() bool           { return a.autoFulfilled }
func (a *Assignment) Forwarded() bool               { return a.forwarded }
func (a *Assignment) CreatedAt() time.Time          { return a.createdAt }
func (a *Assignment) UpdatedAt() time.Time          { return a.updatedAt }
func (a *Assignment) Version() int                  { return a.version }
func (a *Assignment) BumpVersion()                  { a.version++ }

func (a *Assignment) Lineage() Lineage {
	return Lineage{JobID: a.jobID, OrderLineID: a.orderLineID, ProductID: a.productID}
}

func (a *Assignment) Allocations() []WorkerAllocation {
	allocations := make([]WorkerAllocation, len(a.allocations))
	copy(allocations, a.allocations)
	return allocations
}

// WorkPerformed sums the pieces handed to workers at this stage
func (a *Assignment) WorkPerformed() shared.QuantityMap {
	performed := shared.QuantityMap{}
	for _, alloc := range a.allocations {
		performed = performed.Add(alloc.Quantities)
	}
	return performed
}

// IsExhausted reports an all-zero remaining
func (a *Assignment) IsExhausted() bool {
	return a.remaining.IsZero()
}

// IsAvailable reports whether remaining may be pushed to the next stage or finalized
func (a *Assignment) IsAvailable() bool {
	if a.status != AssignmentStatusProcessedAwaitingNext || a.IsExhausted() {
		return false
	}
	return a.external == nil || a.external.IsFullyReceived()
}

func (a *Assignment) invalidState(action string) error {
	return shared.NewInvalidStateError("stage assignment", a.id, string(a.status), action)
}

// ensureForwardable guards every operation that moves remaining onward
func (a *Assignment) ensureForwardable(action string) error {
	if a.status != AssignmentStatusProcessedAwaitingNext {
		return a.invalidState(action)
	}
	if a.external != nil && !a.external.IsFullyReceived() {
		return shared.NewInvalidStateError("stage assignment", a.id, "AWAITING_RECEIPT", action)
	}
	return nil
}

// AssignRequest is a batch of worker allocations plus optional stock
// substitution, validated together against remaining.
type AssignRequest struct {
	Allocations []WorkerAllocation
	StockUsage  shared.QuantityMap
}

// AssignResult describes a committed transition
type AssignResult struct {
	// Child is the new assignment at stage+1; nil when only stock was used
	Child *Assignment

	// StockUsed is what the caller must withdraw from the stock batch
	StockUsed shared.QuantityMap

	// AutoFulfilled is set when stock alone covered everything the assignment
	// ever held: this call takes the rest and no earlier call forwarded pieces
	AutoFulfilled bool
}

// Requested sums allocations and stock, per size
func (r AssignRequest) Requested() shared.QuantityMap {
	requested := shared.QuantityMap{}
	for _, alloc := range r.Allocations {
		requested = requested.Add(alloc.Quantities)
	}
	return requested.Add(r.StockUsage)
}

// Assign pushes part or all of remaining to the next stage.
//
// Every allocation and the stock usage are validated against remaining first;
// only then is remaining decremented and one child created holding the sum of
// the worker allocations. Stock-covered pieces get no child. The transition is
// auto-fulfilled only when stock covered the assignment's full quantity, so a
// stock-only call after workers or a subcontractor took a share is not.
func (a *Assignment) Assign(req AssignRequest, catalog *StageCatalog, at time.Time) (*AssignResult, error) {
	if err := a.ensureForwardable("assign"); err != nil {
		return nil, err
	}
	if a.stageIndex >= catalog.Terminal() {
		return nil, shared.NewInvalidStateError("stage assignment", a.id,
			fmt.Sprintf("TERMINAL_STAGE_%d", a.stageIndex), "assign beyond the terminal stage")
	}

	stock := req.StockUsage
	if stock == nil {
		stock = shared.QuantityMap{}
	}
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	if err := stock.CheckLabels(a.remaining); err != nil {
		return nil, err
	}
	workers := shared.QuantityMap{}
	for _, alloc := range req.Allocations {
		if err := alloc.Quantities.CheckLabels(a.remaining); err != nil {
			return nil, err
		}
		workers = workers.Add(alloc.Quantities)
	}

	requested := workers.Add(stock)
	if requested.Total() == 0 {
		return nil, shared.NewInvalidQuantityMapError("assignment must move at least one piece")
	}
	if size, qty, available, exceeded := requested.Exceeding(a.remaining); exceeded {
		return nil, shared.NewOverAssignmentError(size, qty, available)
	}

	before := a.remaining.Clone()
	next, err := a.remaining.Sub(requested)
	if err != nil {
		return nil, err
	}

	result := &AssignResult{StockUsed: stock.Clone()}
	if workers.Total() > 0 {
		result.Child = &Assignment{
			id:          shared.NewID(),
			jobID:       a.jobID,
			parentID:    a.id,
			orderLineID: a.orderLineID,
			productID:   a.productID,
			stageIndex:  a.stageIndex + 1,
			remaining:   a.remaining.ZeroLike().Add(workers),
			allocations: req.Allocations,
			status:      AssignmentStatusActive,
			createdAt:   at,
			updatedAt:   at,
		}
		a.forwarded = true
	} else if stock.Equal(before) && !a.forwarded {
		result.AutoFulfilled = true
		a.autoFulfilled = true
	}

	a.remaining = next
	a.updatedAt = at
	return result, nil
}

// SendExternal hands part of remaining to a subcontractor as the next stage
func (a *Assignment) SendExternal(subcontractor string, rate decimal.Decimal, sent shared.QuantityMap, catalog *StageCatalog, at time.Time) (*Assignment, error) {
	if err := a.ensureForwardable("send"); err != nil {
		return nil, err
	}
	if a.stageIndex >= catalog.Terminal() {
		return nil, shared.NewInvalidStateError("stage assignment", a.id,
			fmt.Sprintf("TERMINAL_STAGE_%d", a.stageIndex), "send beyond the terminal stage")
	}
	if subcontractor == "" {
		return nil, shared.NewValidationError("subcontractor", "cannot be empty")
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("rate_per_piece", "cannot be negative")
	}
	if err := sent.Validate(); err != nil {
		return nil, err
	}
	if err := sent.CheckLabels(a.remaining); err != nil {
		return nil, err
	}
	if sent.Total() == 0 {
		return nil, shared.NewInvalidQuantityMapError("send must contain at least one piece")
	}
	if size, qty, available, exceeded := sent.Exceeding(a.remaining); exceeded {
		return nil, shared.NewOverAssignmentError(size, qty, available)
	}

	next, err := a.remaining.Sub(sent)
	if err != nil {
		return nil, err
	}
	childRemaining := a.remaining.ZeroLike().Add(sent)

	child := &Assignment{
		id:          shared.NewID(),
		jobID:       a.jobID,
		parentID:    a.id,
		orderLineID: a.orderLineID,
		productID:   a.productID,
		stageIndex:  a.stageIndex + 1,
		remaining:   childRemaining,
		external:    NewExternalJobMeta(subcontractor, rate, childRemaining, at),
		status:      AssignmentStatusActive,
		createdAt:   at,
		updatedAt:   at,
	}

	a.remaining = next
	a.forwarded = true
	a.updatedAt = at
	return child, nil
}

// Receive records a subcontractor delivery and returns the payable it earns.
// The assignment becomes ProcessedAwaitingNext once everything sent is back.
func (a *Assignment) Receive(delta shared.QuantityMap, at time.Time) (*PayableEvent, error) {
	if a.external == nil {
		return nil, shared.NewInvalidStateError("stage assignment", a.id, "IN_HOUSE", "receive on")
	}
	if a.status == AssignmentStatusCompleted {
		return nil, a.invalidState("receive on")
	}
	if err := a.external.Receive(delta); err != nil {
		return nil, err
	}

	if a.external.IsFullyReceived() && a.status == AssignmentStatusActive {
		a.status = AssignmentStatusProcessedAwaitingNext
	}
	a.updatedAt = at

	return NewPayableEvent(a.id, a.external.subcontractor, delta, a.external.ratePerPiece, at), nil
}

// CompleteStage marks in-house work as done
func (a *Assignment) CompleteStage(at time.Time) error {
	if a.external != nil {
		return shared.NewInvalidStateError("stage assignment", a.id, string(a.status), "complete external")
	}
	if a.status != AssignmentStatusActive {
		return a.invalidState("complete")
	}
	if a.WorkPerformed().Total() == 0 {
		return shared.NewInvalidStateError("stage assignment", a.id, string(a.status), "complete without performed work")
	}
	a.status = AssignmentStatusProcessedAwaitingNext
	a.updatedAt = at
	return nil
}

// Finalize converts the full remaining at the terminal stage into finished
// stock. It returns the quantity the caller must book as a stock batch.
func (a *Assignment) Finalize(catalog *StageCatalog, at time.Time) (shared.QuantityMap, error) {
	if err := a.ensureForwardable("finalize"); err != nil {
		return nil, err
	}
	if a.stageIndex != catalog.Terminal() {
		return nil, shared.NewInvalidStateError("stage assignment", a.id,
			fmt.Sprintf("STAGE_%d_OF_%d", a.stageIndex, catalog.Terminal()), "finalize before the terminal stage")
	}
	if a.IsExhausted() {
		return nil, shared.NewInvalidStateError("stage assignment", a.id, "EXHAUSTED", "finalize")
	}

	produced := a.remaining.Clone()
	a.remaining = a.remaining.ZeroLike()
	a.status = AssignmentStatusCompleted
	a.updatedAt = at
	return produced, nil
}
