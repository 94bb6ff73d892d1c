package cutting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// JobStatus represents the lifecycle of a cutting job
type JobStatus string

const (
	JobStatusOpen      JobStatus = "OPEN"
	JobStatusCompleted JobStatus = "COMPLETED"
)

func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusOpen, JobStatusCompleted:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("invalid cutting job status: %s", s)
	}
}

// FabricUsage is roll length consumed by the job. Pieces optionally
// attributes the cut to sizes; a nil Pieces counts for every size.
type FabricUsage struct {
	ID         string
	RollID     string
	Amount     decimal.Decimal
	Pieces     shared.QuantityMap
	RecordedAt time.Time
}

// StockAllocation is finished stock pulled in instead of cutting
type StockAllocation struct {
	UsageID    string
	BatchID    string
	Quantities shared.QuantityMap
	RecordedAt time.Time
}

// Job converts fabric and existing stock into a cut-piece quantity for one
// order line, or for internal stock when orderLineID is empty.
//
// Invariants:
//   - target is fixed and has a positive total
//   - attributed pieces plus stock never exceed target, per size
//   - usage can only be recorded while Open
type Job struct {
	id           string
	orderLineID  string
	productID    string
	target       shared.QuantityMap
	workerID     shared.EmployeeID
	status       JobStatus
	fabricUsages []FabricUsage
	stockUsages  []StockAllocation
	createdAt    time.Time
	completedAt  *time.Time
	stageOneID   string
	version      int
}

// NewJob opens a cutting job for the given target
func NewJob(orderLineID, productID string, target shared.QuantityMap, worker shared.EmployeeID, at time.Time) (*Job, error) {
	if productID == "" {
		return nil, shared.NewValidationError("product_id", "cannot be empty")
	}
	if worker.IsZero() {
		return nil, shared.NewValidationError("worker_id", "cannot be empty")
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if target.Total() == 0 {
		return nil, shared.NewInvalidQuantityMapError("target total must be greater than zero")
	}

	return &Job{
		id:          shared.NewID(),
		orderLineID: orderLineID,
		productID:   productID,
		target:      target.Clone(),
		workerID:    worker,
		status:      JobStatusOpen,
		createdAt:   at,
	}, nil
}

// ReconstructJob rebuilds a job from persistence
func ReconstructJob(
	id string,
	orderLineID string,
	productID string,
	target shared.QuantityMap,
	workerID shared.EmployeeID,
	status JobStatus,
	fabricUsages []FabricUsage,
	stockUsages []StockAllocation,
	createdAt time.Time,
	completedAt *time.Time,
	stageOneID string,
	version int,
) *Job {
	return &Job{
		id:           id,
		orderLineID:  orderLineID,
		productID:    productID,
		target:       target,
		workerID:     workerID,
		status:       status,
		fabricUsages: fabricUsages,
		stockUsages:  stockUsages,
		createdAt:    createdAt,
		completedAt:  completedAt,
		stageOneID:   stageOneID,
		version:      version,
	}
}

func (j *Job) ID() string                   { return j.id }
func (j *Job) OrderLineID() string          { return j.orderLineID }
func (j *Job) ProductID() string            { return j.productID }
func (j *Job) Target() shared.QuantityMap   { return j.target.Clone() }
func (j *Job) WorkerID() shared.EmployeeID  { return j.workerID }
func (j *Job) Status() JobStatus            { return j.status }
func (j *Job) CreatedAt() time.Time         { return j.createdAt }
func (j *Job) CompletedAt() *time.Time      { return j.completedAt }
func (j *Job) StageOneAssignmentID() string { return j.stageOneID }
func (j *Job) Version() int                 { return j.version }
func (j *Job) BumpVersion()                 { j.version++ }
func (j *Job) IsInternal() bool             { return j.orderLineID == "" }
func (j *Job) IsOpen() bool                 { return j.status == JobStatusOpen }

func (j *Job) FabricUsages() []FabricUsage {
	usages := make([]FabricUsage, len(j.fabricUsages))
	copy(usages, j.fabricUsages)
	return usages
}

func (j *Job) StockUsages() []StockAllocation {
	usages := make([]StockAllocation, len(j.stockUsages))
	copy(usages, j.stockUsages)
	return usages
}

// FabricLength sums the roll length consumed by the job
func (j *Job) FabricLength() decimal.Decimal {
	total := decimal.Zero
	for _, u := range j.fabricUsages {
		total = total.Add(u.Amount)
	}
	return total
}

// StockCovered sums the quantities satisfied from finished stock
func (j *Job) StockCovered() shared.QuantityMap {
	covered := j.target.ZeroLike()
	for _, u := range j.stockUsages {
		covered = covered.Add(u.Quantities)
	}
	return covered
}

// Allocated sums size-attributed fabric pieces and stock usage
func (j *Job) Allocated() shared.QuantityMap {
	allocated := j.StockCovered()
	for _, u := range j.fabricUsages {
		allocated = allocated.Add(u.Pieces)
	}
	return allocated
}

// Unallocated is what may still be attributed, per size
func (j *Job) Unallocated() shared.QuantityMap {
	free := j.target.Clone()
	allocated := j.Allocated()
	for size := range free {
		free[size] -= allocated[size]
	}
	return free
}

func (j *Job) ensureOpen(action string) error {
	if j.status != JobStatusOpen {
		return shared.NewInvalidStateError("cutting job", j.id, string(j.status), action)
	}
	return nil
}

func (j *Job) checkAttribution(q shared.QuantityMap) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if err := q.CheckLabels(j.target); err != nil {
		return err
	}
	if size, requested, available, exceeded := q.Exceeding(j.Unallocated()); exceeded {
		return shared.NewOverAllocationError(size, requested, available)
	}
	return nil
}

// CheckFabricUsage validates a fabric usage before the roll is touched.
// The raw length is not constrained by the target; only the optional piece
// attribution is.
func (j *Job) CheckFabricUsage(pieces shared.QuantityMap) error {
	if err := j.ensureOpen("record fabric usage on"); err != nil {
		return err
	}
	if pieces == nil {
		return nil
	}
	return j.checkAttribution(pieces)
}

// RecordFabricUsage stores a usage already reserved on the roll ledger
func (j *Job) RecordFabricUsage(usageID, rollID string, amount decimal.Decimal, pieces shared.QuantityMap, at time.Time) error {
	if err := j.CheckFabricUsage(pieces); err != nil {
		return err
	}
	// nil means job-wide; an explicit map, even all zero, attributes only its sizes
	var attributed shared.QuantityMap
	if pieces != nil {
		attributed = pieces.Clone()
	}
	j.fabricUsages = append(j.fabricUsages, FabricUsage{
		ID:         usageID,
		RollID:     rollID,
		Amount:     amount,
		Pieces:     attributed,
		RecordedAt: at,
	})
	return nil
}

// CheckStockUsage validates a stock usage against the target before the batch is touched
func (j *Job) CheckStockUsage(q shared.QuantityMap) error {
	if err := j.ensureOpen("record stock usage on"); err != nil {
		return err
	}
	if err := j.checkAttribution(q); err != nil {
		return err
	}
	if q.Total() == 0 {
		return shared.NewInvalidQuantityMapError("stock usage must contain at least one piece")
	}
	return nil
}

// RecordStockUsage stores a stock usage already withdrawn from the batch
func (j *Job) RecordStockUsage(usageID, batchID string, q shared.QuantityMap, at time.Time) error {
	if err := j.CheckStockUsage(q); err != nil {
		return err
	}
	j.stockUsages = append(j.stockUsages, StockAllocation{
		UsageID:    usageID,
		BatchID:    batchID,
		Quantities: q.Clone(),
		RecordedAt: at,
	})
	return nil
}

// MissingSizes lists non-zero target sizes without any fabric or stock contribution
func (j *Job) MissingSizes() []string {
	jobWideFabric := false
	covered := j.StockCovered()
	for _, u := range j.fabricUsages {
		if u.Pieces == nil {
			jobWideFabric = true
			continue
		}
		covered = covered.Add(u.Pieces)
	}

	var missing []string
	for _, size := range j.target.Sizes() {
		if covered[size] > 0 {
			continue
		}
		if jobWideFabric {
			continue
		}
		missing = append(missing, size)
	}
	return missing
}

// Complete closes the job and returns what flows into the first stage:
// target minus stock-covered pieces. A zero result means stock covered
// everything and no stage assignment is needed.
func (j *Job) Complete(at time.Time) (shared.QuantityMap, error) {
	if err := j.ensureOpen("complete"); err != nil {
		return nil, err
	}
	if missing := j.MissingSizes(); len(missing) > 0 {
		return nil, NewIncompleteUsageError(j.id, missing)
	}

	remaining, err := j.target.Sub(j.StockCovered())
	if err != nil {
		return nil, err
	}

	j.status = JobStatusCompleted
	j.completedAt = &at
	return remaining, nil
}

// LinkStageOne records the stage assignment emitted on completion
func (j *Job) LinkStageOne(assignmentID string) {
	j.stageOneID = assignmentID
}
