package stock

import (
	"time"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// Batch is size-keyed finished stock of one product. A batch owned by an order
// line is the output of that line's terminal stage and carries a dispatch
// state; a batch without an order line is internal stock available for
// substitution.
//
// Invariants:
//   - available never goes negative and never exceeds produced
//   - produced is fixed at creation
type Batch struct {
	id                 string
	productID          string
	orderLineID        string
	sourceAssignmentID string
	produced           shared.QuantityMap
	available          shared.QuantityMap
	dispatch           shared.DispatchTracker
	createdAt          time.Time
	updatedAt          time.Time
	version            int
}

// NewProducedBatch creates the stock emitted by finalizing a terminal stage
func NewProducedBatch(productID, orderLineID, sourceAssignmentID string, quantities shared.QuantityMap, at time.Time) (*Batch, error) {
	if productID == "" {
		return nil, shared.NewValidationError("product_id", "cannot be empty")
	}
	if err := quantities.Validate(); err != nil {
		return nil, err
	}
	if quantities.Total() == 0 {
		return nil, shared.NewValidationError("quantities", "finished batch cannot be empty")
	}

	state := shared.DispatchStateNone
	if orderLineID != "" {
		state = shared.DispatchStateCompleted
	}

	return &Batch{
		id:                 shared.NewID(),
		productID:          productID,
		orderLineID:        orderLineID,
		sourceAssignmentID: sourceAssignmentID,
		produced:           quantities.Clone(),
		available:          quantities.Clone(),
		dispatch:           shared.NewDispatchTracker(state),
		createdAt:          at,
		updatedAt:          at,
	}, nil
}

// NewOpeningBatch loads internal stock that existed before the engine
func NewOpeningBatch(productID string, quantities shared.QuantityMap, at time.Time) (*Batch, error) {
	return NewProducedBatch(productID, "", "", quantities, at)
}

// ReconstructBatch rebuilds a batch from persistence
func ReconstructBatch(
	id string,
	productID string,
	orderLineID string,
	sourceAssignmentID string,
	produced shared.QuantityMap,
	available shared.QuantityMap,
	dispatchState shared.DispatchState,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *Batch {
	return &Batch{
		id:                 id,
		productID:          productID,
		orderLineID:        orderLineID,
		sourceAssignmentID: sourceAssignmentID,
		produced:           produced,
		available:          available,
		dispatch:           shared.NewDispatchTracker(dispatchState),
		createdAt:          createdAt,
		updatedAt:          updatedAt,
		version:            version,
	}
}

func (b *Batch) ID() string                          { return b.id }
func (b *Batch) ProductID() string                   { return b.productID }
func (b *Batch) OrderLineID() string                 { return b.orderLineID }
func (b *Batch) SourceAssignmentID() string          { return b.sourceAssignmentID }
func (b *Batch) Produced() shared.QuantityMap        { return b.produced.Clone() }
func (b *Batch) Available() shared.QuantityMap       { return b.available.Clone() }
func (b *Batch) DispatchState() shared.DispatchState { return b.dispatch.DispatchState() }
func (b *Batch) CreatedAt() time.Time                { return b.createdAt }
func (b *Batch) UpdatedAt() time.Time                { return b.updatedAt }
func (b *Batch) Version() int                        { return b.version }
func (b *Batch) BumpVersion()                        { b.version++ }
func (b *Batch) IsInternal() bool                    { return b.orderLineID == "" }
func (b *Batch) Dispatch() *shared.DispatchTracker   { return &b.dispatch }

// CanSubstituteFor reports whether the batch may feed a lineage of the product
func (b *Batch) CanSubstituteFor(productID string) error {
	if !b.IsInternal() {
		return shared.NewValidationError("stock_batch_id", "batch "+b.id+" belongs to an order line and cannot be used as substitution stock")
	}
	if b.productID != productID {
		return shared.NewValidationError("stock_batch_id", "batch "+b.id+" holds product "+b.productID+", not "+productID)
	}
	return nil
}

// Withdraw decrements available stock. Any size above what is available
// fails the whole withdrawal with OverAllocation.
func (b *Batch) Withdraw(quantities shared.QuantityMap, at time.Time) error {
	if err := quantities.Validate(); err != nil {
		return err
	}
	if size, requested, available, exceeded := quantities.Exceeding(b.available); exceeded {
		return shared.NewOverAllocationError(size, requested, available)
	}

	next, err := b.available.Sub(quantities)
	if err != nil {
		return err
	}
	b.available = next
	b.updatedAt = at
	return nil
}
