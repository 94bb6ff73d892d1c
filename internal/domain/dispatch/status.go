package dispatch

import "github.com/andrescamacho/garmentflow/internal/domain/shared"

// PhaseKind orders the progress of an order line
type PhaseKind int

const (
	PhasePending PhaseKind = iota
	PhaseInProduction
	PhaseCompleted
	PhasePacked
	PhaseDelivered
)

// Phase is the progress of one line, or the minimum across an order's lines
type Phase struct {
	Kind       PhaseKind
	StageIndex int
	StageName  string
}

// Name renders the phase as shown to clients: a stage name while in production
func (p Phase) Name() string {
	switch p.Kind {
	case PhasePending:
		return "PENDING"
	case PhaseInProduction:
		return p.StageName
	case PhaseCompleted:
		return "COMPLETED"
	case PhasePacked:
		return "PACKED"
	default:
		return "DELIVERED"
	}
}

// Less reports whether p is behind other
func (p Phase) Less(other Phase) bool {
	if p.Kind != other.Kind {
		return p.Kind < other.Kind
	}
	return p.StageIndex < other.StageIndex
}

// StageNamer resolves a stage index to its configured name
type StageNamer interface {
	Name(index int) string
}

// LineProgress is the production state of one order line gathered by the caller
type LineProgress struct {
	LineID string

	// JobStarted is false until a cutting job exists for the line
	JobStarted   bool
	JobCompleted bool

	// OpenStages lists stage indexes of assignments that still hold pieces
	OpenStages []int

	// Shipments is the dispatch state of every finished batch and stock usage of the line
	Shipments []shared.DispatchState
}

// LinePhase derives a line's phase. An open cutting job counts as stage 1.
func LinePhase(progress LineProgress, stages StageNamer) Phase {
	if !progress.JobStarted {
		return Phase{Kind: PhasePending}
	}
	if !progress.JobCompleted {
		return Phase{Kind: PhaseInProduction, StageIndex: 1, StageName: stages.Name(1)}
	}
	if len(progress.OpenStages) > 0 {
		lowest := progress.OpenStages[0]
		for _, idx := range progress.OpenStages[1:] {
			if idx < lowest {
				lowest = idx
			}
		}
		return Phase{Kind: PhaseInProduction, StageIndex: lowest, StageName: stages.Name(lowest)}
	}

	lowestRank := shared.DispatchStateDelivered.Rank()
	for _, state := range progress.Shipments {
		if rank := state.Rank(); rank < lowestRank {
			lowestRank = rank
		}
	}
	switch {
	case len(progress.Shipments) == 0 || lowestRank <= shared.DispatchStateCompleted.Rank():
		return Phase{Kind: PhaseCompleted}
	case lowestRank == shared.DispatchStatePacked.Rank():
		return Phase{Kind: PhasePacked}
	default:
		return Phase{Kind: PhaseDelivered}
	}
}

// OrderPhase is the minimum phase across lines
func OrderPhase(lines []Phase) Phase {
	if len(lines) == 0 {
		return Phase{Kind: PhasePending}
	}
	lowest := lines[0]
	for _, p := range lines[1:] {
		if p.Less(lowest) {
			lowest = p
		}
	}
	return lowest
}

// Shipment is any record carrying order-owned finished quantity
type Shipment interface {
	Dispatch() *shared.DispatchTracker
}

// Pack moves every Completed shipment of the order to Packed and returns the
// changed ones. Calling it again without new completions fails with
// NothingToPack and changes nothing.
func Pack(orderID string, shipments []Shipment) ([]Shipment, error) {
	var packed []Shipment
	for _, s := range shipments {
		if s.Dispatch().DispatchState() == shared.DispatchStateCompleted {
			packed = append(packed, s)
		}
	}
	if len(packed) == 0 {
		return nil, NewNothingToPackError(orderID)
	}
	for _, s := range packed {
		s.Dispatch().Pack()
	}
	return packed, nil
}

// Deliver moves every Packed shipment of the order to Delivered
func Deliver(orderID string, shipments []Shipment) ([]Shipment, error) {
	var delivered []Shipment
	for _, s := range shipments {
		if s.Dispatch().DispatchState() == shared.DispatchStatePacked {
			delivered = append(delivered, s)
		}
	}
	if len(delivered) == 0 {
		return nil, NewNothingPackedError(orderID)
	}
	for _, s := range delivered {
		s.Dispatch().Deliver()
	}
	return delivered, nil
}
