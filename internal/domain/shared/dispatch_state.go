package shared

import "fmt"

// DispatchState tracks order-owned finished quantity after production.
// Internal stock carries no dispatch state.
type DispatchState string

const (
	DispatchStateNone      DispatchState = ""
	DispatchStateCompleted DispatchState = "COMPLETED"
	DispatchStatePacked    DispatchState = "PACKED"
	DispatchStateDelivered DispatchState = "DELIVERED"
)

// ParseDispatchState converts a persisted string to a DispatchState
func ParseDispatchState(s string) (DispatchState, error) {
	switch DispatchState(s) {
	case DispatchStateNone, DispatchStateCompleted, DispatchStatePacked, DispatchStateDelivered:
		return DispatchState(s), nil
	default:
		return "", fmt.Errorf("invalid dispatch state: %s", s)
	}
}

// Rank orders states along Completed → Packed → Delivered
func (s DispatchState) Rank() int {
	switch s {
	case DispatchStateCompleted:
		return 1
	case DispatchStatePacked:
		return 2
	case DispatchStateDelivered:
		return 3
	default:
		return 0
	}
}

func (s DispatchState) String() string {
	if s == DispatchStateNone {
		return "NONE"
	}
	return string(s)
}

// DispatchTracker is embedded by every record that carries order-owned quantity
type DispatchTracker struct {
	state DispatchState
}

func NewDispatchTracker(state DispatchState) DispatchTracker {
	return DispatchTracker{state: state}
}

func (t *DispatchTracker) DispatchState() DispatchState {
	return t.state
}

// Pack moves Completed quantity to Packed; returns false if nothing changed
func (t *DispatchTracker) Pack() bool {
	if t.state != DispatchStateCompleted {
		return false
	}
	t.state = DispatchStatePacked
	return true
}

// Deliver moves Packed quantity to Delivered; returns false if nothing changed
func (t *DispatchTracker) Deliver() bool {
	if t.state != DispatchStatePacked {
		return false
	}
	t.state = DispatchStateDelivered
	return true
}
