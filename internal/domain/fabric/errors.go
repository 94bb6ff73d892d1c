package fabric

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// InsufficientFabricError is returned when a reservation exceeds a roll's remaining length
type InsufficientFabricError struct {
	*shared.DomainError
	RollID    string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func NewInsufficientFabricError(rollID string, requested, remaining decimal.Decimal) *InsufficientFabricError {
	return &InsufficientFabricError{
		DomainError: shared.NewDomainError(shared.CodeInsufficientFabric,
			fmt.Sprintf("roll %s has %s remaining, cannot reserve %s", rollID, remaining.String(), requested.String())),
		RollID:    rollID,
		Requested: requested,
		Remaining: remaining,
	}
}

// Details exposes the shortfall for transport adapters
func (e *InsufficientFabricError) Details() map[string]interface{} {
	return map[string]interface{}{
		"roll_id":   e.RollID,
		"requested": e.Requested.String(),
		"remaining": e.Remaining.String(),
	}
}
