package dispatch

import (
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

func NewNothingToPackError(orderID string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeNothingToPack,
		fmt.Sprintf("order %s has no completed quantity waiting to be packed", orderID))
}

func NewNothingPackedError(orderID string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeNothingPacked,
		fmt.Sprintf("order %s has no packed quantity to dispatch", orderID))
}
