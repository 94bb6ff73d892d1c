package stock

import "github.com/andrescamacho/garmentflow/internal/domain/shared"

// ResolveSubstitution returns the largest quantity that finished stock can
// contribute towards a requirement:
//
//	usable[size] = min(required[size] - alreadyProduced[size], available[size])
//
// floored at zero. The result carries the labels of required and is never
// greater than either input. Nothing is mutated; callers commit through the
// owning operation.
func ResolveSubstitution(required, available, alreadyProduced shared.QuantityMap) shared.QuantityMap {
	usable := make(shared.QuantityMap, len(required))
	for size, qty := range required {
		need := qty - alreadyProduced[size]
		if have := available[size]; have < need {
			need = have
		}
		if need < 0 {
			need = 0
		}
		usable[size] = need
	}
	return usable
}
