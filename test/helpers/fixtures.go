package helpers

import (
	"time"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// TestEpoch is the fixed starting time of the mock clock
var TestEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// Sizes builds a quantity map from alternating size/quantity pairs:
// Sizes("S", 10, "M", 20)
func Sizes(pairs ...interface{}) shared.QuantityMap {
	q := make(shared.QuantityMap, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		q[pairs[i].(string)] = pairs[i+1].(int)
	}
	return q
}
