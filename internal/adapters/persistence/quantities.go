package persistence

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// quantitiesToJSON stores a quantity map as a JSON document, keeping zero
// entries so the size labels survive
func quantitiesToJSON(q shared.QuantityMap) datatypes.JSON {
	if q == nil {
		q = shared.QuantityMap{}
	}
	data, _ := json.Marshal(map[string]int(q))
	return datatypes.JSON(data)
}

// optionalQuantitiesToJSON stores nil as SQL NULL
func optionalQuantitiesToJSON(q shared.QuantityMap) datatypes.JSON {
	if q == nil {
		return nil
	}
	return quantitiesToJSON(q)
}

func jsonToQuantities(data datatypes.JSON) (shared.QuantityMap, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var q map[string]int
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to decode quantity map: %w", err)
	}
	return shared.QuantityMap(q), nil
}

// requiredQuantities decodes a non-null column, returning an empty map for null
func requiredQuantities(data datatypes.JSON) (shared.QuantityMap, error) {
	q, err := jsonToQuantities(data)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = shared.QuantityMap{}
	}
	return q, nil
}
