package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// QuantityMap maps a size label to a piece count.
//
// A zero entry is equivalent to absence for comparison and totals, but zero
// entries are kept when present so that the label set of a lineage survives
// decrements to zero.
type QuantityMap map[string]int

// NewQuantityMap validates the shape of a size map and returns a copy
func NewQuantityMap(values map[string]int) (QuantityMap, error) {
	q := make(QuantityMap, len(values))
	for size, qty := range values {
		q[size] = qty
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks that every label is non-empty and every quantity is non-negative
func (q QuantityMap) Validate() error {
	for size, qty := range q {
		if strings.TrimSpace(size) == "" {
			return NewInvalidQuantityMapError("size label cannot be empty")
		}
		if qty < 0 {
			return NewInvalidQuantityMapError(fmt.Sprintf("size %s has negative quantity %d", size, qty))
		}
	}
	return nil
}

// Get returns the quantity for a size (0 if absent)
func (q QuantityMap) Get(size string) int {
	return q[size]
}

// Total returns the sum of all quantities
func (q QuantityMap) Total() int {
	total := 0
	for _, qty := range q {
		total += qty
	}
	return total
}

// IsZero reports whether every entry is zero
func (q QuantityMap) IsZero() bool {
	for _, qty := range q {
		if qty != 0 {
			return false
		}
	}
	return true
}

// Labels returns every label present, including zero entries, sorted
func (q QuantityMap) Labels() []string {
	labels := make([]string, 0, len(q))
	for size := range q {
		labels = append(labels, size)
	}
	sort.Strings(labels)
	return labels
}

// Sizes returns the labels with a non-zero quantity, sorted
func (q QuantityMap) Sizes() []string {
	sizes := make([]string, 0, len(q))
	for size, qty := range q {
		if qty != 0 {
			sizes = append(sizes, size)
		}
	}
	sort.Strings(sizes)
	return sizes
}

// Clone returns a copy that keeps zero entries
func (q QuantityMap) Clone() QuantityMap {
	c := make(QuantityMap, len(q))
	for size, qty := range q {
		c[size] = qty
	}
	return c
}

// Normalize returns a copy with zero entries removed
func (q QuantityMap) Normalize() QuantityMap {
	n := make(QuantityMap, len(q))
	for size, qty := range q {
		if qty != 0 {
			n[size] = qty
		}
	}
	return n
}

// ZeroLike returns a map with the same labels and every quantity set to zero
func (q QuantityMap) ZeroLike() QuantityMap {
	z := make(QuantityMap, len(q))
	for size := range q {
		z[size] = 0
	}
	return z
}

// Equal compares two maps treating zero entries as absent
func (q QuantityMap) Equal(other QuantityMap) bool {
	for size, qty := range q {
		if other[size] != qty {
			return false
		}
	}
	for size, qty := range other {
		if q[size] != qty {
			return false
		}
	}
	return true
}

// Add returns the per-size sum; labels of both maps are kept
func (q QuantityMap) Add(other QuantityMap) QuantityMap {
	sum := q.Clone()
	for size, qty := range other {
		sum[size] += qty
	}
	return sum
}

// Sub returns q − other, failing if any size would go negative
func (q QuantityMap) Sub(other QuantityMap) (QuantityMap, error) {
	if size, requested, available, ok := other.Exceeding(q); ok {
		return nil, NewInvalidQuantityMapError(
			fmt.Sprintf("cannot subtract %d of size %s from %d", requested, size, available))
	}
	diff := q.Clone()
	for size, qty := range other {
		diff[size] -= qty
	}
	return diff, nil
}

// Exceeding returns the first size (in label order) where q is greater than limit
func (q QuantityMap) Exceeding(limit QuantityMap) (size string, requested, available int, ok bool) {
	for _, s := range q.Labels() {
		if q[s] > limit[s] {
			return s, q[s], limit[s], true
		}
	}
	return "", 0, 0, false
}

// Covers reports whether q is at least other for every size
func (q QuantityMap) Covers(other QuantityMap) bool {
	_, _, _, exceeded := other.Exceeding(q)
	return !exceeded
}

// CheckLabels fails if q carries a non-zero size that is not a label of allowed
func (q QuantityMap) CheckLabels(allowed QuantityMap) error {
	for _, size := range q.Sizes() {
		if _, ok := allowed[size]; !ok {
			return NewInvalidQuantityMapError(fmt.Sprintf("size %s is not part of the required map %s", size, allowed))
		}
	}
	return nil
}

// UnmarshalJSON decodes {"S":10,"M":20}. Quantities must be whole numbers;
// fractional or non-numeric values fail with InvalidQuantityMap.
func (q *QuantityMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var raw map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return NewInvalidQuantityMapError("expected an object of size to quantity")
	}

	decoded := make(QuantityMap, len(raw))
	for size, value := range raw {
		number, ok := value.(json.Number)
		if !ok {
			return NewInvalidQuantityMapError(fmt.Sprintf("size %s has non-numeric quantity %v", size, value))
		}
		qty, err := wholeNumber(number)
		if err != nil {
			return NewInvalidQuantityMapError(fmt.Sprintf("size %s has non-integer quantity %s", size, number))
		}
		decoded[size] = qty
	}
	*q = decoded
	return nil
}

// wholeNumber accepts integer literals and integral floats such as 2.0
func wholeNumber(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return 0, fmt.Errorf("quantity %d out of range", i)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("quantity %s is not a whole number", n)
	}
	return int(f), nil
}

// String renders the map as {L:1 M:2}
func (q QuantityMap) String() string {
	parts := make([]string, 0, len(q))
	for _, size := range q.Labels() {
		parts = append(parts, fmt.Sprintf("%s:%d", size, q[size]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MinQuantities returns the per-size minimum of a and b over the labels of a
func MinQuantities(a, b QuantityMap) QuantityMap {
	m := make(QuantityMap, len(a))
	for size, qty := range a {
		if b[size] < qty {
			qty = b[size]
		}
		m[size] = qty
	}
	return m
}

// SumQuantities adds any number of maps
func SumQuantities(maps ...QuantityMap) QuantityMap {
	sum := QuantityMap{}
	for _, m := range maps {
		for size, qty := range m {
			sum[size] += qty
		}
	}
	return sum
}
