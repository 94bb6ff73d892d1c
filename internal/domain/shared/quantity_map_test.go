package shared

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantityMap_RejectsBadShape(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]int
	}{
		{name: "negative quantity", values: map[string]int{"S": -1}},
		{name: "empty label", values: map[string]int{"": 3}},
		{name: "blank label", values: map[string]int{"  ": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuantityMap(tt.values)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuantityMap))
		})
	}
}

func TestNewQuantityMap_CopiesInput(t *testing.T) {
	values := map[string]int{"S": 1}

	q, err := NewQuantityMap(values)
	require.NoError(t, err)
	values["S"] = 9

	assert.Equal(t, 1, q.Get("S"))
}

func TestQuantityMap_ZeroEntriesEquivalentToAbsence(t *testing.T) {
	a := QuantityMap{"S": 10, "M": 0}
	b := QuantityMap{"S": 10}

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, 10, a.Total())
	assert.Equal(t, []string{"S"}, a.Sizes())
	assert.Equal(t, []string{"M", "S"}, a.Labels())
	assert.False(t, QuantityMap{"S": 10}.Equal(QuantityMap{"S": 9}))
}

func TestQuantityMap_SubKeepsLabelsAtZero(t *testing.T) {
	remaining := QuantityMap{"M": 20}

	next, err := remaining.Sub(QuantityMap{"M": 20})

	require.NoError(t, err)
	assert.True(t, next.IsZero())
	assert.Equal(t, []string{"M"}, next.Labels())
	assert.Equal(t, QuantityMap{"M": 20}, remaining)
}

func TestQuantityMap_SubUnderflowFails(t *testing.T) {
	_, err := QuantityMap{"M": 2}.Sub(QuantityMap{"M": 3})

	assert.Equal(t, CodeInvalidQuantityMap, CodeOf(err))
}

func TestQuantityMap_Exceeding(t *testing.T) {
	limit := QuantityMap{"S": 5, "M": 20}

	size, requested, available, exceeded := QuantityMap{"M": 21, "S": 1}.Exceeding(limit)
	assert.True(t, exceeded)
	assert.Equal(t, "M", size)
	assert.Equal(t, 21, requested)
	assert.Equal(t, 20, available)

	_, _, _, exceeded = QuantityMap{"XL": 1}.Exceeding(limit)
	assert.True(t, exceeded)

	_, _, _, exceeded = QuantityMap{"S": 5, "XL": 0}.Exceeding(limit)
	assert.False(t, exceeded)
}

func TestQuantityMap_CheckLabels(t *testing.T) {
	required := QuantityMap{"S": 10, "M": 0}

	assert.NoError(t, QuantityMap{"M": 3}.CheckLabels(required))
	assert.NoError(t, QuantityMap{"XL": 0}.CheckLabels(required))

	err := QuantityMap{"XL": 1}.CheckLabels(required)
	var invalid *InvalidQuantityMapError
	assert.True(t, errors.As(err, &invalid))
}

func TestQuantityMap_Helpers(t *testing.T) {
	a := QuantityMap{"S": 3, "M": 5}
	b := QuantityMap{"S": 4, "L": 1}

	assert.True(t, QuantityMap{"S": 7, "M": 5, "L": 1}.Equal(a.Add(b)))
	assert.True(t, QuantityMap{"S": 3, "M": 0}.Equal(MinQuantities(a, b)))
	assert.True(t, QuantityMap{"S": 7, "M": 5, "L": 1}.Equal(SumQuantities(a, b)))
	assert.Equal(t, QuantityMap{"S": 0, "M": 0}, a.ZeroLike())
	assert.Equal(t, QuantityMap{"S": 3}, QuantityMap{"S": 3, "M": 0}.Normalize())
	assert.True(t, a.Covers(QuantityMap{"S": 3}))
	assert.False(t, a.Covers(b))
	assert.Equal(t, "{M:5 S:3}", a.String())
}

func TestCodeOfAndRetryable(t *testing.T) {
	wrapped := errors.New("plain")
	conflict := NewConcurrentModificationError("stage assignment", "asg-1")

	assert.Equal(t, ErrorCode(""), CodeOf(wrapped))
	assert.Equal(t, CodeConcurrentModification, CodeOf(conflict))
	assert.True(t, IsRetryable(conflict))
	assert.False(t, IsRetryable(NewOverAssignmentError("M", 3, 2)))
	assert.True(t, errors.Is(NewOverAssignmentError("M", 3, 2), ErrOverAssignment))
	assert.False(t, errors.Is(NewOverAssignmentError("M", 3, 2), ErrOverAllocation))
}

func TestQuantityMap_UnmarshalJSON(t *testing.T) {
	var q QuantityMap
	require.NoError(t, json.Unmarshal([]byte(`{"S":10,"M":2.0,"XL":0}`), &q))
	assert.Equal(t, QuantityMap{"S": 10, "M": 2, "XL": 0}, q)

	var body struct {
		Target QuantityMap `json:"target"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"target":null}`), &body))
	assert.Nil(t, body.Target)
}

func TestQuantityMap_UnmarshalJSON_RejectsNonIntegers(t *testing.T) {
	cases := map[string]string{
		"fraction": `{"M":1.5}`,
		"string":   `{"M":"3"}`,
		"array":    `[1,2]`,
		"huge":     `{"M":1e20}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var q QuantityMap
			err := json.Unmarshal([]byte(raw), &q)

			var invalid *InvalidQuantityMapError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, CodeInvalidQuantityMap, CodeOf(err))
		})
	}
}
