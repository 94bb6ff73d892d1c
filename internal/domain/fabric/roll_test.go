package fabric

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoll_ReserveDecrementsAndLogsUsage(t *testing.T) {
	// Arrange
	roll, err := NewRoll("batch-1", d("50"), testNow)
	require.NoError(t, err)

	// Act
	usage, err := roll.Reserve("job-1", d("12.5"), testNow)

	// Assert
	require.NoError(t, err)
	assert.True(t, d("37.5").Equal(roll.RemainingLength()))
	assert.True(t, d("50").Equal(roll.OriginalLength()))
	require.Len(t, roll.Usages(), 1)
	assert.Equal(t, usage.ID(), roll.Usages()[0].ID())
	assert.Equal(t, "job-1", usage.JobID())
	assert.False(t, roll.IsExhausted())
}

func TestRoll_ReserveBeyondRemainingLeavesRollUnchanged(t *testing.T) {
	// Arrange
	roll, err := NewLegacyRoll("batch-1", d("60"), d("30"), testNow)
	require.NoError(t, err)

	// Act
	_, err = roll.Reserve("job-1", d("45"), testNow)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientFabric))
	var insufficient *InsufficientFabricError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, d("30").Equal(insufficient.Remaining))
	assert.True(t, d("30").Equal(roll.RemainingLength()))
	assert.Empty(t, roll.Usages())
}

func TestRoll_ReserveExactRemainderExhaustsRoll(t *testing.T) {
	roll, err := NewRoll("batch-1", d("20"), testNow)
	require.NoError(t, err)

	_, err = roll.Reserve("job-1", d("20"), testNow)

	require.NoError(t, err)
	assert.True(t, roll.IsExhausted())
	assert.True(t, roll.RemainingLength().IsZero())
}

func TestRoll_ReserveRejectsNonPositiveAmount(t *testing.T) {
	roll, err := NewRoll("batch-1", d("20"), testNow)
	require.NoError(t, err)

	_, err = roll.Reserve("job-1", decimal.Zero, testNow)

	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestNewLegacyRoll_RejectsRemainingAboveOriginal(t *testing.T) {
	_, err := NewLegacyRoll("batch-1", d("10"), d("11"), testNow)

	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestDeriveHistoricalUsage(t *testing.T) {
	t.Run("logged usage is authoritative", func(t *testing.T) {
		roll, err := NewRoll("batch-1", d("100"), testNow)
		require.NoError(t, err)
		_, err = roll.Reserve("job-1", d("10"), testNow)
		require.NoError(t, err)
		_, err = roll.Reserve("job-2", d("5"), testNow)
		require.NoError(t, err)
		_, err = roll.Reserve("job-1", d("2.25"), testNow)
		require.NoError(t, err)

		usage := DeriveHistoricalUsage(roll, "job-1")

		assert.True(t, d("12.25").Equal(usage.Amount))
		assert.False(t, usage.Derived)
		assert.Empty(t, usage.Warning)
	})

	t.Run("legacy roll without log is derived and flagged", func(t *testing.T) {
		roll, err := NewLegacyRoll("batch-1", d("80"), d("35"), testNow)
		require.NoError(t, err)

		usage := DeriveHistoricalUsage(roll, "job-legacy")

		assert.True(t, d("45").Equal(usage.Amount))
		assert.True(t, usage.Derived)
		assert.Equal(t, DerivedValueWarning, usage.Warning)
	})

	t.Run("legacy roll excludes later logged usage from the derived figure", func(t *testing.T) {
		roll, err := NewLegacyRoll("batch-1", d("80"), d("35"), testNow)
		require.NoError(t, err)
		_, err = roll.Reserve("job-new", d("15"), testNow)
		require.NoError(t, err)

		legacy := DeriveHistoricalUsage(roll, "job-legacy")
		recorded := DeriveHistoricalUsage(roll, "job-new")

		assert.True(t, d("45").Equal(legacy.Amount))
		assert.True(t, legacy.Derived)
		assert.True(t, d("15").Equal(recorded.Amount))
		assert.False(t, recorded.Derived)
	})

	t.Run("ledger roll without usage for the job reports zero", func(t *testing.T) {
		roll, err := NewRoll("batch-1", d("80"), testNow)
		require.NoError(t, err)

		usage := DeriveHistoricalUsage(roll, "job-1")

		assert.True(t, usage.Amount.IsZero())
		assert.False(t, usage.Derived)
	})
}

func TestNewBatch_RequiresFullIdentity(t *testing.T) {
	_, err := NewBatch("cotton", "navy", "", "A", testNow)

	var validation *shared.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "design", validation.Field)
}
