package fabric

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// Roll is a physical cloth roll. Rolls are never deleted; a drained roll stays
// in the ledger as exhausted for audit.
//
// Invariants:
//   - 0 <= remainingLength <= originalLength
//   - remainingLength only decreases, and only through Reserve
type Roll struct {
	id              string
	batchID         string
	originalLength  decimal.Decimal
	remainingLength decimal.Decimal
	legacy          bool
	usages          []*Usage
	createdAt       time.Time
	updatedAt       time.Time
	version         int
}

// Usage is one recorded reservation of roll length by a cutting job
type Usage struct {
	id         string
	rollID     string
	jobID      string
	amount     decimal.Decimal
	recordedAt time.Time
}

func NewUsage(rollID, jobID string, amount decimal.Decimal, recordedAt time.Time) *Usage {
	return &Usage{
		id:         shared.NewID(),
		rollID:     rollID,
		jobID:      jobID,
		amount:     amount,
		recordedAt: recordedAt,
	}
}

func ReconstructUsage(id, rollID, jobID string, amount decimal.Decimal, recordedAt time.Time) *Usage {
	return &Usage{id: id, rollID: rollID, jobID: jobID, amount: amount, recordedAt: recordedAt}
}

func (u *Usage) ID() string              { return u.id }
func (u *Usage) RollID() string          { return u.rollID }
func (u *Usage) JobID() string           { return u.jobID }
func (u *Usage) Amount() decimal.Decimal { return u.amount }
func (u *Usage) RecordedAt() time.Time   { return u.recordedAt }

// NewRoll registers a freshly received roll; its whole length is available
func NewRoll(batchID string, length decimal.Decimal, createdAt time.Time) (*Roll, error) {
	if batchID == "" {
		return nil, shared.NewValidationError("batch_id", "cannot be empty")
	}
	if !length.IsPositive() {
		return nil, shared.NewValidationError("length", "must be positive")
	}

	return &Roll{
		id:              shared.NewID(),
		batchID:         batchID,
		originalLength:  length,
		remainingLength: length,
		createdAt:       createdAt,
		updatedAt:       createdAt,
	}, nil
}

// NewLegacyRoll loads a roll that predates the usage ledger. Its consumed length
// (original - remaining) has no usage log behind it.
func NewLegacyRoll(batchID string, original, remaining decimal.Decimal, createdAt time.Time) (*Roll, error) {
	if batchID == "" {
		return nil, shared.NewValidationError("batch_id", "cannot be empty")
	}
	if !original.IsPositive() {
		return nil, shared.NewValidationError("original_length", "must be positive")
	}
	if remaining.IsNegative() || remaining.GreaterThan(original) {
		return nil, shared.NewValidationError("remaining_length", "must be between 0 and the original length")
	}

	return &Roll{
		id:              shared.NewID(),
		batchID:         batchID,
		originalLength:  original,
		remainingLength: remaining,
		legacy:          true,
		createdAt:       createdAt,
		updatedAt:       createdAt,
	}, nil
}

// ReconstructRoll rebuilds a roll from persistence
func ReconstructRoll(
	id string,
	batchID string,
	originalLength decimal.Decimal,
	remainingLength decimal.Decimal,
	legacy bool,
	usages []*Usage,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *Roll {
	return &Roll{
		id:              id,
		batchID:         batchID,
		originalLength:  originalLength,
		remainingLength: remainingLength,
		legacy:          legacy,
		usages:          usages,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		version:         version,
	}
}

func (r *Roll) ID() string                       { return r.id }
func (r *Roll) BatchID() string                  { return r.batchID }
func (r *Roll) OriginalLength() decimal.Decimal  { return r.originalLength }
func (r *Roll) RemainingLength() decimal.Decimal { return r.remainingLength }
func (r *Roll) IsLegacy() bool                   { return r.legacy }
func (r *Roll) CreatedAt() time.Time             { return r.createdAt }
func (r *Roll) UpdatedAt() time.Time             { return r.updatedAt }
func (r *Roll) Version() int                     { return r.version }

// Usages returns a copy of the usage log
func (r *Roll) Usages() []*Usage {
	usages := make([]*Usage, len(r.usages))
	copy(usages, r.usages)
	return usages
}

// IsExhausted reports whether the roll has been drained to zero
func (r *Roll) IsExhausted() bool {
	return r.remainingLength.IsZero()
}

// RecordedTotal sums every logged usage
func (r *Roll) RecordedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, u := range r.usages {
		total = total.Add(u.amount)
	}
	return total
}

// Reserve decrements the remaining length and appends a usage record.
// The roll is left untouched when the amount is not available.
func (r *Roll) Reserve(jobID string, amount decimal.Decimal, at time.Time) (*Usage, error) {
	if jobID == "" {
		return nil, shared.NewValidationError("job_id", "cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "must be positive")
	}
	if amount.GreaterThan(r.remainingLength) {
		return nil, NewInsufficientFabricError(r.id, amount, r.remainingLength)
	}

	usage := NewUsage(r.id, jobID, amount, at)
	r.remainingLength = r.remainingLength.Sub(amount)
	r.usages = append(r.usages, usage)
	r.updatedAt = at
	return usage, nil
}

// BumpVersion is called by the repository after a successful optimistic write
func (r *Roll) BumpVersion() {
	r.version++
}
