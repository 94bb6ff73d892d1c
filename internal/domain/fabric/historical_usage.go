package fabric

import (
	"github.com/shopspring/decimal"
)

// DerivedValueWarning is attached to usage figures inferred from roll lengths
const DerivedValueWarning = "derived from original minus remaining length; the roll has no usage log for this job and may have been shared by several jobs"

// HistoricalUsage is the fabric consumed by one job from one roll
type HistoricalUsage struct {
	RollID  string          `json:"roll_id"`
	JobID   string          `json:"job_id"`
	Amount  decimal.Decimal `json:"amount"`
	Derived bool            `json:"derived"`
	Warning string          `json:"warning,omitempty"`
}

// DeriveHistoricalUsage reports how much of the roll the job consumed.
//
// Logged usage is authoritative. Only when the job has no logged usage on a
// legacy roll is the unlogged portion (original - remaining - logged) returned,
// flagged as derived. The figure is not corrected for rolls shared across jobs
// because the true split cannot be recovered.
func DeriveHistoricalUsage(roll *Roll, jobID string) HistoricalUsage {
	result := HistoricalUsage{RollID: roll.id, JobID: jobID, Amount: decimal.Zero}

	logged := false
	for _, u := range roll.usages {
		if u.jobID == jobID {
			result.Amount = result.Amount.Add(u.amount)
			logged = true
		}
	}
	if logged || !roll.legacy {
		return result
	}

	unlogged := roll.originalLength.Sub(roll.remainingLength).Sub(roll.RecordedTotal())
	if unlogged.IsNegative() {
		unlogged = decimal.Zero
	}
	result.Amount = unlogged
	result.Derived = true
	result.Warning = DerivedValueWarning
	return result
}
