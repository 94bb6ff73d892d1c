package queries

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

// BatchView is the read model of a fabric batch
type BatchView struct {
	ID          string    `json:"id"`
	FabricType  string    `json:"fabric_type"`
	Color       string    `json:"color"`
	Design      string    `json:"design"`
	Quality     string    `json:"quality"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RollView is the read model of a roll with its usage log
type RollView struct {
	ID              string          `json:"id"`
	BatchID         string          `json:"batch_id"`
	OriginalLength  decimal.Decimal `json:"original_length"`
	RemainingLength decimal.Decimal `json:"remaining_length"`
	Legacy          bool            `json:"legacy"`
	Exhausted       bool            `json:"exhausted"`
	Usages          []UsageView     `json:"usages"`
}

// UsageView is one entry of a roll's usage log
type UsageView struct {
	ID         string          `json:"id"`
	JobID      string          `json:"job_id"`
	Amount     decimal.Decimal `json:"amount"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func toBatchView(b *fabric.Batch) BatchView {
	return BatchView{
		ID:          b.ID(),
		FabricType:  b.FabricType(),
		Color:       b.Color(),
		Design:      b.Design(),
		Quality:     b.Quality(),
		Description: b.Describe(),
		CreatedAt:   b.CreatedAt(),
	}
}

func toRollView(r *fabric.Roll) RollView {
	usages := r.Usages()
	view := RollView{
		ID:              r.ID(),
		BatchID:         r.BatchID(),
		OriginalLength:  r.OriginalLength(),
		RemainingLength: r.RemainingLength(),
		Legacy:          r.IsLegacy(),
		Exhausted:       r.IsExhausted(),
		Usages:          make([]UsageView, 0, len(usages)),
	}
	for _, u := range usages {
		view.Usages = append(view.Usages, UsageView{ID: u.ID(), JobID: u.JobID(), Amount: u.Amount(), RecordedAt: u.RecordedAt()})
	}
	return view
}
