package queries

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// AssignmentView is the read model of a stage assignment
type AssignmentView struct {
	ID            string             `json:"id"`
	JobID         string             `json:"job_id"`
	ParentID      string             `json:"parent_id,omitempty"`
	OrderLineID   string             `json:"order_line_id,omitempty"`
	ProductID     string             `json:"product_id"`
	StageIndex    int                `json:"stage_index"`
	StageName     string             `json:"stage_name"`
	Status        string             `json:"status"`
	Remaining     shared.QuantityMap `json:"remaining"`
	Available     bool               `json:"available"`
	AutoFulfilled bool               `json:"auto_fulfilled"`
	Allocations   []AllocationView   `json:"allocations,omitempty"`
	External      *ExternalView      `json:"external,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type AllocationView struct {
	WorkerID     string             `json:"worker_id"`
	Quantities   shared.QuantityMap `json:"quantities"`
	RatePerPiece decimal.Decimal    `json:"rate_per_piece"`
}

type ExternalView struct {
	Subcontractor string             `json:"subcontractor"`
	RatePerPiece  decimal.Decimal    `json:"rate_per_piece"`
	Sent          shared.QuantityMap `json:"sent"`
	Received      shared.QuantityMap `json:"received"`
	Outstanding   shared.QuantityMap `json:"outstanding"`
	FullyReceived bool               `json:"fully_received"`
	SentAt        time.Time          `json:"sent_at"`
}

// ToAssignmentView projects an assignment; stage names come from the catalog
func ToAssignmentView(a *pipeline.Assignment, catalog *pipeline.StageCatalog) AssignmentView {
	view := AssignmentView{
		ID:            a.ID(),
		JobID:         a.JobID(),
		ParentID:      a.ParentID(),
		OrderLineID:   a.OrderLineID(),
		ProductID:     a.ProductID(),
		StageIndex:    a.StageIndex(),
		StageName:     catalog.Name(a.StageIndex()),
		Status:        string(a.Status()),
		Remaining:     a.Remaining(),
		Available:     a.IsAvailable(),
		AutoFulfilled: a.AutoFulfilled(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}
	for _, alloc := range a.Allocations() {
		view.Allocations = append(view.Allocations, AllocationView{
			WorkerID:     alloc.EmployeeID.String(),
			Quantities:   alloc.Quantities,
			RatePerPiece: alloc.RatePerPiece,
		})
	}
	if ext := a.External(); ext != nil {
		view.External = &ExternalView{
			Subcontractor: ext.Subcontractor(),
			RatePerPiece:  ext.RatePerPiece(),
			Sent:          ext.Sent(),
			Received:      ext.Received(),
			Outstanding:   ext.Outstanding(),
			FullyReceived: ext.IsFullyReceived(),
			SentAt:        ext.SentAt(),
		}
	}
	return view
}

func toAssignmentViews(assignments []*pipeline.Assignment, catalog *pipeline.StageCatalog) []AssignmentView {
	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, ToAssignmentView(a, catalog))
	}
	return views
}
