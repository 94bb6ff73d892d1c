package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

// GetRollQuery fetches one roll with its usage log
type GetRollQuery struct {
	RollID string
}

// GetRollHandler handles the GetRoll query
type GetRollHandler struct {
	rollRepo fabric.RollRepository
}

// NewGetRollHandler creates a new GetRollHandler
func NewGetRollHandler(rollRepo fabric.RollRepository) *GetRollHandler {
	return &GetRollHandler{rollRepo: rollRepo}
}

// Handle executes the GetRoll query and returns a *RollView
func (h *GetRollHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetRollQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetRollQuery")
	}

	roll, err := h.rollRepo.FindByID(ctx, query.RollID)
	if err != nil {
		return nil, err
	}

	view := toRollView(roll)
	return &view, nil
}
