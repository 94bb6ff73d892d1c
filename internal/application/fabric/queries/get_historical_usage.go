package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

// GetHistoricalUsageQuery reports how much of a roll a job consumed.
// For legacy rolls without a log the value is derived and flagged.
type GetHistoricalUsageQuery struct {
	RollID string
	JobID  string
}

// GetHistoricalUsageHandler handles the GetHistoricalUsage query
type GetHistoricalUsageHandler struct {
	rollRepo fabric.RollRepository
}

// NewGetHistoricalUsageHandler creates a new GetHistoricalUsageHandler
func NewGetHistoricalUsageHandler(rollRepo fabric.RollRepository) *GetHistoricalUsageHandler {
	return &GetHistoricalUsageHandler{rollRepo: rollRepo}
}

// Handle executes the query and returns a *fabric.HistoricalUsage
func (h *GetHistoricalUsageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetHistoricalUsageQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetHistoricalUsageQuery")
	}

	roll, err := h.rollRepo.FindByID(ctx, query.RollID)
	if err != nil {
		return nil, err
	}

	usage := fabric.DeriveHistoricalUsage(roll, query.JobID)
	if usage.Derived {
		common.LoggerFromContext(ctx).Warn().
			Str("roll_id", usage.RollID).
			Str("amount", usage.Amount.String()).
			Msg(usage.Warning)
	}
	return &usage, nil
}
