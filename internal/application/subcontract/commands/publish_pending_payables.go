package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

const defaultPublishLimit = 100

// PublishPendingPayablesCommand re-publishes outbox events that never reached the bus
type PublishPendingPayablesCommand struct {
	Limit int
}

type PublishPendingPayablesResponse struct {
	Pending   int `json:"pending"`
	Published int `json:"published"`
}

// PublishPendingPayablesHandler handles the PublishPendingPayables command
type PublishPendingPayablesHandler struct {
	payableRepo pipeline.PayableRepository
	publisher   common.PayablePublisher
}

// NewPublishPendingPayablesHandler creates a new PublishPendingPayablesHandler
func NewPublishPendingPayablesHandler(payableRepo pipeline.PayableRepository, publisher common.PayablePublisher) *PublishPendingPayablesHandler {
	return &PublishPendingPayablesHandler{payableRepo: payableRepo, publisher: publisher}
}

// Handle executes the PublishPendingPayables command
func (h *PublishPendingPayablesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PublishPendingPayablesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PublishPendingPayablesCommand")
	}
	if h.publisher == nil {
		return nil, shared.NewValidationError("events", "payable publishing is disabled")
	}

	limit := cmd.Limit
	if limit <= 0 {
		limit = defaultPublishLimit
	}

	pending, err := h.payableRepo.FindUnpublished(ctx, limit)
	if err != nil {
		return nil, err
	}

	response := &PublishPendingPayablesResponse{Pending: len(pending)}
	for _, event := range pending {
		if publishPayable(ctx, h.publisher, h.payableRepo, event) {
			response.Published++
		}
	}

	common.LoggerFromContext(ctx).Info().
		Int("pending", response.Pending).
		Int("published", response.Published).
		Msg("payable outbox flushed")
	return response, nil
}
