package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// ReceiveExternalCommand records pieces returned by a subcontractor
type ReceiveExternalCommand struct {
	AssignmentID string
	Quantities   shared.QuantityMap
}

// ReceiveExternalResponse reports the receipt and the payable it earned
type ReceiveExternalResponse struct {
	AssignmentID  string             `json:"assignment_id"`
	PayableID     string             `json:"payable_id"`
	Subcontractor string             `json:"subcontractor"`
	Quantity      int                `json:"quantity"`
	RatePerPiece  decimal.Decimal    `json:"rate_per_piece"`
	Amount        decimal.Decimal    `json:"amount"`
	Outstanding   shared.QuantityMap `json:"outstanding"`
	FullyReceived bool               `json:"fully_received"`
	Published     bool               `json:"published"`
}

// ReceiveExternalHandler handles the ReceiveExternal command.
//
// The payable is written to the outbox in the receipt transaction. Publishing
// runs after commit and a failure only leaves the event pending.
type ReceiveExternalHandler struct {
	assignmentRepo pipeline.AssignmentRepository
	payableRepo    pipeline.PayableRepository
	transactor     common.Transactor
	publisher      common.PayablePublisher
	clock          shared.Clock
}

// NewReceiveExternalHandler creates a new ReceiveExternalHandler.
// publisher may be nil when events are disabled.
func NewReceiveExternalHandler(
	assignmentRepo pipeline.AssignmentRepository,
	payableRepo pipeline.PayableRepository,
	transactor common.Transactor,
	publisher common.PayablePublisher,
	clock shared.Clock,
) *ReceiveExternalHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ReceiveExternalHandler{
		assignmentRepo: assignmentRepo,
		payableRepo:    payableRepo,
		transactor:     transactor,
		publisher:      publisher,
		clock:          clock,
	}
}

// Handle executes the ReceiveExternal command
func (h *ReceiveExternalHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReceiveExternalCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReceiveExternalCommand")
	}

	var (
		event    *pipeline.PayableEvent
		response *ReceiveExternalResponse
	)
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		assignment, err := h.assignmentRepo.FindForUpdate(ctx, cmd.AssignmentID)
		if err != nil {
			return err
		}

		event, err = assignment.Receive(cmd.Quantities, h.clock.Now())
		if err != nil {
			return err
		}

		if err := h.assignmentRepo.Update(ctx, assignment); err != nil {
			return err
		}
		if err := h.payableRepo.Create(ctx, event); err != nil {
			return err
		}

		ext := assignment.External()
		response = &ReceiveExternalResponse{
			AssignmentID:  assignment.ID(),
			PayableID:     event.ID,
			Subcontractor: event.Subcontractor,
			Quantity:      event.Quantity,
			RatePerPiece:  event.RatePerPiece,
			Amount:        event.Amount,
			Outstanding:   ext.Outstanding(),
			FullyReceived: ext.IsFullyReceived(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPayable(event.Subcontractor, event.Quantity, event.Amount.InexactFloat64())
	response.Published = publishPayable(ctx, h.publisher, h.payableRepo, event)
	return response, nil
}

// publishPayable forwards one outbox event and marks it published. Failures are
// logged and leave the event for PublishPendingPayables.
func publishPayable(ctx context.Context, publisher common.PayablePublisher, repo pipeline.PayableRepository, event *pipeline.PayableEvent) bool {
	if publisher == nil {
		return false
	}
	logger := common.LoggerFromContext(ctx)

	if err := publisher.PublishPayable(ctx, event); err != nil {
		logger.Warn().Err(err).Str("payable_id", event.ID).Msg("failed to publish payable event")
		return false
	}
	if err := repo.MarkPublished(ctx, event.ID); err != nil {
		logger.Warn().Err(err).Str("payable_id", event.ID).Msg("payable published but not marked")
		return false
	}
	return true
}
