package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// OrderLineInput is one product line of an incoming order
type OrderLineInput struct {
	ProductID  string
	Quantities shared.QuantityMap
}

// CreateOrderCommand accepts an order from intake
type CreateOrderCommand struct {
	Client string
	Lines  []OrderLineInput
}

// CreateOrderResponse returns the order id and its line ids in input order
type CreateOrderResponse struct {
	OrderID string   `json:"order_id"`
	LineIDs []string `json:"line_ids"`
}

// CreateOrderHandler handles the CreateOrder command
type CreateOrderHandler struct {
	orderRepo dispatch.OrderRepository
	clock     shared.Clock
}

// NewCreateOrderHandler creates a new CreateOrderHandler
func NewCreateOrderHandler(orderRepo dispatch.OrderRepository, clock shared.Clock) *CreateOrderHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CreateOrderHandler{orderRepo: orderRepo, clock: clock}
}

// Handle executes the CreateOrder command
func (h *CreateOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreateOrderCommand")
	}

	specs := make([]dispatch.LineSpec, len(cmd.Lines))
	for i, line := range cmd.Lines {
		specs[i] = dispatch.LineSpec{ProductID: line.ProductID, Quantities: line.Quantities}
	}

	order, err := dispatch.NewOrder(cmd.Client, specs, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	common.LoggerFromContext(ctx).Info().
		Str("order_id", order.ID()).
		Int("lines", len(specs)).
		Msg("order accepted")

	return &CreateOrderResponse{OrderID: order.ID(), LineIDs: order.LineIDs()}, nil
}
