package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// DispatchOrderCommand delivers every packed quantity of an order
type DispatchOrderCommand struct {
	OrderID string
}

type DispatchOrderResponse struct {
	OrderID   string `json:"order_id"`
	Delivered int    `json:"delivered"`
}

// DispatchOrderHandler handles the DispatchOrder command
type DispatchOrderHandler struct {
	orderRepo  dispatch.OrderRepository
	shipments  shipmentStore
	transactor common.Transactor
}

// NewDispatchOrderHandler creates a new DispatchOrderHandler
func NewDispatchOrderHandler(
	orderRepo dispatch.OrderRepository,
	batchRepo stock.BatchRepository,
	usageRepo stock.UsageRepository,
	transactor common.Transactor,
) *DispatchOrderHandler {
	return &DispatchOrderHandler{
		orderRepo:  orderRepo,
		shipments:  shipmentStore{batchRepo: batchRepo, usageRepo: usageRepo},
		transactor: transactor,
	}
}

// Handle executes the DispatchOrder command
func (h *DispatchOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DispatchOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DispatchOrderCommand")
	}

	var delivered int
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		order, err := h.orderRepo.FindForUpdate(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		shipments, err := h.shipments.load(ctx, order)
		if err != nil {
			return err
		}

		changed, err := dispatch.Deliver(order.ID(), shipments)
		if err != nil {
			return err
		}
		delivered = len(changed)
		return h.shipments.save(ctx, changed)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDispatchTransition(string(shared.DispatchStateDelivered), delivered)
	common.LoggerFromContext(ctx).Info().Str("order_id", cmd.OrderID).Int("shipments", delivered).Msg("order dispatched")
	return &DispatchOrderResponse{OrderID: cmd.OrderID, Delivered: delivered}, nil
}
