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

// PackOrderCommand packs every completed quantity of an order
type PackOrderCommand struct {
	OrderID string
}

type PackOrderResponse struct {
	OrderID string `json:"order_id"`
	Packed  int    `json:"packed"`
}

// PackOrderHandler handles the PackOrder command. The order row serializes
// concurrent pack and dispatch calls for the same order.
type PackOrderHandler struct {
	orderRepo  dispatch.OrderRepository
	shipments  shipmentStore
	transactor common.Transactor
}

// NewPackOrderHandler creates a new PackOrderHandler
func NewPackOrderHandler(
	orderRepo dispatch.OrderRepository,
	batchRepo stock.BatchRepository,
	usageRepo stock.UsageRepository,
	transactor common.Transactor,
) *PackOrderHandler {
	return &PackOrderHandler{
		orderRepo:  orderRepo,
		shipments:  shipmentStore{batchRepo: batchRepo, usageRepo: usageRepo},
		transactor: transactor,
	}
}

// Handle executes the PackOrder command
func (h *PackOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PackOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PackOrderCommand")
	}

	var packed int
	err := h.transactor.WithinTx(ctx, func(ctx context.Context) error {
		order, err := h.orderRepo.FindForUpdate(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		shipments, err := h.shipments.load(ctx, order)
		if err != nil {
			return err
		}

		changed, err := dispatch.Pack(order.ID(), shipments)
		if err != nil {
			return err
		}
		packed = len(changed)
		return h.shipments.save(ctx, changed)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDispatchTransition(string(shared.DispatchStatePacked), packed)
	return &PackOrderResponse{OrderID: cmd.OrderID, Packed: packed}, nil
}
