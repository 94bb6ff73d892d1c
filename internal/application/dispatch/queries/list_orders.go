package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

const defaultOrderListLimit = 50

// ListOrdersQuery lists the most recent orders with their derived status
type ListOrdersQuery struct {
	Limit int
}

type ListOrdersResponse struct {
	Orders []OrderStatusView `json:"orders"`
}

// ListOrdersHandler handles the ListOrders query
type ListOrdersHandler struct {
	status *GetOrderStatusHandler
}

// NewListOrdersHandler creates a new ListOrdersHandler
func NewListOrdersHandler(
	orderRepo dispatch.OrderRepository,
	jobRepo cutting.JobRepository,
	assignmentRepo pipeline.AssignmentRepository,
	batchRepo stock.BatchRepository,
	usageRepo stock.UsageRepository,
	catalog *pipeline.StageCatalog,
) *ListOrdersHandler {
	return &ListOrdersHandler{
		status: NewGetOrderStatusHandler(orderRepo, jobRepo, assignmentRepo, batchRepo, usageRepo, catalog),
	}
}

// Handle executes the ListOrders query
func (h *ListOrdersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListOrdersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListOrdersQuery")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultOrderListLimit
	}

	orders, err := h.status.orderRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	response := &ListOrdersResponse{Orders: make([]OrderStatusView, 0, len(orders))}
	for _, order := range orders {
		view, err := h.status.statusOf(ctx, order)
		if err != nil {
			return nil, err
		}
		response.Orders = append(response.Orders, *view)
	}
	return response, nil
}
