package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// LineStatusView is the progress of one order line
type LineStatusView struct {
	LineID     string             `json:"line_id"`
	ProductID  string             `json:"product_id"`
	Target     shared.QuantityMap `json:"target"`
	Status     string             `json:"status"`
	StageIndex int                `json:"stage_index,omitempty"`
	JobID      string             `json:"job_id,omitempty"`
	Finished   shared.QuantityMap `json:"finished"`
	Packed     shared.QuantityMap `json:"packed"`
	Delivered  shared.QuantityMap `json:"delivered"`
}

// OrderStatusView is the derived status of an order and its lines
type OrderStatusView struct {
	OrderID   string           `json:"order_id"`
	Client    string           `json:"client"`
	Status    string           `json:"status"`
	Lines     []LineStatusView `json:"lines"`
	CreatedAt time.Time        `json:"created_at"`
}

// GetOrderStatusQuery derives an order's status from its lineages
type GetOrderStatusQuery struct {
	OrderID string
}

// GetOrderStatusHandler handles the GetOrderStatus query
type GetOrderStatusHandler struct {
	orderRepo      dispatch.OrderRepository
	jobRepo        cutting.JobRepository
	assignmentRepo pipeline.AssignmentRepository
	batchRepo      stock.BatchRepository
	usageRepo      stock.UsageRepository
	catalog        *pipeline.StageCatalog
}

// NewGetOrderStatusHandler creates a new GetOrderStatusHandler
func NewGetOrderStatusHandler(
	orderRepo dispatch.OrderRepository,
	jobRepo cutting.JobRepository,
	assignmentRepo pipeline.AssignmentRepository,
	batchRepo stock.BatchRepository,
	usageRepo stock.UsageRepository,
	catalog *pipeline.StageCatalog,
) *GetOrderStatusHandler {
	return &GetOrderStatusHandler{
		orderRepo:      orderRepo,
		jobRepo:        jobRepo,
		assignmentRepo: assignmentRepo,
		batchRepo:      batchRepo,
		usageRepo:      usageRepo,
		catalog:        catalog,
	}
}

// Handle executes the GetOrderStatus query and returns an *OrderStatusView
func (h *GetOrderStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetOrderStatusQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetOrderStatusQuery")
	}

	order, err := h.orderRepo.FindByID(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}
	view, err := h.statusOf(ctx, order)
	if err != nil {
		return nil, err
	}
	return view, nil
}

type finishedRecord struct {
	quantities shared.QuantityMap
	state      shared.DispatchState
}

func (h *GetOrderStatusHandler) statusOf(ctx context.Context, order *dispatch.Order) (*OrderStatusView, error) {
	lineIDs := order.LineIDs()

	jobs, err := h.jobRepo.FindByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	assignments, err := h.assignmentRepo.FindByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	batches, err := h.batchRepo.FindByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	usages, err := h.usageRepo.FindByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}

	jobByLine := make(map[string]*cutting.Job, len(jobs))
	for _, j := range jobs {
		jobByLine[j.OrderLineID()] = j
	}
	openStages := make(map[string][]int)
	for _, a := range assignments {
		if a.Status() != pipeline.AssignmentStatusCompleted && !a.IsExhausted() {
			openStages[a.OrderLineID()] = append(openStages[a.OrderLineID()], a.StageIndex())
		}
	}
	finished := make(map[string][]finishedRecord)
	for _, b := range batches {
		finished[b.OrderLineID()] = append(finished[b.OrderLineID()], finishedRecord{b.Produced(), b.DispatchState()})
	}
	for _, u := range usages {
		finished[u.OrderLineID()] = append(finished[u.OrderLineID()], finishedRecord{u.Quantities(), u.DispatchState()})
	}

	view := &OrderStatusView{OrderID: order.ID(), Client: order.ClientRef(), CreatedAt: order.CreatedAt()}
	phases := make([]dispatch.Phase, 0, len(lineIDs))
	for _, line := range order.Lines() {
		progress := dispatch.LineProgress{LineID: line.ID(), OpenStages: openStages[line.ID()]}
		lineView := LineStatusView{
			LineID:    line.ID(),
			ProductID: line.ProductID(),
			Target:    line.Target(),
			Finished:  line.Target().ZeroLike(),
			Packed:    line.Target().ZeroLike(),
			Delivered: line.Target().ZeroLike(),
		}
		if job, ok := jobByLine[line.ID()]; ok {
			progress.JobStarted = true
			progress.JobCompleted = !job.IsOpen()
			lineView.JobID = job.ID()
		}
		for _, rec := range finished[line.ID()] {
			progress.Shipments = append(progress.Shipments, rec.state)
			lineView.Finished = lineView.Finished.Add(rec.quantities)
			switch rec.state {
			case shared.DispatchStatePacked:
				lineView.Packed = lineView.Packed.Add(rec.quantities)
			case shared.DispatchStateDelivered:
				lineView.Delivered = lineView.Delivered.Add(rec.quantities)
			}
		}

		phase := dispatch.LinePhase(progress, h.catalog)
		lineView.Status = phase.Name()
		lineView.StageIndex = phase.StageIndex
		view.Lines = append(view.Lines, lineView)
		phases = append(phases, phase)
	}
	view.Status = dispatch.OrderPhase(phases).Name()
	return view, nil
}
