package setup

import (
	"reflect"

	"github.com/andrescamacho/garmentflow/internal/application/common"
	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	cuttingQueries "github.com/andrescamacho/garmentflow/internal/application/cutting/queries"
	dispatchCommands "github.com/andrescamacho/garmentflow/internal/application/dispatch/commands"
	dispatchQueries "github.com/andrescamacho/garmentflow/internal/application/dispatch/queries"
	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	fabricQueries "github.com/andrescamacho/garmentflow/internal/application/fabric/queries"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/garmentflow/internal/application/stock/queries"
	subcontractCommands "github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
	subcontractQueries "github.com/andrescamacho/garmentflow/internal/application/subcontract/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/cutting"
	"github.com/andrescamacho/garmentflow/internal/domain/dispatch"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

// Repositories groups every persistence port the handlers need
type Repositories struct {
	FabricBatches fabric.BatchRepository
	Rolls         fabric.RollRepository
	Jobs          cutting.JobRepository
	Assignments   pipeline.AssignmentRepository
	Payables      pipeline.PayableRepository
	StockBatches  stock.BatchRepository
	StockUsages   stock.UsageRepository
	Orders        dispatch.OrderRepository
}

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	repos      Repositories
	transactor common.Transactor
	catalog    *pipeline.StageCatalog
	clock      shared.Clock

	// Optional collaborators; nil disables worker checks and event publishing
	directory common.EmployeeDirectory
	publisher common.PayablePublisher
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	repos Repositories,
	transactor common.Transactor,
	catalog *pipeline.StageCatalog,
	directory common.EmployeeDirectory,
	publisher common.PayablePublisher,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		repos:      repos,
		transactor: transactor,
		catalog:    catalog,
		clock:      clock,
		directory:  directory,
		publisher:  publisher,
	}
}

type registration struct {
	request common.Request
	handler mediator.RequestHandler
}

func register(m mediator.Mediator, registrations ...registration) error {
	for _, reg := range registrations {
		if err := m.Register(reflect.TypeOf(reg.request), reg.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFabricHandlers registers the roll ledger commands and queries
func (r *HandlerRegistry) RegisterFabricHandlers(m mediator.Mediator) error {
	return register(m,
		registration{&fabricCommands.RegisterBatchCommand{}, fabricCommands.NewRegisterBatchHandler(r.repos.FabricBatches, r.clock)},
		registration{&fabricCommands.IntakeRollCommand{}, fabricCommands.NewIntakeRollHandler(r.repos.FabricBatches, r.repos.Rolls, r.clock)},
		registration{&fabricCommands.ImportLegacyRollCommand{}, fabricCommands.NewImportLegacyRollHandler(r.repos.FabricBatches, r.repos.Rolls, r.clock)},
		registration{&fabricCommands.ReserveUsageCommand{}, fabricCommands.NewReserveUsageHandler(r.repos.Rolls, r.transactor, r.clock)},
		registration{&fabricQueries.ListBatchesQuery{}, fabricQueries.NewListBatchesHandler(r.repos.FabricBatches)},
		registration{&fabricQueries.ListRollsQuery{}, fabricQueries.NewListRollsHandler(r.repos.FabricBatches, r.repos.Rolls)},
		registration{&fabricQueries.GetRollQuery{}, fabricQueries.NewGetRollHandler(r.repos.Rolls)},
		registration{&fabricQueries.GetHistoricalUsageQuery{}, fabricQueries.NewGetHistoricalUsageHandler(r.repos.Rolls)},
	)
}

// RegisterCuttingHandlers registers the cutting allocator.
// RecordFabricUsage sends ReserveUsageCommand through m, so fabric handlers must be registered too.
func (r *HandlerRegistry) RegisterCuttingHandlers(m mediator.Mediator) error {
	return register(m,
		registration{&cuttingCommands.StartJobCommand{}, cuttingCommands.NewStartJobHandler(r.repos.Jobs, r.repos.Orders, r.directory, r.transactor, r.clock)},
		registration{&cuttingCommands.RecordFabricUsageCommand{}, cuttingCommands.NewRecordFabricUsageHandler(r.repos.Jobs, m, r.transactor, r.clock)},
		registration{&cuttingCommands.RecordStockUsageCommand{}, cuttingCommands.NewRecordStockUsageHandler(r.repos.Jobs, r.repos.StockBatches, r.repos.StockUsages, r.transactor, r.clock)},
		registration{&cuttingCommands.CompleteJobCommand{}, cuttingCommands.NewCompleteJobHandler(r.repos.Jobs, r.repos.Assignments, r.transactor, r.clock)},
		registration{&cuttingQueries.GetJobQuery{}, cuttingQueries.NewGetJobHandler(r.repos.Jobs)},
		registration{&cuttingQueries.ListJobsQuery{}, cuttingQueries.NewListJobsHandler(r.repos.Jobs)},
	)
}

// RegisterPipelineHandlers registers stage transitions and lineage queries
func (r *HandlerRegistry) RegisterPipelineHandlers(m mediator.Mediator) error {
	return register(m,
		registration{&pipelineCommands.AssignCommand{}, pipelineCommands.NewAssignHandler(
			r.repos.Assignments, r.repos.StockBatches, r.repos.StockUsages, r.transactor, r.directory, r.catalog, r.clock)},
		registration{&pipelineCommands.CompleteStageCommand{}, pipelineCommands.NewCompleteStageHandler(r.repos.Assignments, r.transactor, r.clock)},
		registration{&pipelineCommands.FinalizeCommand{}, pipelineCommands.NewFinalizeHandler(
			r.repos.Assignments, r.repos.StockBatches, r.transactor, r.catalog, r.clock)},
		registration{&pipelineQueries.GetAssignmentQuery{}, pipelineQueries.NewGetAssignmentHandler(r.repos.Assignments, r.catalog)},
		registration{&pipelineQueries.ListAvailableQuery{}, pipelineQueries.NewListAvailableHandler(r.repos.Assignments, r.catalog)},
		registration{&pipelineQueries.ListLineageQuery{}, pipelineQueries.NewListLineageHandler(r.repos.Jobs, r.repos.Assignments, r.catalog)},
	)
}

// RegisterSubcontractHandlers registers external sends, receipts and the payable outbox
func (r *HandlerRegistry) RegisterSubcontractHandlers(m mediator.Mediator) error {
	return register(m,
		registration{&subcontractCommands.SendExternalCommand{}, subcontractCommands.NewSendExternalHandler(
			r.repos.Assignments, r.transactor, r.catalog, r.clock)},
		registration{&subcontractCommands.ReceiveExternalCommand{}, subcontractCommands.NewReceiveExternalHandler(
			r.repos.Assignments, r.repos.Payables, r.transactor, r.publisher, r.clock)},
		registration{&subcontractCommands.PublishPendingPayablesCommand{}, subcontractCommands.NewPublishPendingPayablesHandler(r.repos.Payables, r.publisher)},
		registration{&subcontractQueries.ListPayablesQuery{}, subcontractQueries.NewListPayablesHandler(r.repos.Payables)},
	)
}

// RegisterStockHandlers registers finished stock intake and substitution queries
func (r *HandlerRegistry) RegisterStockHandlers(m mediator.Mediator) error {
	return register(m,
		registration{&stockCommands.ImportStockCommand{}, stockCommands.NewImportStockHandler(r.repos.StockBatches, r.clock)},
		registration{&stockQueries.GetBatchQuery{}, stockQueries.NewGetBatchHandler(r.repos.StockBatches)},
		registration{&stockQueries.ListBatchesQuery{}, stockQueries.NewListBatchesHandler(r.repos.StockBatches)},
		registration{&stockQueries.SuggestSubstitutionQuery{}, stockQueries.NewSuggestSubstitutionHandler(
			r.repos.Jobs, r.repos.Assignments, r.repos.StockBatches)},
	)
}

// RegisterDispatchHandlers registers order intake, packing and dispatch
func (r *HandlerRegistry) RegisterDispatchHandlers(m mediator.Mediator) error {
	return register(m,
		registration{&dispatchCommands.CreateOrderCommand{}, dispatchCommands.NewCreateOrderHandler(r.repos.Orders, r.clock)},
		registration{&dispatchCommands.PackOrderCommand{}, dispatchCommands.NewPackOrderHandler(
			r.repos.Orders, r.repos.StockBatches, r.repos.StockUsages, r.transactor)},
		registration{&dispatchCommands.DispatchOrderCommand{}, dispatchCommands.NewDispatchOrderHandler(
			r.repos.Orders, r.repos.StockBatches, r.repos.StockUsages, r.transactor)},
		registration{&dispatchQueries.GetOrderStatusQuery{}, dispatchQueries.NewGetOrderStatusHandler(
			r.repos.Orders, r.repos.Jobs, r.repos.Assignments, r.repos.StockBatches, r.repos.StockUsages, r.catalog)},
		registration{&dispatchQueries.ListOrdersQuery{}, dispatchQueries.NewListOrdersHandler(
			r.repos.Orders, r.repos.Jobs, r.repos.Assignments, r.repos.StockBatches, r.repos.StockUsages, r.catalog)},
	)
}

// CreateConfiguredMediator creates a mediator with every handler registered.
// Middlewares are applied in the order given, the first one outermost.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middlewares {
		m.RegisterMiddleware(mw)
	}

	registrations := []func(mediator.Mediator) error{
		r.RegisterFabricHandlers,
		r.RegisterCuttingHandlers,
		r.RegisterPipelineHandlers,
		r.RegisterSubcontractHandlers,
		r.RegisterStockHandlers,
		r.RegisterDispatchHandlers,
	}
	for _, registerContext := range registrations {
		if err := registerContext(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
