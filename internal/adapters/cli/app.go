package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/adapters/directory"
	"github.com/andrescamacho/garmentflow/internal/adapters/events"
	"github.com/andrescamacho/garmentflow/internal/adapters/metrics"
	"github.com/andrescamacho/garmentflow/internal/adapters/persistence"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/application/setup"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/database"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/logging"
)

// app is the composition root shared by every command
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	db        *gorm.DB
	catalog   *pipeline.StageCatalog
	mediator  mediator.Mediator
	directory *directory.Client
	publisher *events.PayablePublisher
	closers   []io.Closer
}

type appOptions struct {
	metrics bool
}

// openApp loads configuration, connects to the database and wires the mediator
func openApp(opts appOptions) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	a.catalog, err = pipeline.NewStageCatalog(cfg.Pipeline.Stages)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid pipeline stages: %w", err)
	}

	a.db, err = database.NewConnection(&cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var employees common.EmployeeDirectory
	if cfg.Directory.Enabled {
		a.directory = directory.NewClient(cfg.Directory, nil)
		employees = a.directory
	}

	var payables common.PayablePublisher
	if cfg.Events.Enabled {
		a.publisher, err = events.Connect(cfg.Events, logger)
		if err != nil {
			// Receipts still commit; payables wait in the outbox
			logger.Warn().Err(err).Msg("payable publishing disabled")
		} else {
			payables = a.publisher
			a.closers = append(a.closers, a.publisher)
		}
	}

	middlewares := []mediator.Middleware{common.LoggingMiddleware(logger)}
	if opts.metrics && cfg.Metrics.Enabled {
		collector, err := initMetrics()
		if err != nil {
			a.Close()
			return nil, err
		}
		middlewares = append(middlewares, metrics.PrometheusMiddleware(collector))
	}

	clock := shared.NewRealClock()
	repos := setup.Repositories{
		FabricBatches: persistence.NewGormFabricBatchRepository(a.db),
		Rolls:         persistence.NewGormRollRepository(a.db),
		Jobs:          persistence.NewGormJobRepository(a.db),
		Assignments:   persistence.NewGormAssignmentRepository(a.db),
		Payables:      persistence.NewGormPayableRepository(a.db, clock),
		StockBatches:  persistence.NewGormStockBatchRepository(a.db),
		StockUsages:   persistence.NewGormStockUsageRepository(a.db),
		Orders:        persistence.NewGormOrderRepository(a.db),
	}
	registry := setup.NewHandlerRegistry(repos, persistence.NewGormTransactor(a.db), a.catalog, employees, payables, clock)
	a.mediator, err = registry.CreateConfiguredMediator(middlewares...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to configure mediator: %w", err)
	}

	return a, nil
}

func initMetrics() (*metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()

	engine := metrics.NewEngineMetricsCollector()
	if err := engine.Register(); err != nil {
		return nil, fmt.Errorf("failed to register engine metrics: %w", err)
	}
	metrics.SetGlobalEngineCollector(engine)

	api := metrics.NewAPIMetricsCollector()
	if err := api.Register(); err != nil {
		return nil, fmt.Errorf("failed to register API metrics: %w", err)
	}
	metrics.SetGlobalAPICollector(api)

	commands := metrics.NewCommandMetricsCollector()
	if err := commands.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return commands, nil
}

// context returns a context carrying the app logger
func (a *app) context() context.Context {
	return common.WithLogger(context.Background(), a.logger)
}

// send dispatches a request and asserts the response type
func send[T any](a *app, request mediator.Request) (T, error) {
	var zero T
	response, err := a.mediator.Send(a.context(), request)
	if err != nil {
		return zero, err
	}
	typed, ok := response.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected response type %T", response)
	}
	return typed, nil
}

// Close releases the database, NATS connection and log file
func (a *app) Close() {
	if a.db != nil {
		_ = database.Close(a.db)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if a.closers[i] != nil {
			_ = a.closers[i].Close()
		}
	}
}

// withApp opens the app for the duration of fn
func withApp(fn func(a *app) error) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
