package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/adapters/persistence"
	"github.com/andrescamacho/garmentflow/internal/application/common"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/application/setup"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// DefaultStages is the stage catalog used by tests unless overridden
var DefaultStages = []string{"cutting", "stitching", "washing", "packing"}

// TestRepositories holds all real repository instances for integration tests
type TestRepositories struct {
	DB         *gorm.DB
	Repos      setup.Repositories
	Transactor *persistence.GormTransactor
}

// NewTestRepositories creates every GORM repository on db
// clock is used for time-sensitive operations (usually a MockClock in tests)
func NewTestRepositories(db *gorm.DB, clock shared.Clock) *TestRepositories {
	return &TestRepositories{
		DB: db,
		Repos: setup.Repositories{
			FabricBatches: persistence.NewGormFabricBatchRepository(db),
			Rolls:         persistence.NewGormRollRepository(db),
			Jobs:          persistence.NewGormJobRepository(db),
			Assignments:   persistence.NewGormAssignmentRepository(db),
			Payables:      persistence.NewGormPayableRepository(db, clock),
			StockBatches:  persistence.NewGormStockBatchRepository(db),
			StockUsages:   persistence.NewGormStockUsageRepository(db),
			Orders:        persistence.NewGormOrderRepository(db),
		},
		Transactor: persistence.NewGormTransactor(db),
	}
}

// TestEngine is a fully wired mediator over an in-memory database
type TestEngine struct {
	*TestRepositories
	Mediator  mediator.Mediator
	Catalog   *pipeline.StageCatalog
	Clock     *shared.MockClock
	Directory *MockEmployeeDirectory
	Publisher *MockPayablePublisher
}

// EngineOption customizes NewTestEngine
type EngineOption func(*engineOptions)

type engineOptions struct {
	stages    []string
	directory common.EmployeeDirectory
	publisher common.PayablePublisher
}

// WithStages overrides the stage catalog
func WithStages(names ...string) EngineOption {
	return func(o *engineOptions) { o.stages = names }
}

// WithoutCollaborators disables worker validation and event publishing
func WithoutCollaborators() EngineOption {
	return func(o *engineOptions) {
		o.directory = nil
		o.publisher = nil
	}
}

// NewTestEngine wires every handler against a fresh sqlite database.
// The mock directory starts empty with validation enabled; add workers before use.
func NewTestEngine(t *testing.T, opts ...EngineOption) *TestEngine {
	engine, err := NewEngine(NewTestDB(t), opts...)
	require.NoError(t, err)
	return engine
}

// NewEngine wires every handler against db. BDD scenarios share one database
// and call it after TruncateAllTables.
func NewEngine(db *gorm.DB, opts ...EngineOption) (*TestEngine, error) {
	clock := shared.NewMockClock(TestEpoch)
	directory := NewMockEmployeeDirectory()
	publisher := NewMockPayablePublisher()

	options := &engineOptions{stages: DefaultStages, directory: directory, publisher: publisher}
	for _, opt := range opts {
		opt(options)
	}

	catalog, err := pipeline.NewStageCatalog(options.stages)
	if err != nil {
		return nil, err
	}

	repos := NewTestRepositories(db, clock)
	registry := setup.NewHandlerRegistry(repos.Repos, repos.Transactor, catalog, options.directory, options.publisher, clock)
	m, err := registry.CreateConfiguredMediator()
	if err != nil {
		return nil, err
	}

	return &TestEngine{
		TestRepositories: repos,
		Mediator:         m,
		Catalog:          catalog,
		Clock:            clock,
		Directory:        directory,
		Publisher:        publisher,
	}, nil
}

// HireWorkers registers active employees in the mock directory
func (e *TestEngine) HireWorkers(ids ...string) {
	for _, id := range ids {
		e.Directory.AddEmployee(common.Employee{ID: id, Name: id, Active: true})
	}
}
