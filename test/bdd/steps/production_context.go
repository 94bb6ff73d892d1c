package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	subcontractCommands "github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/test/helpers"
)

// productionContext carries one scenario's engine and the aliases its steps use
type productionContext struct {
	engine *helpers.TestEngine

	fabricBatchID string
	rolls         map[string]string
	jobs          map[string]string
	assignments   map[string]string
	stockBatches  map[string]string
	orders        map[string]string
	orderLines    map[string]string
	orderTargets  map[string]shared.QuantityMap

	err          error
	lastAssign   *pipelineCommands.AssignResponse
	lastUsage    *fabric.HistoricalUsage
	lastReceipt  *subcontractCommands.ReceiveExternalResponse
	receipts     map[string][]shared.QuantityMap
	packSnapshot map[string]shared.QuantityMap
}

func (ctx *productionContext) reset(stages ...string) error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	opts := []helpers.EngineOption{helpers.WithoutCollaborators()}
	if len(stages) > 0 {
		opts = append(opts, helpers.WithStages(stages...))
	}
	engine, err := helpers.NewEngine(helpers.SharedTestDB, opts...)
	if err != nil {
		return err
	}

	ctx.engine = engine
	ctx.fabricBatchID = ""
	ctx.rolls = make(map[string]string)
	ctx.jobs = make(map[string]string)
	ctx.assignments = make(map[string]string)
	ctx.stockBatches = make(map[string]string)
	ctx.orders = make(map[string]string)
	ctx.orderLines = make(map[string]string)
	ctx.orderTargets = make(map[string]shared.QuantityMap)
	ctx.err = nil
	ctx.lastAssign = nil
	ctx.lastUsage = nil
	ctx.lastReceipt = nil
	ctx.receipts = make(map[string][]shared.QuantityMap)
	ctx.packSnapshot = nil
	return nil
}

// InitializeProductionScenario registers every production engine step
func InitializeProductionScenario(sc *godog.ScenarioContext) {
	ctx := &productionContext{}

	sc.Before(func(c context.Context, s *godog.Scenario) (context.Context, error) {
		return c, ctx.reset()
	})

	sc.Step(`^the pipeline stages are "([^"]*)"$`, ctx.thePipelineStagesAre)
	sc.Step(`^the operation should succeed$`, ctx.theOperationShouldSucceed)
	sc.Step(`^the operation should fail with "([^"]*)"$`, ctx.theOperationShouldFailWith)

	registerFabricSteps(sc, ctx)
	registerCuttingSteps(sc, ctx)
	registerPipelineSteps(sc, ctx)
	registerSubcontractSteps(sc, ctx)
	registerDispatchSteps(sc, ctx)
	registerPropertySteps(sc, ctx)
}

func (ctx *productionContext) thePipelineStagesAre(names string) error {
	var stages []string
	for _, name := range strings.Split(names, ",") {
		stages = append(stages, strings.TrimSpace(name))
	}
	return ctx.reset(stages...)
}

func (ctx *productionContext) theOperationShouldSucceed() error {
	if ctx.err != nil {
		return fmt.Errorf("expected success, got: %w", ctx.err)
	}
	return nil
}

func (ctx *productionContext) theOperationShouldFailWith(code string) error {
	if ctx.err == nil {
		return fmt.Errorf("expected %s error, but the operation succeeded", code)
	}
	if got := shared.CodeOf(ctx.err); string(got) != code {
		return fmt.Errorf("expected %s error, got %q: %v", code, got, ctx.err)
	}
	return nil
}

// send dispatches request and records its error for later assertions
func send[T any](ctx *productionContext, request mediator.Request) (T, error) {
	var zero T
	resp, err := ctx.engine.Mediator.Send(context.Background(), request)
	ctx.err = err
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected response type %T", resp)
	}
	return typed, nil
}

// mustSend is send for Given steps, where any failure breaks the scenario
func mustSend[T any](ctx *productionContext, request mediator.Request) (T, error) {
	resp, err := send[T](ctx, request)
	if err != nil {
		return resp, fmt.Errorf("%s failed: %w", mediator.RequestName(request), err)
	}
	return resp, nil
}

func lookup(aliases map[string]string, kind, alias string) (string, error) {
	id, ok := aliases[alias]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", kind, alias)
	}
	return id, nil
}

// parseSizes reads "{S:10, M:20}"
func parseSizes(raw string) (shared.QuantityMap, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")

	q := shared.QuantityMap{}
	if strings.TrimSpace(body) == "" {
		return q, nil
	}
	for _, pair := range strings.Split(body, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid size pair %q in %s", pair, raw)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %s: %w", raw, err)
		}
		q[strings.TrimSpace(parts[0])] = qty
	}
	return q, nil
}

func expectSizes(what string, got shared.QuantityMap, raw string) error {
	want, err := parseSizes(raw)
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("expected %s to be %s, got %s", what, want, got)
	}
	return nil
}

func meters(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

// fabricBatch registers the scenario's fabric batch on first use
func (ctx *productionContext) fabricBatch() (string, error) {
	if ctx.fabricBatchID != "" {
		return ctx.fabricBatchID, nil
	}
	resp, err := mustSend[*fabricCommands.RegisterBatchResponse](ctx, &fabricCommands.RegisterBatchCommand{
		FabricType: "cotton", Color: "navy", Design: "plain", Quality: "A",
	})
	if err != nil {
		return "", err
	}
	ctx.fabricBatchID = resp.BatchID
	return resp.BatchID, nil
}

// cutToStageOne opens a job for target, cuts it from a fresh roll and returns
// the job id and its first stage assignment
func (ctx *productionContext) cutToStageOne(orderLineID, productID string, target shared.QuantityMap) (string, string, error) {
	batchID, err := ctx.fabricBatch()
	if err != nil {
		return "", "", err
	}
	roll, err := mustSend[*fabricCommands.IntakeRollResponse](ctx, &fabricCommands.IntakeRollCommand{
		BatchID: batchID, Length: decimal.NewFromInt(100),
	})
	if err != nil {
		return "", "", err
	}
	job, err := mustSend[*cuttingCommands.StartJobResponse](ctx, &cuttingCommands.StartJobCommand{
		OrderLineID: orderLineID, ProductID: productID, Target: target, WorkerID: "cutter-1",
	})
	if err != nil {
		return "", "", err
	}
	if _, err := mustSend[*cuttingCommands.RecordFabricUsageResponse](ctx, &cuttingCommands.RecordFabricUsageCommand{
		JobID: job.JobID, RollID: roll.RollID, Amount: decimal.NewFromInt(int64(target.Total())),
	}); err != nil {
		return "", "", err
	}
	completed, err := mustSend[*cuttingCommands.CompleteJobResponse](ctx, &cuttingCommands.CompleteJobCommand{JobID: job.JobID})
	if err != nil {
		return "", "", err
	}
	return job.JobID, completed.StageOneID, nil
}
