package steps

import (
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/pipeline"
)

func registerPipelineSteps(sc *godog.ScenarioContext, ctx *productionContext) {
	sc.Step(`^a stage assignment "([^"]*)" for "([^"]*)" holding `+sizesPattern+`$`, ctx.aStageAssignmentHolding)
	sc.Step(`^"([^"]*)" is assigned to worker "([^"]*)" for `+sizesPattern+` with stock `+sizesPattern+` from batch "([^"]*)"$`, ctx.isAssignedWithStock)
	sc.Step(`^"([^"]*)" is assigned to worker "([^"]*)" for `+sizesPattern+`$`, ctx.isAssignedToWorker)
	sc.Step(`^"([^"]*)" is covered with stock `+sizesPattern+` from batch "([^"]*)"$`, ctx.isCoveredWithStock)
	sc.Step(`^the new assignment "([^"]*)" should be at stage (\d+) holding `+sizesPattern+`$`, ctx.theNewAssignmentShouldBeAtStage)
	sc.Step(`^no new assignment should be created$`, ctx.noNewAssignmentShouldBeCreated)
	sc.Step(`^the transition should (not )?be auto-fulfilled$`, ctx.theTransitionShouldBeAutoFulfilled)
	sc.Step(`^stage assignment "([^"]*)" should hold `+sizesPattern+`$`, ctx.stageAssignmentShouldHold)
	sc.Step(`^stage assignment "([^"]*)" should be (ACTIVE|PROCESSED_AWAITING_NEXT|COMPLETED)$`, ctx.stageAssignmentShouldBe)
	sc.Step(`^stage assignment "([^"]*)" should (not )?be available for assignment$`, ctx.stageAssignmentShouldBeAvailable)
	sc.Step(`^work on "([^"]*)" is completed$`, ctx.workIsCompleted)
	sc.Step(`^"([^"]*)" is finalized into stock batch "([^"]*)"$`, ctx.isFinalizedIntoStockBatch)
	sc.Step(`^"([^"]*)" is finalized$`, ctx.isFinalized)
}

func (ctx *productionContext) aStageAssignmentHolding(alias, productID, raw string) error {
	target, err := parseSizes(raw)
	if err != nil {
		return err
	}
	jobID, stageOne, err := ctx.cutToStageOne("", productID, target)
	if err != nil {
		return err
	}
	ctx.jobs[alias] = jobID
	ctx.assignments[alias] = stageOne
	return nil
}

func (ctx *productionContext) assign(alias string, workers []pipelineCommands.WorkerShare, stockRaw, batch string) error {
	assignmentID, err := lookup(ctx.assignments, "stage assignment", alias)
	if err != nil {
		return err
	}
	cmd := &pipelineCommands.AssignCommand{AssignmentID: assignmentID, Workers: workers}
	if batch != "" {
		if cmd.StockBatchID, err = lookup(ctx.stockBatches, "stock batch", batch); err != nil {
			return err
		}
		if cmd.StockUsage, err = parseSizes(stockRaw); err != nil {
			return err
		}
	}
	ctx.lastAssign, _ = send[*pipelineCommands.AssignResponse](ctx, cmd)
	return nil
}

func workerShare(worker, raw string) ([]pipelineCommands.WorkerShare, error) {
	q, err := parseSizes(raw)
	if err != nil {
		return nil, err
	}
	return []pipelineCommands.WorkerShare{{
		WorkerID: worker, Quantities: q, RatePerPiece: decimal.RequireFromString("0.50"),
	}}, nil
}

func (ctx *productionContext) isAssignedWithStock(alias, worker, raw, stockRaw, batch string) error {
	workers, err := workerShare(worker, raw)
	if err != nil {
		return err
	}
	return ctx.assign(alias, workers, stockRaw, batch)
}

func (ctx *productionContext) isAssignedToWorker(alias, worker, raw string) error {
	workers, err := workerShare(worker, raw)
	if err != nil {
		return err
	}
	return ctx.assign(alias, workers, "", "")
}

func (ctx *productionContext) isCoveredWithStock(alias, stockRaw, batch string) error {
	return ctx.assign(alias, nil, stockRaw, batch)
}

func (ctx *productionContext) assignment(alias string) (*pipelineQueries.AssignmentView, error) {
	assignmentID, err := lookup(ctx.assignments, "stage assignment", alias)
	if err != nil {
		return nil, err
	}
	saved := ctx.err
	view, err := mustSend[*pipelineQueries.AssignmentView](ctx, &pipelineQueries.GetAssignmentQuery{AssignmentID: assignmentID})
	ctx.err = saved
	return view, err
}

func (ctx *productionContext) theNewAssignmentShouldBeAtStage(alias string, stage int, raw string) error {
	if ctx.lastAssign == nil || ctx.lastAssign.ChildID == "" {
		return fmt.Errorf("the last assignment created no new stage assignment")
	}
	ctx.assignments[alias] = ctx.lastAssign.ChildID
	view, err := ctx.assignment(alias)
	if err != nil {
		return err
	}
	if view.StageIndex != stage {
		return fmt.Errorf("expected %s at stage %d, got %d", alias, stage, view.StageIndex)
	}
	return expectSizes(alias+" remaining", view.Remaining, raw)
}

func (ctx *productionContext) noNewAssignmentShouldBeCreated() error {
	if ctx.lastAssign == nil {
		return fmt.Errorf("no assignment was made")
	}
	if ctx.lastAssign.ChildID != "" {
		return fmt.Errorf("expected no new assignment, got %s", ctx.lastAssign.ChildID)
	}
	return nil
}

func (ctx *productionContext) theTransitionShouldBeAutoFulfilled(not string) error {
	if ctx.lastAssign == nil {
		return fmt.Errorf("no assignment was made")
	}
	if want := not == ""; ctx.lastAssign.AutoFulfilled != want {
		return fmt.Errorf("expected auto-fulfilled=%t, got %t", want, ctx.lastAssign.AutoFulfilled)
	}
	return nil
}

func (ctx *productionContext) stageAssignmentShouldHold(alias, raw string) error {
	view, err := ctx.assignment(alias)
	if err != nil {
		return err
	}
	return expectSizes(alias+" remaining", view.Remaining, raw)
}

func (ctx *productionContext) stageAssignmentShouldBe(alias, status string) error {
	view, err := ctx.assignment(alias)
	if err != nil {
		return err
	}
	if view.Status != status {
		return fmt.Errorf("expected %s to be %s, got %s", alias, status, view.Status)
	}
	return nil
}

func (ctx *productionContext) stageAssignmentShouldBeAvailable(alias, not string) error {
	assignmentID, err := lookup(ctx.assignments, "stage assignment", alias)
	if err != nil {
		return err
	}
	saved := ctx.err
	resp, err := mustSend[*pipelineQueries.ListAvailableResponse](ctx, &pipelineQueries.ListAvailableQuery{})
	ctx.err = saved
	if err != nil {
		return err
	}

	listed := false
	for _, v := range resp.Assignments {
		if v.ID == assignmentID {
			listed = true
		}
	}
	if want := not == ""; listed != want {
		return fmt.Errorf("expected %s listed as available=%t, got %t", alias, want, listed)
	}
	return nil
}

func (ctx *productionContext) workIsCompleted(alias string) error {
	assignmentID, err := lookup(ctx.assignments, "stage assignment", alias)
	if err != nil {
		return err
	}
	_, _ = send[*pipelineCommands.CompleteStageResponse](ctx, &pipelineCommands.CompleteStageCommand{AssignmentID: assignmentID})
	return nil
}

func (ctx *productionContext) finalize(alias string) (*pipelineCommands.FinalizeResponse, error) {
	assignmentID, err := lookup(ctx.assignments, "stage assignment", alias)
	if err != nil {
		return nil, err
	}
	resp, _ := send[*pipelineCommands.FinalizeResponse](ctx, &pipelineCommands.FinalizeCommand{AssignmentID: assignmentID})
	return resp, nil
}

func (ctx *productionContext) isFinalizedIntoStockBatch(alias, batch string) error {
	resp, err := ctx.finalize(alias)
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("finalize failed: %w", ctx.err)
	}
	ctx.stockBatches[batch] = resp.StockBatchID
	return nil
}

func (ctx *productionContext) isFinalized(alias string) error {
	_, err := ctx.finalize(alias)
	return err
}

// advance pushes every piece of assignment through the remaining in-house
// stages and finalizes it at the terminal stage
func (ctx *productionContext) advance(assignmentID string) error {
	for {
		view, err := mustSend[*pipelineQueries.AssignmentView](ctx, &pipelineQueries.GetAssignmentQuery{AssignmentID: assignmentID})
		if err != nil {
			return err
		}
		if view.StageIndex == ctx.engine.Catalog.Terminal() {
			if view.Status == string(pipeline.AssignmentStatusActive) {
				if _, err := mustSend[*pipelineCommands.CompleteStageResponse](ctx, &pipelineCommands.CompleteStageCommand{AssignmentID: assignmentID}); err != nil {
					return err
				}
			}
			_, err := mustSend[*pipelineCommands.FinalizeResponse](ctx, &pipelineCommands.FinalizeCommand{AssignmentID: assignmentID})
			return err
		}

		if view.Status == string(pipeline.AssignmentStatusActive) {
			if _, err := mustSend[*pipelineCommands.CompleteStageResponse](ctx, &pipelineCommands.CompleteStageCommand{AssignmentID: assignmentID}); err != nil {
				return err
			}
		}
		assigned, err := mustSend[*pipelineCommands.AssignResponse](ctx, &pipelineCommands.AssignCommand{
			AssignmentID: assignmentID,
			Workers: []pipelineCommands.WorkerShare{{
				WorkerID: "worker-1", Quantities: view.Remaining, RatePerPiece: decimal.RequireFromString("0.50"),
			}},
		})
		if err != nil {
			return err
		}
		assignmentID = assigned.ChildID
	}
}
