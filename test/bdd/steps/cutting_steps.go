package steps

import (
	"fmt"

	"github.com/cucumber/godog"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	cuttingQueries "github.com/andrescamacho/garmentflow/internal/application/cutting/queries"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/garmentflow/internal/application/stock/queries"
)

const sizesPattern = `(\{[^}]*\})`

func registerCuttingSteps(sc *godog.ScenarioContext, ctx *productionContext) {
	sc.Step(`^a stock batch "([^"]*)" of "([^"]*)" holding `+sizesPattern+`$`, ctx.aStockBatchHolding)
	sc.Step(`^a cutting job "([^"]*)" for "([^"]*)" with target `+sizesPattern+`$`, ctx.aCuttingJobWithTarget)
	sc.Step(`^stock usage `+sizesPattern+` from batch "([^"]*)" is recorded on job "([^"]*)"$`, ctx.stockUsageIsRecordedOnJob)
	sc.Step(`^`+lengthPattern+` meters from roll "([^"]*)" are recorded on job "([^"]*)" for `+sizesPattern+`$`, ctx.fabricUsageIsRecordedForSizes)
	sc.Step(`^`+lengthPattern+` meters from roll "([^"]*)" are recorded on job "([^"]*)"$`, ctx.fabricUsageIsRecorded)
	sc.Step(`^job "([^"]*)" is completed$`, ctx.jobIsCompleted)
	sc.Step(`^stock batch "([^"]*)" should have `+sizesPattern+` available$`, ctx.stockBatchShouldHaveAvailable)
	sc.Step(`^job "([^"]*)" should have `+sizesPattern+` covered from stock$`, ctx.jobShouldHaveCoveredFromStock)
	sc.Step(`^job "([^"]*)" should be (OPEN|COMPLETED)$`, ctx.jobShouldBe)
	sc.Step(`^the first stage assignment of job "([^"]*)" should hold `+sizesPattern+`$`, ctx.theFirstStageAssignmentShouldHold)
	sc.Step(`^job "([^"]*)" should have no stage assignment$`, ctx.jobShouldHaveNoStageAssignment)
}

func (ctx *productionContext) aStockBatchHolding(alias, productID, raw string) error {
	q, err := parseSizes(raw)
	if err != nil {
		return err
	}
	resp, err := mustSend[*stockCommands.ImportStockResponse](ctx, &stockCommands.ImportStockCommand{
		ProductID: productID, Quantities: q,
	})
	if err != nil {
		return err
	}
	ctx.stockBatches[alias] = resp.StockBatchID
	return nil
}

func (ctx *productionContext) aCuttingJobWithTarget(alias, productID, raw string) error {
	target, err := parseSizes(raw)
	if err != nil {
		return err
	}
	resp, err := mustSend[*cuttingCommands.StartJobResponse](ctx, &cuttingCommands.StartJobCommand{
		ProductID: productID, Target: target, WorkerID: "cutter-1",
	})
	if err != nil {
		return err
	}
	ctx.jobs[alias] = resp.JobID
	return nil
}

func (ctx *productionContext) stockUsageIsRecordedOnJob(raw, batch, job string) error {
	q, err := parseSizes(raw)
	if err != nil {
		return err
	}
	batchID, err := lookup(ctx.stockBatches, "stock batch", batch)
	if err != nil {
		return err
	}
	jobID, err := lookup(ctx.jobs, "job", job)
	if err != nil {
		return err
	}
	_, _ = send[*cuttingCommands.RecordStockUsageResponse](ctx, &cuttingCommands.RecordStockUsageCommand{
		JobID: jobID, StockBatchID: batchID, Quantities: q,
	})
	return nil
}

func (ctx *productionContext) recordFabric(amount, roll, job, raw string) error {
	rollID, err := lookup(ctx.rolls, "roll", roll)
	if err != nil {
		return err
	}
	jobID, err := lookup(ctx.jobs, "job", job)
	if err != nil {
		return err
	}
	cmd := &cuttingCommands.RecordFabricUsageCommand{JobID: jobID, RollID: rollID, Amount: meters(amount)}
	if raw != "" {
		if cmd.Pieces, err = parseSizes(raw); err != nil {
			return err
		}
	}
	_, _ = send[*cuttingCommands.RecordFabricUsageResponse](ctx, cmd)
	return nil
}

func (ctx *productionContext) fabricUsageIsRecordedForSizes(amount, roll, job, raw string) error {
	return ctx.recordFabric(amount, roll, job, raw)
}

func (ctx *productionContext) fabricUsageIsRecorded(amount, roll, job string) error {
	return ctx.recordFabric(amount, roll, job, "")
}

func (ctx *productionContext) jobIsCompleted(job string) error {
	jobID, err := lookup(ctx.jobs, "job", job)
	if err != nil {
		return err
	}
	_, _ = send[*cuttingCommands.CompleteJobResponse](ctx, &cuttingCommands.CompleteJobCommand{JobID: jobID})
	return nil
}

func (ctx *productionContext) job(alias string) (*cuttingQueries.JobView, error) {
	jobID, err := lookup(ctx.jobs, "job", alias)
	if err != nil {
		return nil, err
	}
	saved := ctx.err
	view, err := mustSend[*cuttingQueries.JobView](ctx, &cuttingQueries.GetJobQuery{JobID: jobID})
	ctx.err = saved
	return view, err
}

func (ctx *productionContext) stockBatch(alias string) (*stockQueries.BatchView, error) {
	batchID, err := lookup(ctx.stockBatches, "stock batch", alias)
	if err != nil {
		return nil, err
	}
	saved := ctx.err
	view, err := mustSend[*stockQueries.BatchView](ctx, &stockQueries.GetBatchQuery{StockBatchID: batchID})
	ctx.err = saved
	return view, err
}

func (ctx *productionContext) stockBatchShouldHaveAvailable(alias, raw string) error {
	view, err := ctx.stockBatch(alias)
	if err != nil {
		return err
	}
	return expectSizes("stock batch "+alias+" available", view.Available, raw)
}

func (ctx *productionContext) jobShouldHaveCoveredFromStock(alias, raw string) error {
	view, err := ctx.job(alias)
	if err != nil {
		return err
	}
	return expectSizes("job "+alias+" stock coverage", view.StockCovered, raw)
}

func (ctx *productionContext) jobShouldBe(alias, status string) error {
	view, err := ctx.job(alias)
	if err != nil {
		return err
	}
	if view.Status != status {
		return fmt.Errorf("expected job %s to be %s, got %s", alias, status, view.Status)
	}
	return nil
}

func (ctx *productionContext) theFirstStageAssignmentShouldHold(alias, raw string) error {
	view, err := ctx.job(alias)
	if err != nil {
		return err
	}
	if view.StageOneID == "" {
		return fmt.Errorf("job %s has no stage assignment", alias)
	}
	saved := ctx.err
	assignment, err := mustSend[*pipelineQueries.AssignmentView](ctx, &pipelineQueries.GetAssignmentQuery{AssignmentID: view.StageOneID})
	ctx.err = saved
	if err != nil {
		return err
	}
	if assignment.StageIndex != 1 {
		return fmt.Errorf("expected stage index 1, got %d", assignment.StageIndex)
	}
	return expectSizes("first stage remaining", assignment.Remaining, raw)
}

func (ctx *productionContext) jobShouldHaveNoStageAssignment(alias string) error {
	view, err := ctx.job(alias)
	if err != nil {
		return err
	}
	if view.StageOneID != "" {
		return fmt.Errorf("expected no stage assignment, got %s", view.StageOneID)
	}
	return nil
}
