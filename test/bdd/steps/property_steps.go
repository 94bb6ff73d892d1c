package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
	"github.com/andrescamacho/garmentflow/internal/domain/stock"
)

func registerPropertySteps(sc *godog.ScenarioContext, ctx *productionContext) {
	sc.Step(`^every piece of job "([^"]*)" should be accounted for$`, ctx.everyPieceShouldBeAccountedFor)
	sc.Step(`^no quantity in the lineage of job "([^"]*)" should be negative$`, ctx.noQuantityShouldBeNegative)
}

func (ctx *productionContext) lineage(job string) ([]pipelineQueries.AssignmentView, error) {
	jobID, err := lookup(ctx.jobs, "job", job)
	if err != nil {
		return nil, err
	}
	saved := ctx.err
	resp, err := mustSend[*pipelineQueries.ListLineageResponse](ctx, &pipelineQueries.ListLineageQuery{JobID: jobID})
	ctx.err = saved
	if err != nil {
		return nil, err
	}
	return resp.Assignments, nil
}

// everyPieceShouldBeAccountedFor checks that the pieces still held by the
// lineage, the stock it produced and the stock substituted into it add up to
// the job target, per size
func (ctx *productionContext) everyPieceShouldBeAccountedFor(job string) error {
	view, err := ctx.job(job)
	if err != nil {
		return err
	}
	assignments, err := ctx.lineage(job)
	if err != nil {
		return err
	}

	held := view.Target.ZeroLike()
	inLineage := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		held = held.Add(a.Remaining)
		inLineage[a.ID] = true
	}

	produced := view.Target.ZeroLike()
	batches, err := ctx.engine.Repos.StockBatches.List(context.Background(), stock.BatchFilter{ProductID: view.ProductID})
	if err != nil {
		return err
	}
	for _, b := range batches {
		if inLineage[b.SourceAssignmentID()] {
			produced = produced.Add(b.Produced())
		}
	}

	substituted := view.Target.ZeroLike()
	usages, err := ctx.engine.Repos.StockUsages.FindByJob(context.Background(), view.ID)
	if err != nil {
		return err
	}
	for _, u := range usages {
		substituted = substituted.Add(u.Quantities())
	}

	total := shared.SumQuantities(held, produced, substituted)
	if !total.Equal(view.Target) {
		return fmt.Errorf("job %s target %s but lineage holds %s, produced %s, substituted %s",
			job, view.Target, held, produced, substituted)
	}
	return nil
}

func (ctx *productionContext) noQuantityShouldBeNegative(job string) error {
	assignments, err := ctx.lineage(job)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if err := nonNegative("remaining of "+a.ID, a.Remaining); err != nil {
			return err
		}
		if a.External != nil {
			if err := nonNegative("outstanding of "+a.ID, a.External.Outstanding); err != nil {
				return err
			}
		}
	}

	batches, err := ctx.engine.Repos.StockBatches.List(context.Background(), stock.BatchFilter{})
	if err != nil {
		return err
	}
	for _, b := range batches {
		if err := nonNegative("available of stock batch "+b.ID(), b.Available()); err != nil {
			return err
		}
	}

	for alias := range ctx.rolls {
		roll, err := ctx.roll(alias)
		if err != nil {
			return err
		}
		if roll.RemainingLength.IsNegative() {
			return fmt.Errorf("roll %s has negative remaining length %s", alias, roll.RemainingLength)
		}
	}
	return nil
}

func nonNegative(what string, q shared.QuantityMap) error {
	for size, qty := range q {
		if qty < 0 {
			return fmt.Errorf("%s is negative for size %s: %d", what, size, qty)
		}
	}
	return nil
}
