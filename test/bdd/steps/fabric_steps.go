package steps

import (
	"fmt"

	"github.com/cucumber/godog"

	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	fabricQueries "github.com/andrescamacho/garmentflow/internal/application/fabric/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

const lengthPattern = `(\d+(?:\.\d+)?)`

func registerFabricSteps(sc *godog.ScenarioContext, ctx *productionContext) {
	sc.Step(`^a fabric roll "([^"]*)" with `+lengthPattern+` meters remaining$`, ctx.aFabricRollWithMetersRemaining)
	sc.Step(`^a legacy fabric roll "([^"]*)" of `+lengthPattern+` meters with `+lengthPattern+` meters remaining$`, ctx.aLegacyFabricRoll)
	sc.Step(`^job "([^"]*)" reserves `+lengthPattern+` meters from roll "([^"]*)"$`, ctx.jobReservesMetersFromRoll)
	sc.Step(`^roll "([^"]*)" should have `+lengthPattern+` meters remaining$`, ctx.rollShouldHaveMetersRemaining)
	sc.Step(`^roll "([^"]*)" should have (\d+) usage records?$`, ctx.rollShouldHaveUsageRecords)
	sc.Step(`^roll "([^"]*)" should (not )?be exhausted$`, ctx.rollShouldBeExhausted)
	sc.Step(`^I look up how much of roll "([^"]*)" job "([^"]*)" used$`, ctx.iLookUpHistoricalUsage)
	sc.Step(`^the reported usage should be `+lengthPattern+` meters$`, ctx.theReportedUsageShouldBe)
	sc.Step(`^the reported usage should (not )?be flagged as derived$`, ctx.theReportedUsageShouldBeFlagged)
}

func (ctx *productionContext) aFabricRollWithMetersRemaining(alias, length string) error {
	batchID, err := ctx.fabricBatch()
	if err != nil {
		return err
	}
	resp, err := mustSend[*fabricCommands.IntakeRollResponse](ctx, &fabricCommands.IntakeRollCommand{
		BatchID: batchID, Length: meters(length),
	})
	if err != nil {
		return err
	}
	ctx.rolls[alias] = resp.RollID
	return nil
}

func (ctx *productionContext) aLegacyFabricRoll(alias, original, remaining string) error {
	batchID, err := ctx.fabricBatch()
	if err != nil {
		return err
	}
	resp, err := mustSend[*fabricCommands.ImportLegacyRollResponse](ctx, &fabricCommands.ImportLegacyRollCommand{
		BatchID: batchID, OriginalLength: meters(original), RemainingLength: meters(remaining),
	})
	if err != nil {
		return err
	}
	ctx.rolls[alias] = resp.RollID
	return nil
}

// jobID resolves a job alias, falling back to the literal for jobs outside the scenario
func (ctx *productionContext) jobID(alias string) string {
	if id, ok := ctx.jobs[alias]; ok {
		return id
	}
	return alias
}

func (ctx *productionContext) jobReservesMetersFromRoll(job, amount, roll string) error {
	rollID, err := lookup(ctx.rolls, "roll", roll)
	if err != nil {
		return err
	}
	_, _ = send[*fabricCommands.ReserveUsageResponse](ctx, &fabricCommands.ReserveUsageCommand{
		RollID: rollID, JobID: ctx.jobID(job), Amount: meters(amount),
	})
	return nil
}

func (ctx *productionContext) roll(alias string) (*fabricQueries.RollView, error) {
	rollID, err := lookup(ctx.rolls, "roll", alias)
	if err != nil {
		return nil, err
	}
	saved := ctx.err
	view, err := mustSend[*fabricQueries.RollView](ctx, &fabricQueries.GetRollQuery{RollID: rollID})
	ctx.err = saved
	return view, err
}

func (ctx *productionContext) rollShouldHaveMetersRemaining(alias, length string) error {
	view, err := ctx.roll(alias)
	if err != nil {
		return err
	}
	if !view.RemainingLength.Equal(meters(length)) {
		return fmt.Errorf("expected roll %s to have %s m remaining, got %s", alias, length, view.RemainingLength)
	}
	return nil
}

func (ctx *productionContext) rollShouldHaveUsageRecords(alias string, count int) error {
	view, err := ctx.roll(alias)
	if err != nil {
		return err
	}
	if len(view.Usages) != count {
		return fmt.Errorf("expected roll %s to have %d usage records, got %d", alias, count, len(view.Usages))
	}
	return nil
}

func (ctx *productionContext) rollShouldBeExhausted(alias, not string) error {
	view, err := ctx.roll(alias)
	if err != nil {
		return err
	}
	if want := not == ""; view.Exhausted != want {
		return fmt.Errorf("expected roll %s exhausted=%t, got %t", alias, want, view.Exhausted)
	}
	return nil
}

func (ctx *productionContext) iLookUpHistoricalUsage(roll, job string) error {
	rollID, err := lookup(ctx.rolls, "roll", roll)
	if err != nil {
		return err
	}
	usage, err := mustSend[*fabric.HistoricalUsage](ctx, &fabricQueries.GetHistoricalUsageQuery{
		RollID: rollID, JobID: ctx.jobID(job),
	})
	if err != nil {
		return err
	}
	ctx.lastUsage = usage
	return nil
}

func (ctx *productionContext) theReportedUsageShouldBe(amount string) error {
	if ctx.lastUsage == nil {
		return fmt.Errorf("no usage was looked up")
	}
	if !ctx.lastUsage.Amount.Equal(meters(amount)) {
		return fmt.Errorf("expected usage of %s m, got %s", amount, ctx.lastUsage.Amount)
	}
	return nil
}

func (ctx *productionContext) theReportedUsageShouldBeFlagged(not string) error {
	if ctx.lastUsage == nil {
		return fmt.Errorf("no usage was looked up")
	}
	want := not == ""
	if ctx.lastUsage.Derived != want {
		return fmt.Errorf("expected derived=%t, got %t", want, ctx.lastUsage.Derived)
	}
	if want && ctx.lastUsage.Warning == "" {
		return fmt.Errorf("derived usage carries no warning")
	}
	return nil
}
