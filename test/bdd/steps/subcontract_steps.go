package steps

import (
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	subcontractCommands "github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
	subcontractQueries "github.com/andrescamacho/garmentflow/internal/application/subcontract/queries"
)

func registerSubcontractSteps(sc *godog.ScenarioContext, ctx *productionContext) {
	sc.Step(`^`+sizesPattern+` of "([^"]*)" is sent to "([^"]*)" at `+lengthPattern+` per piece as "([^"]*)"$`, ctx.isSentToSubcontractor)
	sc.Step(`^"([^"]*)" returns `+sizesPattern+`$`, ctx.returns)
	sc.Step(`^"([^"]*)" should have received `+sizesPattern+`$`, ctx.shouldHaveReceived)
	sc.Step(`^"([^"]*)" should (not )?be fully received$`, ctx.shouldBeFullyReceived)
	sc.Step(`^a payable of (\d+) pieces totalling `+lengthPattern+` should be raised for "([^"]*)"$`, ctx.aPayableShouldBeRaised)
	sc.Step(`^"([^"]*)" should have (\d+) payables?$`, ctx.shouldHavePayables)
	sc.Step(`^the received quantities of "([^"]*)" should never have decreased$`, ctx.receivedShouldNeverHaveDecreased)
}

func (ctx *productionContext) isSentToSubcontractor(raw, parent, subcontractor, rate, alias string) error {
	q, err := parseSizes(raw)
	if err != nil {
		return err
	}
	parentID, err := lookup(ctx.assignments, "stage assignment", parent)
	if err != nil {
		return err
	}
	resp, err := mustSend[*subcontractCommands.SendExternalResponse](ctx, &subcontractCommands.SendExternalCommand{
		AssignmentID:  parentID,
		Subcontractor: subcontractor,
		RatePerPiece:  decimal.RequireFromString(rate),
		Quantities:    q,
	})
	if err != nil {
		return err
	}
	ctx.assignments[alias] = resp.ExternalID
	return nil
}

func (ctx *productionContext) returns(alias, raw string) error {
	q, err := parseSizes(raw)
	if err != nil {
		return err
	}
	externalID, err := lookup(ctx.assignments, "external job", alias)
	if err != nil {
		return err
	}
	ctx.lastReceipt, _ = send[*subcontractCommands.ReceiveExternalResponse](ctx, &subcontractCommands.ReceiveExternalCommand{
		AssignmentID: externalID, Quantities: q,
	})

	view, err := ctx.assignment(alias)
	if err != nil {
		return err
	}
	if view.External != nil {
		ctx.receipts[alias] = append(ctx.receipts[alias], view.External.Received.Clone())
	}
	return nil
}

func (ctx *productionContext) shouldHaveReceived(alias, raw string) error {
	view, err := ctx.assignment(alias)
	if err != nil {
		return err
	}
	if view.External == nil {
		return fmt.Errorf("%s is not an external job", alias)
	}
	return expectSizes(alias+" received", view.External.Received, raw)
}

func (ctx *productionContext) shouldBeFullyReceived(alias, not string) error {
	view, err := ctx.assignment(alias)
	if err != nil {
		return err
	}
	if view.External == nil {
		return fmt.Errorf("%s is not an external job", alias)
	}
	if want := not == ""; view.External.FullyReceived != want {
		return fmt.Errorf("expected %s fully received=%t, got %t", alias, want, view.External.FullyReceived)
	}
	return nil
}

func (ctx *productionContext) payables(subcontractor string) (*subcontractQueries.ListPayablesResponse, error) {
	saved := ctx.err
	resp, err := mustSend[*subcontractQueries.ListPayablesResponse](ctx, &subcontractQueries.ListPayablesQuery{Subcontractor: subcontractor})
	ctx.err = saved
	return resp, err
}

func (ctx *productionContext) aPayableShouldBeRaised(pieces int, amount, subcontractor string) error {
	resp, err := ctx.payables(subcontractor)
	if err != nil {
		return err
	}
	for _, p := range resp.Payables {
		if p.Quantity == pieces && p.Amount.Equal(decimal.RequireFromString(amount)) {
			return nil
		}
	}
	return fmt.Errorf("no payable of %d pieces totalling %s among %d payables for %s", pieces, amount, len(resp.Payables), subcontractor)
}

func (ctx *productionContext) shouldHavePayables(subcontractor string, count int) error {
	resp, err := ctx.payables(subcontractor)
	if err != nil {
		return err
	}
	if len(resp.Payables) != count {
		return fmt.Errorf("expected %d payables for %s, got %d", count, subcontractor, len(resp.Payables))
	}
	return nil
}

func (ctx *productionContext) receivedShouldNeverHaveDecreased(alias string) error {
	history := ctx.receipts[alias]
	for i := 1; i < len(history); i++ {
		prev, next := history[i-1], history[i]
		for size, qty := range prev {
			if next[size] < qty {
				return fmt.Errorf("received %s dropped from %d to %d after receipt %d", size, qty, next[size], i+1)
			}
		}
	}
	return nil
}
