package steps

import (
	"fmt"

	"github.com/cucumber/godog"

	dispatchCommands "github.com/andrescamacho/garmentflow/internal/application/dispatch/commands"
	dispatchQueries "github.com/andrescamacho/garmentflow/internal/application/dispatch/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

func registerDispatchSteps(sc *godog.ScenarioContext, ctx *productionContext) {
	sc.Step(`^an order "([^"]*)" from "([^"]*)" for "([^"]*)" with `+sizesPattern+`$`, ctx.anOrderFor)
	sc.Step(`^an order "([^"]*)" from "([^"]*)" with lines:$`, ctx.anOrderWithLines)
	sc.Step(`^line (\d+) of order "([^"]*)" is produced through every stage$`, ctx.lineIsProducedThroughEveryStage)
	sc.Step(`^line (\d+) of order "([^"]*)" is cut into stage one as "([^"]*)"$`, ctx.lineIsCutIntoStageOne)
	sc.Step(`^order "([^"]*)" is packed$`, ctx.orderIsPacked)
	sc.Step(`^order "([^"]*)" is dispatched$`, ctx.orderIsDispatched)
	sc.Step(`^order "([^"]*)" should be (PENDING|PACKED|DELIVERED|COMPLETED|[a-z]+)$`, ctx.orderShouldBe)
	sc.Step(`^line (\d+) of order "([^"]*)" should be (PENDING|PACKED|DELIVERED|COMPLETED|[a-z]+)$`, ctx.lineShouldBe)
	sc.Step(`^I note the packed quantities of order "([^"]*)"$`, ctx.iNoteThePackedQuantities)
	sc.Step(`^the packed quantities of order "([^"]*)" should be unchanged$`, ctx.thePackedQuantitiesShouldBeUnchanged)
}

// anOrderFor creates an order whose lines are keyed "<order>/1", "<order>/2", ...
func (ctx *productionContext) anOrderFor(alias, client, productID, raw string) error {
	q, err := parseSizes(raw)
	if err != nil {
		return err
	}
	resp, err := mustSend[*dispatchCommands.CreateOrderResponse](ctx, &dispatchCommands.CreateOrderCommand{
		Client: client,
		Lines:  []dispatchCommands.OrderLineInput{{ProductID: productID, Quantities: q}},
	})
	if err != nil {
		return err
	}
	ctx.orders[alias] = resp.OrderID
	ctx.orderLines[alias+"/1"] = resp.LineIDs[0]
	ctx.orderTargets[alias+"/1"] = q
	return nil
}

// anOrderWithLines creates a multi-line order from a product/sizes table
func (ctx *productionContext) anOrderWithLines(alias, client string, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("order table needs a header and at least one line")
	}

	var inputs []dispatchCommands.OrderLineInput
	for _, row := range table.Rows[1:] {
		q, err := parseSizes(row.Cells[1].Value)
		if err != nil {
			return err
		}
		inputs = append(inputs, dispatchCommands.OrderLineInput{ProductID: row.Cells[0].Value, Quantities: q})
	}

	resp, err := mustSend[*dispatchCommands.CreateOrderResponse](ctx, &dispatchCommands.CreateOrderCommand{
		Client: client, Lines: inputs,
	})
	if err != nil {
		return err
	}
	ctx.orders[alias] = resp.OrderID
	for i, lineID := range resp.LineIDs {
		key := fmt.Sprintf("%s/%d", alias, i+1)
		ctx.orderLines[key] = lineID
		ctx.orderTargets[key] = inputs[i].Quantities
	}
	return nil
}

func (ctx *productionContext) orderLine(line int, order string) (string, error) {
	return lookup(ctx.orderLines, "order line", fmt.Sprintf("%s/%d", order, line))
}

func (ctx *productionContext) lineIsCutIntoStageOne(line int, order, alias string) error {
	lineID, err := ctx.orderLine(line, order)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s/%d", order, line)
	jobID, stageOne, err := ctx.cutToStageOne(lineID, "", ctx.orderTargets[key])
	if err != nil {
		return err
	}
	ctx.jobs[alias] = jobID
	ctx.assignments[alias] = stageOne
	return nil
}

func (ctx *productionContext) lineIsProducedThroughEveryStage(line int, order string) error {
	alias := fmt.Sprintf("%s/%d/job", order, line)
	if err := ctx.lineIsCutIntoStageOne(line, order, alias); err != nil {
		return err
	}
	return ctx.advance(ctx.assignments[alias])
}

func (ctx *productionContext) orderIsPacked(order string) error {
	orderID, err := lookup(ctx.orders, "order", order)
	if err != nil {
		return err
	}
	_, _ = send[*dispatchCommands.PackOrderResponse](ctx, &dispatchCommands.PackOrderCommand{OrderID: orderID})
	return nil
}

func (ctx *productionContext) orderIsDispatched(order string) error {
	orderID, err := lookup(ctx.orders, "order", order)
	if err != nil {
		return err
	}
	_, _ = send[*dispatchCommands.DispatchOrderResponse](ctx, &dispatchCommands.DispatchOrderCommand{OrderID: orderID})
	return nil
}

func (ctx *productionContext) orderStatus(order string) (*dispatchQueries.OrderStatusView, error) {
	orderID, err := lookup(ctx.orders, "order", order)
	if err != nil {
		return nil, err
	}
	saved := ctx.err
	view, err := mustSend[*dispatchQueries.OrderStatusView](ctx, &dispatchQueries.GetOrderStatusQuery{OrderID: orderID})
	ctx.err = saved
	return view, err
}

func (ctx *productionContext) orderShouldBe(order, status string) error {
	view, err := ctx.orderStatus(order)
	if err != nil {
		return err
	}
	if view.Status != status {
		return fmt.Errorf("expected order %s to be %s, got %s", order, status, view.Status)
	}
	return nil
}

func (ctx *productionContext) lineShouldBe(line int, order, status string) error {
	view, err := ctx.orderStatus(order)
	if err != nil {
		return err
	}
	if line < 1 || line > len(view.Lines) {
		return fmt.Errorf("order %s has no line %d", order, line)
	}
	if got := view.Lines[line-1].Status; got != status {
		return fmt.Errorf("expected line %d of order %s to be %s, got %s", line, order, status, got)
	}
	return nil
}

func (ctx *productionContext) packedQuantities(order string) (map[string]shared.QuantityMap, error) {
	view, err := ctx.orderStatus(order)
	if err != nil {
		return nil, err
	}
	packed := make(map[string]shared.QuantityMap, len(view.Lines))
	for _, l := range view.Lines {
		packed[l.LineID] = l.Packed.Clone()
	}
	return packed, nil
}

func (ctx *productionContext) iNoteThePackedQuantities(order string) error {
	packed, err := ctx.packedQuantities(order)
	if err != nil {
		return err
	}
	ctx.packSnapshot = packed
	return nil
}

func (ctx *productionContext) thePackedQuantitiesShouldBeUnchanged(order string) error {
	if ctx.packSnapshot == nil {
		return fmt.Errorf("packed quantities were never noted")
	}
	packed, err := ctx.packedQuantities(order)
	if err != nil {
		return err
	}
	for lineID, before := range ctx.packSnapshot {
		if !packed[lineID].Equal(before) {
			return fmt.Errorf("line %s packed changed from %s to %s", lineID, before, packed[lineID])
		}
	}
	return nil
}
