package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	dispatchCommands "github.com/andrescamacho/garmentflow/internal/application/dispatch/commands"
	dispatchQueries "github.com/andrescamacho/garmentflow/internal/application/dispatch/queries"
)

// NewOrderCommand creates the order command with subcommands
func NewOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Client orders, packing and delivery",
		Long: `Create client orders, follow their production status and move finished
stock through packing and delivery.

Examples:
  garmentflow order create --client "Bluefin Retail" --line tee-basic:S=10,M=20 --line polo:L=5
  garmentflow order status <order-id>
  garmentflow order list --limit 20
  garmentflow order pack <order-id>
  garmentflow order dispatch <order-id>`,
	}

	cmd.AddCommand(newOrderCreateCommand())
	cmd.AddCommand(newOrderStatusCommand())
	cmd.AddCommand(newOrderListCommand())
	cmd.AddCommand(newOrderPackCommand())
	cmd.AddCommand(newOrderDispatchCommand())

	return cmd
}

// parseOrderLine reads "PRODUCT:SIZE=QTY,..."
func parseOrderLine(raw string) (dispatchCommands.OrderLineInput, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return dispatchCommands.OrderLineInput{}, fmt.Errorf("invalid order line %q, expected PRODUCT:SIZE=QTY,...", raw)
	}
	q, err := parseQuantities(parts[1])
	if err != nil {
		return dispatchCommands.OrderLineInput{}, err
	}
	return dispatchCommands.OrderLineInput{ProductID: strings.TrimSpace(parts[0]), Quantities: q}, nil
}

func newOrderCreateCommand() *cobra.Command {
	var (
		client string
		lines  []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]dispatchCommands.OrderLineInput, 0, len(lines))
			for _, raw := range lines {
				line, err := parseOrderLine(raw)
				if err != nil {
					return err
				}
				inputs = append(inputs, line)
			}
			return withApp(func(a *app) error {
				resp, err := send[*dispatchCommands.CreateOrderResponse](a, &dispatchCommands.CreateOrderCommand{
					Client: client,
					Lines:  inputs,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Order %s created for %s\n", resp.OrderID, client)
					for i, id := range resp.LineIDs {
						fmt.Printf("  line %d: %s (%s)\n", i+1, id, inputs[i].ProductID)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "Client name (required)")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "Order line PRODUCT:SIZE=QTY,... (repeatable, required)")
	cmd.MarkFlagRequired("client")
	cmd.MarkFlagRequired("line")

	return cmd
}

func newOrderStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id>",
		Short: "Show production status of an order and its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				order, err := send[*dispatchQueries.OrderStatusView](a, &dispatchQueries.GetOrderStatusQuery{OrderID: args[0]})
				if err != nil {
					return err
				}
				return render(order, func() {
					fmt.Printf("Order:   %s\n", order.OrderID)
					fmt.Printf("Client:  %s\n", order.Client)
					fmt.Printf("Status:  %s\n", order.Status)
					fmt.Printf("Created: %s\n\n", formatTimestamp(order.CreatedAt))

					w := newTable()
					fmt.Fprintln(w, "LINE ID\tPRODUCT\tTARGET\tSTATUS\tFINISHED\tPACKED\tDELIVERED")
					for _, l := range order.Lines {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
							l.LineID, truncate(l.ProductID, 20), formatQuantities(l.Target), l.Status,
							formatQuantities(l.Finished), formatQuantities(l.Packed), formatQuantities(l.Delivered))
					}
					w.Flush()
				})
			})
		},
	}
}

func newOrderListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*dispatchQueries.ListOrdersResponse](a, &dispatchQueries.ListOrdersQuery{Limit: limit})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if len(resp.Orders) == 0 {
						fmt.Println("No orders found")
						return
					}
					w := newTable()
					fmt.Fprintln(w, "ORDER ID\tCLIENT\tLINES\tSTATUS\tCREATED")
					for _, o := range resp.Orders {
						fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
							o.OrderID, truncate(o.Client, 24), len(o.Lines), o.Status, formatTimestamp(o.CreatedAt))
					}
					w.Flush()
				})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum orders to show")
	return cmd
}

func newOrderPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pack <order-id>",
		Short: "Mark every ready batch of the order as packed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*dispatchCommands.PackOrderResponse](a, &dispatchCommands.PackOrderCommand{OrderID: args[0]})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Packed %d batches for order %s\n", resp.Packed, resp.OrderID)
				})
			})
		},
	}
}

func newOrderDispatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <order-id>",
		Short: "Deliver every packed batch of the order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*dispatchCommands.DispatchOrderResponse](a, &dispatchCommands.DispatchOrderCommand{OrderID: args[0]})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Delivered %d batches for order %s\n", resp.Delivered, resp.OrderID)
				})
			})
		},
	}
}
