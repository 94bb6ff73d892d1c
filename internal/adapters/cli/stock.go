package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/garmentflow/internal/application/stock/queries"
)

// NewStockCommand creates the stock command with subcommands
func NewStockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Finished stock batches",
		Long: `Inspect finished stock, import pre-existing inventory and check how a batch
could substitute for production.

Examples:
  garmentflow stock import --product tee-basic --sizes S=40,M=60
  garmentflow stock list --product tee-basic --internal
  garmentflow stock suggest <batch-id> --job <job-id>
  garmentflow stock suggest <batch-id> --assignment <assignment-id>`,
	}

	cmd.AddCommand(newStockImportCommand())
	cmd.AddCommand(newStockListCommand())
	cmd.AddCommand(newStockGetCommand())
	cmd.AddCommand(newStockSuggestCommand())

	return cmd
}

func newStockImportCommand() *cobra.Command {
	var productID, sizes string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import existing finished inventory as internal stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuantities(sizes)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*stockCommands.ImportStockResponse](a, &stockCommands.ImportStockCommand{
					ProductID:  productID,
					Quantities: q,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Stock batch %s imported with %s\n", resp.StockBatchID, formatQuantities(q))
				})
			})
		},
	}

	cmd.Flags().StringVar(&productID, "product", "", "Product ID (required)")
	cmd.Flags().StringVar(&sizes, "sizes", "", "Quantities, e.g. S=40,M=60 (required)")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("sizes")

	return cmd
}

func newStockListCommand() *cobra.Command {
	var (
		productID    string
		internalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*stockQueries.ListBatchesResponse](a, &stockQueries.ListBatchesQuery{
					ProductID:    productID,
					InternalOnly: internalOnly,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if len(resp.Batches) == 0 {
						fmt.Println("No stock batches found")
						return
					}
					w := newTable()
					fmt.Fprintln(w, "BATCH ID\tPRODUCT\tAVAILABLE\tPRODUCED\tSTATE\tOWNER")
					for _, b := range resp.Batches {
						owner := b.OrderLineID
						if b.Internal {
							owner = "internal"
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
							b.ID, truncate(b.ProductID, 20), formatQuantities(b.Available),
							formatQuantities(b.Produced), b.DispatchState, owner)
					}
					w.Flush()
				})
			})
		},
	}

	cmd.Flags().StringVar(&productID, "product", "", "Filter by product")
	cmd.Flags().BoolVar(&internalOnly, "internal", false, "Only batches not tied to an order line")
	return cmd
}

func newStockGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <batch-id>",
		Short: "Show a stock batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				b, err := send[*stockQueries.BatchView](a, &stockQueries.GetBatchQuery{StockBatchID: args[0]})
				if err != nil {
					return err
				}
				return render(b, func() {
					fmt.Printf("Batch:      %s\n", b.ID)
					fmt.Printf("Product:    %s\n", b.ProductID)
					if b.Internal {
						fmt.Println("Owner:      internal stock")
					} else {
						fmt.Printf("Owner:      order line %s\n", b.OrderLineID)
					}
					if b.SourceAssignmentID != "" {
						fmt.Printf("Source:     assignment %s\n", b.SourceAssignmentID)
					}
					fmt.Printf("Produced:   %s\n", formatQuantities(b.Produced))
					fmt.Printf("Available:  %s\n", formatQuantities(b.Available))
					fmt.Printf("State:      %s\n", b.DispatchState)
					fmt.Printf("Created:    %s\n", formatTimestamp(b.CreatedAt))
				})
			})
		},
	}
}

func newStockSuggestCommand() *cobra.Command {
	var jobID, assignmentID string

	cmd := &cobra.Command{
		Use:   "suggest <batch-id>",
		Short: "Show how much of a batch could replace production",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (jobID == "") == (assignmentID == "") {
				return fmt.Errorf("exactly one of --job or --assignment is required")
			}
			return withApp(func(a *app) error {
				resp, err := send[*stockQueries.SuggestSubstitutionResponse](a, &stockQueries.SuggestSubstitutionQuery{
					JobID:        jobID,
					AssignmentID: assignmentID,
					StockBatchID: args[0],
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Required:          %s\n", formatQuantities(resp.Required))
					fmt.Printf("Already produced:  %s\n", formatQuantities(resp.AlreadyProduced))
					fmt.Printf("Available:         %s\n", formatQuantities(resp.Available))
					fmt.Printf("Usable:            %s\n", formatQuantities(resp.Usable))
					if resp.CoversAll {
						fmt.Println("\nThis batch covers everything still required")
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Cutting job to substitute for")
	cmd.Flags().StringVar(&assignmentID, "assignment", "", "Stage assignment to substitute for")
	return cmd
}
