package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
)

// NewStageCommand creates the stage command with subcommands
func NewStageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Finishing stage assignments",
		Long: `Assign pieces to workers at each finishing stage, complete stages and
finalize the terminal stage into stock.

Worker shares take the form WORKER=SIZE:QTY,... with an optional @RATE suffix
overriding --rate for that worker.

Examples:
  garmentflow stage available --stage 2
  garmentflow stage assign <assignment-id> --worker ana=S:5,M:10 --worker luis=M:10@1.50 --rate 1.25
  garmentflow stage assign <assignment-id> --stock-batch <batch-id> --stock S=5
  garmentflow stage complete <child-id>
  garmentflow stage finalize <assignment-id>`,
	}

	cmd.AddCommand(newStageAvailableCommand())
	cmd.AddCommand(newStageGetCommand())
	cmd.AddCommand(newStageAssignCommand())
	cmd.AddCommand(newStageCompleteCommand())
	cmd.AddCommand(newStageFinalizeCommand())

	return cmd
}

func newStageAvailableCommand() *cobra.Command {
	var stage int

	cmd := &cobra.Command{
		Use:   "available",
		Short: "List assignments ready for the next stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*pipelineQueries.ListAvailableResponse](a, &pipelineQueries.ListAvailableQuery{StageIndex: stage})
				if err != nil {
					return err
				}
				return render(resp, func() { printAssignments(resp.Assignments) })
			})
		},
	}

	cmd.Flags().IntVar(&stage, "stage", 0, "Stage index to list (0 for every stage)")
	return cmd
}

func newStageGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <assignment-id>",
		Short: "Show a stage assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				view, err := send[*pipelineQueries.AssignmentView](a, &pipelineQueries.GetAssignmentQuery{AssignmentID: args[0]})
				if err != nil {
					return err
				}
				return render(view, func() { printAssignment(view) })
			})
		},
	}
}

func newStageAssignCommand() *cobra.Command {
	var (
		shares       []string
		rate         string
		stockBatchID string
		stockSizes   string
	)

	cmd := &cobra.Command{
		Use:   "assign <assignment-id>",
		Short: "Assign remaining pieces to workers or cover them from stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultRate := decimal.Zero
			if rate != "" {
				var err error
				if defaultRate, err = parseDecimal("rate", rate); err != nil {
					return err
				}
			}

			workers := make([]pipelineCommands.WorkerShare, 0, len(shares))
			for _, raw := range shares {
				share, err := parseRatedShare(raw, defaultRate)
				if err != nil {
					return err
				}
				workers = append(workers, share)
			}

			command := &pipelineCommands.AssignCommand{
				AssignmentID: args[0],
				Workers:      workers,
				StockBatchID: stockBatchID,
			}
			if stockSizes != "" {
				q, err := parseQuantities(stockSizes)
				if err != nil {
					return err
				}
				command.StockUsage = q
			}

			return withApp(func(a *app) error {
				resp, err := send[*pipelineCommands.AssignResponse](a, command)
				if err != nil {
					return err
				}
				return render(resp, func() {
					if resp.ChildID != "" {
						fmt.Printf("Assigned; next-stage assignment %s created\n", resp.ChildID)
					}
					if resp.StockUsageID != "" {
						fmt.Printf("Stock usage %s recorded\n", resp.StockUsageID)
					}
					fmt.Printf("Remaining on %s: %s\n", resp.AssignmentID, formatQuantities(resp.Remaining))
					if resp.AutoFulfilled {
						fmt.Println("Stage auto-fulfilled")
					}
				})
			})
		},
	}

	cmd.Flags().StringArrayVar(&shares, "worker", nil, "Worker share WORKER=SIZE:QTY,...[@RATE] (repeatable)")
	cmd.Flags().StringVar(&rate, "rate", "", "Default rate per piece")
	cmd.Flags().StringVar(&stockBatchID, "stock-batch", "", "Stock batch to cover pieces from")
	cmd.Flags().StringVar(&stockSizes, "stock", "", "Quantities taken from the stock batch, e.g. S=5")

	return cmd
}

func newStageCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <assignment-id>",
		Short: "Mark a stage's work as processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*pipelineCommands.CompleteStageResponse](a, &pipelineCommands.CompleteStageCommand{AssignmentID: args[0]})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Assignment %s is now %s\n", resp.AssignmentID, resp.Status)
				})
			})
		},
	}
}

func newStageFinalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <assignment-id>",
		Short: "Turn a processed terminal-stage assignment into a stock batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*pipelineCommands.FinalizeResponse](a, &pipelineCommands.FinalizeCommand{AssignmentID: args[0]})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Stock batch %s produced with %s\n", resp.StockBatchID, formatQuantities(resp.Produced))
				})
			})
		},
	}
}

// parseRatedShare reads a worker share with an optional "@RATE" suffix
func parseRatedShare(raw string, defaultRate decimal.Decimal) (pipelineCommands.WorkerShare, error) {
	rate := defaultRate
	if at := strings.LastIndex(raw, "@"); at >= 0 {
		parsed, err := parseDecimal("rate", raw[at+1:])
		if err != nil {
			return pipelineCommands.WorkerShare{}, err
		}
		rate = parsed
		raw = raw[:at]
	}

	workerID, q, err := parseWorkerShare(raw)
	if err != nil {
		return pipelineCommands.WorkerShare{}, err
	}
	return pipelineCommands.WorkerShare{WorkerID: workerID, Quantities: q, RatePerPiece: rate}, nil
}

func printAssignments(assignments []pipelineQueries.AssignmentView) {
	if len(assignments) == 0 {
		fmt.Println("No assignments found")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "ASSIGNMENT ID\tSTAGE\tSTATUS\tREMAINING\tPARENT\tUPDATED")
	for _, v := range assignments {
		parent := v.ParentID
		if parent == "" {
			parent = "-"
		}
		stage := fmt.Sprintf("%d %s", v.StageIndex, v.StageName)
		if v.External != nil {
			stage += " (ext)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, stage, v.Status, formatQuantities(v.Remaining), parent, formatTimestamp(v.UpdatedAt))
	}
	w.Flush()
	fmt.Printf("\nTotal: %d assignments\n", len(assignments))
}

func printAssignment(v *pipelineQueries.AssignmentView) {
	fmt.Printf("Assignment:  %s\n", v.ID)
	fmt.Printf("Stage:       %d (%s)\n", v.StageIndex, v.StageName)
	fmt.Printf("Status:      %s\n", v.Status)
	fmt.Printf("Job:         %s\n", v.JobID)
	if v.ParentID != "" {
		fmt.Printf("Parent:      %s\n", v.ParentID)
	}
	fmt.Printf("Product:     %s\n", v.ProductID)
	fmt.Printf("Remaining:   %s\n", formatQuantities(v.Remaining))
	fmt.Printf("Available:   %t\n", v.Available)
	if v.AutoFulfilled {
		fmt.Println("Auto-fulfilled from stock")
	}

	if len(v.Allocations) > 0 {
		fmt.Println("\nAllocations:")
		w := newTable()
		fmt.Fprintln(w, "  WORKER\tQUANTITIES\tRATE")
		for _, alloc := range v.Allocations {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", alloc.WorkerID, formatQuantities(alloc.Quantities), alloc.RatePerPiece.String())
		}
		w.Flush()
	}

	if ext := v.External; ext != nil {
		fmt.Println("\nExternal:")
		fmt.Printf("  Subcontractor: %s @ %s/piece\n", ext.Subcontractor, ext.RatePerPiece.String())
		fmt.Printf("  Sent:          %s (%s)\n", formatQuantities(ext.Sent), formatTimestamp(ext.SentAt))
		fmt.Printf("  Received:      %s\n", formatQuantities(ext.Received))
		fmt.Printf("  Outstanding:   %s\n", formatQuantities(ext.Outstanding))
	}
}
