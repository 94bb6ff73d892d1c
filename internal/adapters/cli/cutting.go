package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	cuttingQueries "github.com/andrescamacho/garmentflow/internal/application/cutting/queries"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// NewCuttingCommand creates the cutting command with subcommands
func NewCuttingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutting",
		Short: "Cutting jobs",
		Long: `Open cutting jobs, record fabric and stock usage, and complete them into the
first finishing stage.

Examples:
  garmentflow cutting start --line <order-line-id> --target S=10,M=20 --worker cutter-1
  garmentflow cutting fabric --job <job-id> --roll <roll-id> --amount 18.25 --pieces S=10
  garmentflow cutting stock --job <job-id> --batch <stock-batch-id> --sizes M=5
  garmentflow cutting complete <job-id>
  garmentflow cutting lineage <job-id>`,
	}

	cmd.AddCommand(newCuttingStartCommand())
	cmd.AddCommand(newCuttingFabricCommand())
	cmd.AddCommand(newCuttingStockCommand())
	cmd.AddCommand(newCuttingCompleteCommand())
	cmd.AddCommand(newCuttingGetCommand())
	cmd.AddCommand(newCuttingListCommand())
	cmd.AddCommand(newCuttingLineageCommand())

	return cmd
}

func newCuttingStartCommand() *cobra.Command {
	var lineID, productID, target, worker string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Open a cutting job",
		RunE: func(cmd *cobra.Command, args []string) error {
			var q shared.QuantityMap
			if target != "" || lineID == "" {
				parsed, err := parseQuantities(target)
				if err != nil {
					return err
				}
				q = parsed
			}
			workerID, err := resolveWorker(worker)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*cuttingCommands.StartJobResponse](a, &cuttingCommands.StartJobCommand{
					OrderLineID: lineID,
					ProductID:   productID,
					Target:      q,
					WorkerID:    workerID,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if q == nil {
						fmt.Printf("Cutting job %s opened for order line %s\n", resp.JobID, lineID)
						return
					}
					fmt.Printf("Cutting job %s opened for %s\n", resp.JobID, formatQuantities(q))
				})
			})
		},
	}

	cmd.Flags().StringVar(&lineID, "line", "", "Order line ID (omit for internal stock)")
	cmd.Flags().StringVar(&productID, "product", "", "Product ID (defaults to the order line's product)")
	cmd.Flags().StringVar(&target, "target", "", "Target quantities, e.g. S=10,M=20 (defaults to the order line's target)")
	cmd.Flags().StringVar(&worker, "worker", "", "Cutter employee ID (default from config)")

	return cmd
}

func newCuttingFabricCommand() *cobra.Command {
	var jobID, rollID, amount, pieces string

	cmd := &cobra.Command{
		Use:   "fabric",
		Short: "Record fabric usage from a roll",
		RunE: func(cmd *cobra.Command, args []string) error {
			meters, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			var attributed shared.QuantityMap
			if pieces != "" {
				if attributed, err = parseQuantities(pieces); err != nil {
					return err
				}
			}
			return withApp(func(a *app) error {
				resp, err := send[*cuttingCommands.RecordFabricUsageResponse](a, &cuttingCommands.RecordFabricUsageCommand{
					JobID:  jobID,
					RollID: rollID,
					Amount: meters,
					Pieces: attributed,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Recorded %s m from roll %s (%s m left", meters.String(), rollID, resp.RemainingLength.String())
					if resp.RollExhausted {
						fmt.Print(", roll exhausted")
					}
					fmt.Printf(")\nUnallocated: %s\n", formatQuantities(resp.Unallocated))
				})
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Cutting job ID (required)")
	cmd.Flags().StringVar(&rollID, "roll", "", "Roll ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Meters consumed (required)")
	cmd.Flags().StringVar(&pieces, "pieces", "", "Optional size attribution, e.g. S=10")
	cmd.MarkFlagRequired("job")
	cmd.MarkFlagRequired("roll")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newCuttingStockCommand() *cobra.Command {
	var jobID, batchID, sizes string

	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Cover part of a job from finished stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuantities(sizes)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*cuttingCommands.RecordStockUsageResponse](a, &cuttingCommands.RecordStockUsageCommand{
					JobID:        jobID,
					StockBatchID: batchID,
					Quantities:   q,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Stock usage %s recorded\n", resp.UsageID)
					fmt.Printf("Batch available: %s\n", formatQuantities(resp.BatchAvailable))
					fmt.Printf("Unallocated:     %s\n", formatQuantities(resp.Unallocated))
				})
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Cutting job ID (required)")
	cmd.Flags().StringVar(&batchID, "batch", "", "Stock batch ID (required)")
	cmd.Flags().StringVar(&sizes, "sizes", "", "Quantities to take, e.g. M=5 (required)")
	cmd.MarkFlagRequired("job")
	cmd.MarkFlagRequired("batch")
	cmd.MarkFlagRequired("sizes")

	return cmd
}

func newCuttingCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <job-id>",
		Short: "Complete a job and emit its first stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*cuttingCommands.CompleteJobResponse](a, &cuttingCommands.CompleteJobCommand{JobID: args[0]})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if resp.StageOneID == "" {
						fmt.Printf("Job %s completed; stock covered every piece\n", resp.JobID)
						return
					}
					fmt.Printf("Job %s completed; stage assignment %s holds %s\n",
						resp.JobID, resp.StageOneID, formatQuantities(resp.Remaining))
				})
			})
		},
	}
}

func newCuttingGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show a cutting job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				job, err := send[*cuttingQueries.JobView](a, &cuttingQueries.GetJobQuery{JobID: args[0]})
				if err != nil {
					return err
				}
				return render(job, func() {
					fmt.Printf("Job:          %s (%s)\n", job.ID, job.Status)
					fmt.Printf("Product:      %s\n", job.ProductID)
					if job.OrderLineID != "" {
						fmt.Printf("Order line:   %s\n", job.OrderLineID)
					}
					fmt.Printf("Worker:       %s\n", job.WorkerID)
					fmt.Printf("Target:       %s\n", formatQuantities(job.Target))
					fmt.Printf("Allocated:    %s\n", formatQuantities(job.Allocated))
					fmt.Printf("Unallocated:  %s\n", formatQuantities(job.Unallocated))
					fmt.Printf("From stock:   %s\n", formatQuantities(job.StockCovered))
					fmt.Printf("Fabric used:  %s m across %d usages\n", job.FabricLength.String(), len(job.FabricUsages))
					if len(job.MissingSizes) > 0 {
						fmt.Printf("Missing:      %s\n", strings.Join(job.MissingSizes, ", "))
					}
					if job.StageOneID != "" {
						fmt.Printf("Stage one:    %s\n", job.StageOneID)
					}
				})
			})
		},
	}
}

func newCuttingListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cutting jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*cuttingQueries.ListJobsResponse](a, &cuttingQueries.ListJobsQuery{Status: status})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if len(resp.Jobs) == 0 {
						fmt.Println("No cutting jobs found")
						return
					}
					w := newTable()
					fmt.Fprintln(w, "JOB ID\tPRODUCT\tSTATUS\tTARGET\tUNALLOCATED\tCREATED")
					for _, j := range resp.Jobs {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
							j.ID, truncate(j.ProductID, 20), j.Status,
							formatQuantities(j.Target), formatQuantities(j.Unallocated), formatTimestamp(j.CreatedAt))
					}
					w.Flush()
					fmt.Printf("\nTotal: %d jobs\n", len(resp.Jobs))
				})
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (OPEN, COMPLETED)")
	return cmd
}

func newCuttingLineageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <job-id>",
		Short: "Show every stage assignment descended from a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*pipelineQueries.ListLineageResponse](a, &pipelineQueries.ListLineageQuery{JobID: args[0]})
				if err != nil {
					return err
				}
				return render(resp, func() { printAssignments(resp.Assignments) })
			})
		},
	}
}
