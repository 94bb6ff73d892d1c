package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	fabricQueries "github.com/andrescamacho/garmentflow/internal/application/fabric/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/fabric"
)

// NewFabricCommand creates the fabric command with subcommands
func NewFabricCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fabric",
		Short: "Fabric batches and roll ledger",
		Long: `Register fabric batches, receive rolls and inspect the roll ledger.

Examples:
  garmentflow fabric batch register --type denim --color indigo --design plain --quality A
  garmentflow fabric batch list
  garmentflow fabric roll intake --batch <batch-id> --length 120.5
  garmentflow fabric roll list --batch <batch-id>
  garmentflow fabric roll usage <roll-id> --job <job-id>`,
	}

	batch := &cobra.Command{Use: "batch", Short: "Fabric batches"}
	batch.AddCommand(newFabricBatchRegisterCommand())
	batch.AddCommand(newFabricBatchListCommand())

	roll := &cobra.Command{Use: "roll", Short: "Fabric rolls"}
	roll.AddCommand(newFabricRollIntakeCommand())
	roll.AddCommand(newFabricRollImportCommand())
	roll.AddCommand(newFabricRollListCommand())
	roll.AddCommand(newFabricRollGetCommand())
	roll.AddCommand(newFabricRollUsageCommand())

	cmd.AddCommand(batch, roll)
	return cmd
}

func newFabricBatchRegisterCommand() *cobra.Command {
	var fabricType, color, design, quality string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a fabric batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*fabricCommands.RegisterBatchResponse](a, &fabricCommands.RegisterBatchCommand{
					FabricType: fabricType,
					Color:      color,
					Design:     design,
					Quality:    quality,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Registered fabric batch %s\n", resp.BatchID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&fabricType, "type", "", "Fabric type (required)")
	cmd.Flags().StringVar(&color, "color", "", "Color (required)")
	cmd.Flags().StringVar(&design, "design", "", "Design")
	cmd.Flags().StringVar(&quality, "quality", "", "Quality grade")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("color")

	return cmd
}

func newFabricBatchListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fabric batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*fabricQueries.ListBatchesResponse](a, &fabricQueries.ListBatchesQuery{})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if len(resp.Batches) == 0 {
						fmt.Println("No fabric batches found")
						return
					}
					w := newTable()
					fmt.Fprintln(w, "BATCH ID\tDESCRIPTION\tCREATED")
					for _, b := range resp.Batches {
						fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Description, formatTimestamp(b.CreatedAt))
					}
					w.Flush()
				})
			})
		},
	}
}

func newFabricRollIntakeCommand() *cobra.Command {
	var batchID, length string

	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Receive a new roll into a batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			meters, err := parseDecimal("length", length)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*fabricCommands.IntakeRollResponse](a, &fabricCommands.IntakeRollCommand{
					BatchID: batchID,
					Length:  meters,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Roll %s received (%s m)\n", resp.RollID, resp.Length.String())
				})
			})
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Fabric batch ID (required)")
	cmd.Flags().StringVar(&length, "length", "", "Roll length in meters (required)")
	cmd.MarkFlagRequired("batch")
	cmd.MarkFlagRequired("length")

	return cmd
}

func newFabricRollImportCommand() *cobra.Command {
	var batchID, original, remaining string

	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Load a roll that predates the usage ledger",
		Long: `Load a roll whose consumption was tracked only as a remaining length.
Historical usage on such rolls is derived (original - remaining) and flagged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			originalLength, err := parseDecimal("original length", original)
			if err != nil {
				return err
			}
			remainingLength, err := parseDecimal("remaining length", remaining)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*fabricCommands.ImportLegacyRollResponse](a, &fabricCommands.ImportLegacyRollCommand{
					BatchID:         batchID,
					OriginalLength:  originalLength,
					RemainingLength: remainingLength,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Legacy roll %s imported\n", resp.RollID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Fabric batch ID (required)")
	cmd.Flags().StringVar(&original, "original", "", "Original length in meters (required)")
	cmd.Flags().StringVar(&remaining, "remaining", "", "Remaining length in meters (required)")
	cmd.MarkFlagRequired("batch")
	cmd.MarkFlagRequired("original")
	cmd.MarkFlagRequired("remaining")

	return cmd
}

func newFabricRollListCommand() *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rolls of a batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*fabricQueries.ListRollsResponse](a, &fabricQueries.ListRollsQuery{BatchID: batchID})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Batch %s (%s)\n\n", resp.Batch.ID, resp.Batch.Description)
					if len(resp.Rolls) == 0 {
						fmt.Println("No rolls in batch")
						return
					}
					w := newTable()
					fmt.Fprintln(w, "ROLL ID\tORIGINAL\tREMAINING\tUSAGES\tFLAGS")
					for _, r := range resp.Rolls {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
							r.ID, r.OriginalLength.String(), r.RemainingLength.String(), len(r.Usages), rollFlags(r))
					}
					w.Flush()
				})
			})
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Fabric batch ID (required)")
	cmd.MarkFlagRequired("batch")

	return cmd
}

func newFabricRollGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <roll-id>",
		Short: "Show a roll and its usage log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				roll, err := send[*fabricQueries.RollView](a, &fabricQueries.GetRollQuery{RollID: args[0]})
				if err != nil {
					return err
				}
				return render(roll, func() {
					fmt.Printf("Roll:       %s\n", roll.ID)
					fmt.Printf("Batch:      %s\n", roll.BatchID)
					fmt.Printf("Length:     %s of %s m remaining\n", roll.RemainingLength.String(), roll.OriginalLength.String())
					fmt.Printf("Flags:      %s\n", rollFlags(*roll))
					if len(roll.Usages) == 0 {
						return
					}
					fmt.Println("\nUsage log:")
					w := newTable()
					fmt.Fprintln(w, "  JOB\tAMOUNT\tRECORDED")
					for _, u := range roll.Usages {
						fmt.Fprintf(w, "  %s\t%s\t%s\n", u.JobID, u.Amount.String(), formatTimestamp(u.RecordedAt))
					}
					w.Flush()
				})
			})
		},
	}
}

func newFabricRollUsageCommand() *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "usage <roll-id>",
		Short: "Show how much of a roll a job consumed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				usage, err := send[*fabric.HistoricalUsage](a, &fabricQueries.GetHistoricalUsageQuery{
					RollID: args[0],
					JobID:  jobID,
				})
				if err != nil {
					return err
				}
				return render(usage, func() {
					fmt.Printf("Job %s used %s m of roll %s\n", usage.JobID, usage.Amount.String(), usage.RollID)
					if usage.Derived {
						fmt.Printf("Warning: %s\n", usage.Warning)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Cutting job ID (required)")
	cmd.MarkFlagRequired("job")

	return cmd
}

func rollFlags(r fabricQueries.RollView) string {
	switch {
	case r.Exhausted && r.Legacy:
		return "exhausted,legacy"
	case r.Exhausted:
		return "exhausted"
	case r.Legacy:
		return "legacy"
	default:
		return "-"
	}
}
