package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	subcontractCommands "github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
	subcontractQueries "github.com/andrescamacho/garmentflow/internal/application/subcontract/queries"
)

// NewExternalCommand creates the external command with subcommands
func NewExternalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "external",
		Short: "Subcontracted stage work and payables",
		Long: `Send pieces to a subcontractor, record their return and inspect the
payables raised for received work.

Examples:
  garmentflow external send <assignment-id> --to "Acme Wash" --rate 0.80 --sizes S=10,M=20
  garmentflow external receive <external-id> --sizes S=10
  garmentflow external payables --subcontractor "Acme Wash"
  garmentflow external publish`,
	}

	cmd.AddCommand(newExternalSendCommand())
	cmd.AddCommand(newExternalReceiveCommand())
	cmd.AddCommand(newExternalPayablesCommand())
	cmd.AddCommand(newExternalPublishCommand())

	return cmd
}

func newExternalSendCommand() *cobra.Command {
	var subcontractor, rate, sizes string

	cmd := &cobra.Command{
		Use:   "send <assignment-id>",
		Short: "Send pieces of an available assignment to a subcontractor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perPiece, err := parseDecimal("rate", rate)
			if err != nil {
				return err
			}
			q, err := parseQuantities(sizes)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*subcontractCommands.SendExternalResponse](a, &subcontractCommands.SendExternalCommand{
					AssignmentID:  args[0],
					Subcontractor: subcontractor,
					RatePerPiece:  perPiece,
					Quantities:    q,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Sent %s to %s; external assignment %s at stage %d\n",
						formatQuantities(q), subcontractor, resp.ExternalID, resp.StageIndex)
					fmt.Printf("Remaining on %s: %s\n", resp.AssignmentID, formatQuantities(resp.Remaining))
				})
			})
		},
	}

	cmd.Flags().StringVar(&subcontractor, "to", "", "Subcontractor name (required)")
	cmd.Flags().StringVar(&rate, "rate", "", "Rate per piece (required)")
	cmd.Flags().StringVar(&sizes, "sizes", "", "Quantities sent, e.g. S=10,M=20 (required)")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("rate")
	cmd.MarkFlagRequired("sizes")

	return cmd
}

func newExternalReceiveCommand() *cobra.Command {
	var sizes string

	cmd := &cobra.Command{
		Use:   "receive <external-id>",
		Short: "Record pieces returned by a subcontractor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuantities(sizes)
			if err != nil {
				return err
			}
			return withApp(func(a *app) error {
				resp, err := send[*subcontractCommands.ReceiveExternalResponse](a, &subcontractCommands.ReceiveExternalCommand{
					AssignmentID: args[0],
					Quantities:   q,
				})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Received %d pieces from %s\n", resp.Quantity, resp.Subcontractor)
					fmt.Printf("Payable %s: %d x %s = %s\n",
						resp.PayableID, resp.Quantity, resp.RatePerPiece.String(), resp.Amount.StringFixed(2))
					if !resp.Published {
						fmt.Println("Payable queued for publishing")
					}
					if resp.FullyReceived {
						fmt.Println("All sent pieces received")
					} else {
						fmt.Printf("Outstanding: %s\n", formatQuantities(resp.Outstanding))
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&sizes, "sizes", "", "Quantities received, e.g. S=10 (required)")
	cmd.MarkFlagRequired("sizes")

	return cmd
}

func newExternalPayablesCommand() *cobra.Command {
	var subcontractor string

	cmd := &cobra.Command{
		Use:   "payables",
		Short: "List payables raised for external work",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				resp, err := send[*subcontractQueries.ListPayablesResponse](a, &subcontractQueries.ListPayablesQuery{Subcontractor: subcontractor})
				if err != nil {
					return err
				}
				return render(resp, func() {
					if len(resp.Payables) == 0 {
						fmt.Println("No payables found")
						return
					}
					w := newTable()
					fmt.Fprintln(w, "PAYABLE ID\tSUBCONTRACTOR\tPIECES\tRATE\tAMOUNT\tOCCURRED\tPUBLISHED")
					for _, p := range resp.Payables {
						published := "pending"
						if p.PublishedAt != nil {
							published = formatTimestamp(*p.PublishedAt)
						}
						fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
							p.ID, truncate(p.Subcontractor, 24), p.Quantity, p.RatePerPiece.String(),
							p.Amount.StringFixed(2), formatTimestamp(p.OccurredAt), published)
					}
					w.Flush()
					fmt.Printf("\nTotal owed: %s\n", resp.Total.StringFixed(2))
				})
			})
		},
	}

	cmd.Flags().StringVar(&subcontractor, "subcontractor", "", "Filter by subcontractor")
	return cmd
}

func newExternalPublishCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish payables that have not reached the event bus yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if a.publisher == nil {
					return fmt.Errorf("event publishing is disabled: set events.enabled in the config")
				}
				resp, err := send[*subcontractCommands.PublishPendingPayablesResponse](a, &subcontractCommands.PublishPendingPayablesCommand{Limit: limit})
				if err != nil {
					return err
				}
				return render(resp, func() {
					fmt.Printf("Published %d of %d pending payables\n", resp.Published, resp.Pending)
				})
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum payables to publish (0 for all)")
	return cmd
}
