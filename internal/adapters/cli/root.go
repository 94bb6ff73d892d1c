package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	jsonOutput bool
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "garmentflow",
		Short: "garmentflow - production allocation engine for garment manufacturing",
		Long: `garmentflow tracks fabric, cutting, finishing stages and dispatch for a
garment workshop. Commands run directly against the configured database;
'serve' starts the HTTP API and the gRPC health endpoint.

Examples:
  garmentflow migrate
  garmentflow fabric batch register --type denim --color indigo --design plain --quality A
  garmentflow fabric roll intake --batch <batch-id> --length 120.5
  garmentflow cutting start --product jeans --target 30=10,32=20 --worker cutter-1
  garmentflow cutting fabric --job <job-id> --roll <roll-id> --amount 18.25
  garmentflow stage assign <assignment-id> --worker stitcher-1=30:10,32:20 --rate 0.80
  garmentflow external send <assignment-id> --to acme-wash --rate 1.25 --sizes L=12
  garmentflow order status <order-id>
  garmentflow serve`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every command at debug level")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewFabricCommand())
	rootCmd.AddCommand(NewCuttingCommand())
	rootCmd.AddCommand(NewStageCommand())
	rootCmd.AddCommand(NewExternalCommand())
	rootCmd.AddCommand(NewStockCommand())
	rootCmd.AddCommand(NewOrderCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}
