package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/garmentflow/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage garmentflow configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (GF_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Operator preferences (default worker) are stored in ~/.garmentflow/config.json

Examples:
  garmentflow config show
  garmentflow config set-worker cutter-1
  garmentflow config clear-worker`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetWorkerCommand())
	cmd.AddCommand(newConfigClearWorkerCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Println("garmentflow Configuration")
			fmt.Println("=========================")

			fmt.Println("Operator Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultWorkerID != "" {
				fmt.Printf("  Default Worker:   %s\n", userCfg.DefaultWorkerID)
			} else {
				fmt.Printf("  Default Worker:   (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}

			fmt.Println("\nPipeline:")
			fmt.Printf("  Stages:           %s\n", strings.Join(cfg.Pipeline.Stages, " -> "))

			fmt.Println("\nHTTP API:")
			fmt.Printf("  Address:          %s\n", cfg.Server.Address)
			fmt.Printf("  Command Limit:    %d req/s (burst: %d)\n",
				cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Burst)
			fmt.Printf("  gRPC Health:      %v (%s)\n", cfg.GRPC.Enabled, cfg.GRPC.Address)
			fmt.Printf("  Metrics:          %v (%s)\n", cfg.Metrics.Enabled, cfg.Metrics.Path)

			fmt.Println("\nEmployee Directory:")
			fmt.Printf("  Enabled:          %v\n", cfg.Directory.Enabled)
			if cfg.Directory.Enabled {
				fmt.Printf("  Base URL:         %s\n", cfg.Directory.BaseURL)
				fmt.Printf("  Max Retries:      %d\n", cfg.Directory.Retry.MaxAttempts)
			}

			fmt.Println("\nPayable Events:")
			fmt.Printf("  Enabled:          %v\n", cfg.Events.Enabled)
			if cfg.Events.Enabled {
				fmt.Printf("  NATS URL:         %s\n", cfg.Events.URL)
				fmt.Printf("  Subject:          %s.<subcontractor>\n", cfg.Events.SubjectPrefix)
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-worker <worker-id>",
		Short: "Set the default worker for cutting jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultWorker(args[0]); err != nil {
				return fmt.Errorf("failed to set default worker: %w", err)
			}
			fmt.Printf("Default worker set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigClearWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-worker",
		Short: "Clear the default worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultWorker(); err != nil {
				return fmt.Errorf("failed to clear default worker: %w", err)
			}
			fmt.Println("Default worker cleared")
			return nil
		},
	}
}

// resolveWorker prefers the flag, then the stored default
func resolveWorker(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", fmt.Errorf("no worker specified and failed to load user config: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return "", fmt.Errorf("no worker specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultWorkerID == "" {
		return "", fmt.Errorf("no worker specified: use --worker or set a default with 'garmentflow config set-worker'")
	}
	return userCfg.DefaultWorkerID, nil
}

// maskPassword hides the password component of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
