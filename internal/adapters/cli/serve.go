package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/garmentflow/internal/adapters/api"
	"github.com/andrescamacho/garmentflow/internal/adapters/grpc"
	"github.com/andrescamacho/garmentflow/internal/infrastructure/database"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var (
		migrate        bool
		flushInterval  time.Duration
		healthInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and gRPC health server",
		Long: `Start the HTTP API under /api/v1, Prometheus metrics (when enabled) and the
gRPC health/reflection server (when enabled). Pending payables are flushed to
NATS on an interval when event publishing is enabled.

Stops gracefully on SIGINT/SIGTERM.

Examples:
  garmentflow serve
  garmentflow serve --migrate --flush-interval 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(appOptions{metrics: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate {
				if err := database.AutoMigrate(a.db); err != nil {
					return err
				}
				a.logger.Info().Msg("schema migrated")
			}

			ctx, stop := signal.NotifyContext(a.context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metricsPath := ""
			if a.cfg.Metrics.Enabled {
				metricsPath = a.cfg.Metrics.Path
			}
			server := api.NewServer(a.cfg.Server, a.mediator, a.logger, metricsPath)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return server.Run(ctx) })

			if a.cfg.GRPC.Enabled {
				checks := []grpc.Check{{Name: "database", Probe: func(ctx context.Context) error {
					sqlDB, err := a.db.DB()
					if err != nil {
						return err
					}
					return sqlDB.PingContext(ctx)
				}}}
				if a.directory != nil {
					checks = append(checks, grpc.Check{Name: "directory", Probe: directoryProbe(a)})
				}
				health := grpc.NewHealthServer(a.cfg.GRPC.Address, healthInterval, a.logger, checks...)
				g.Go(func() error { return health.Run(ctx) })
			}

			if a.publisher != nil && flushInterval > 0 {
				g.Go(func() error {
					flushPayables(ctx, a, flushInterval)
					return nil
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run schema migration before serving")
	cmd.Flags().DurationVar(&flushInterval, "flush-interval", time.Minute,
		"Interval for republishing pending payables (0 disables)")
	cmd.Flags().DurationVar(&healthInterval, "health-interval", 15*time.Second,
		"Interval between gRPC health probes")

	return cmd
}
