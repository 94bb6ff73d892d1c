package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/garmentflow/internal/infrastructure/database"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update every engine table on the configured database.

Example:
  garmentflow migrate
  DATABASE_URL=postgresql://gf:gf@localhost:5432/garmentflow garmentflow migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if err := database.AutoMigrate(a.db); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Schema migrated (%s)\n", a.cfg.Database.Type)
				return nil
			})
		},
	}
}
