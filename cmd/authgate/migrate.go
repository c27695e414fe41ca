package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"authgate/cmd/identity"
	"authgate/cmd/internal/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	def := app.LoadConfig()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Apply all pending credential schema migrations to the configured Postgres or SQLite database.

With --down every migration is rolled back, dropping all stored credentials.`,
		RunE:  runMigrate,
	}
	cmd.Flags().Bool("down", false, "roll back every migration instead of applying them")
	cmd.Flags().String("database-url", def.DatabaseURL, "credential store URL (postgres:// or sqlite://)")
	cmd.Flags().String("log-level", def.LogLevel, "log level (debug|info|warn|error)")
	cmd.Flags().String("log-format", def.LogFormat, "log format (json|pretty)")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := app.ResolveConfig(cmd.Flags(), configFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("config", configFile).Wrap(err)
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a database url is required (--database-url or AUTHGATE_DATABASE_URL)")
	}

	down, err := cmd.Flags().GetBool("down")
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	dir := identity.MigrateUp
	if down {
		dir = identity.MigrateDown
	}

	log := app.NewLogger(cfg.LogLevel, cfg.LogFormat)

	cmd.Printf("Running migrations (%s)...\n", dir)
	version, err := app.Migrate(cmd.Context(), cfg, dir, log)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").With("direction", dir.String()).Wrap(err)
	}

	cmd.Printf("Migrations completed successfully, schema version %d\n", version)
	return nil
}
