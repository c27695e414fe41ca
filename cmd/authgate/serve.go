package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"authgate/cmd/internal/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server until SIGINT or SIGTERM. Settings come from
AUTHGATE_* environment variables, the --config file and flags, in
increasing order of precedence.`,
		RunE: runServe,
	}
	app.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.ResolveConfig(cmd.Flags(), configFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("config", configFile).Wrap(err)
	}
	return app.Serve(cmd.Context(), cfg)
}
