package cli

import (
	"os"

	"github.com/spf13/cobra"

	"schemaforge/internal/api"
	"schemaforge/internal/config"
	"schemaforge/internal/logger"
	"schemaforge/internal/state"
)

// ServeCmd starts the HTTP service.
func ServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the schemaforge HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			log := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.JSON)
			handler := api.NewHandler(cfg, state.New(), log)
			return handler.Serve()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides configuration)")
	return cmd
}
