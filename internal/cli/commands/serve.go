package commands

import (
	"github.com/leapstack-labs/sqlgate/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API over HTTP",
		Long: `Expose the validator as an HTTP API.

POST /api/validate with {"sql": "..."} returns the verdict as JSON;
GET /api/schema returns the reflected catalog. Callers must not execute
any SQL the API has not returned passed=true for.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			addr := listen
			if addr == "" {
				addr = cfg.Listen
			}

			g, err := openGate(cmd)
			if err != nil {
				return err
			}
			defer g.Close()

			srv := server.New(server.Config{
				Addr:      addr,
				Source:    g.SourceName,
				Validator: g.Validator,
				Store:     g.Store,
				Logger:    g.Logger,
			})
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config)")
	return cmd
}
