package commands

import (
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the reflected schema catalog",
		Long: `Reflect the configured data source and print the catalog the
semantic check validates against: all base table names and the flattened
set of column names.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			format, _ := cmd.Root().PersistentFlags().GetString("output")
			if format == "" {
				format = cfg.Output
			}

			g, err := openGate(cmd)
			if err != nil {
				return err
			}
			defer g.Close()

			return renderCatalog(cmd.OutOrStdout(), g.Validator.Catalog(), format)
		},
	}
}
