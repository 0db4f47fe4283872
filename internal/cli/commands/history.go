package commands

import (
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent validation runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			format, _ := cmd.Root().PersistentFlags().GetString("output")
			if format == "" {
				format = cfg.Output
			}

			store, err := openHistoryStore(cfg, GetLogger(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			return renderRuns(cmd.OutOrStdout(), runs, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
