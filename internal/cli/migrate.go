package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"basegraph.app/approvals/core/config"
	"basegraph.app/approvals/core/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.ServiceTypeServer)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			database, err := db.New(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
			return err
		},
	}
}
