package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the approvalsctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "approvalsctl",
		Short:         "Operator tooling for the approvals service",
		Long:          "Applies migrations, provisions service credentials and signs or verifies webhook payloads.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("output", "o", formatJSON, "Output format: json or yaml")

	root.AddCommand(newMigrateCommand())
	root.AddCommand(newServiceCommand())
	root.AddCommand(newWebhookCommand())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
