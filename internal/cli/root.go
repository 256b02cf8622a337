// Package cli wires the modelfetch commands.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "modelfetch",
		Short:        "Download model artifacts for a GPU image bootstrap",
		Long:         "modelfetch drains batches of model downloads through a bounded worker pool,\nfalling back across hub, aria2 and wget backends per file.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Optional .env for local runs; the container injects real
			// env vars.
			_ = godotenv.Load()
		},
	}

	root.AddCommand(newFetchCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}

	return 0
}
