package commands

import (
	"github.com/spf13/cobra"

	"github.com/safeledger/dashboard/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running it without a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	serveCmd := newServeCommand()

	rootCmd := &cobra.Command{
		Use:     "safeledger-dashboard",
		Short:   "Backend for the SafeLedger dashboard",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}

	rootCmd.AddCommand(serveCmd, newVersionCommand())

	return rootCmd
}
