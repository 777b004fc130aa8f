/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"

	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/logger"
	"github.com/spf13/cobra"
)

// RootCmd is the base command for forge.
var RootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Forge configures a freshly cloned project template for first use",
	Long: `Forge is the setup orchestrator for the template: it checks the host,
negotiates the Node.js version, lets you pick the optional modules to keep,
provisions a datastore, prunes what you dropped and writes .env.local.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RootCmd.AddCommand(setupCmd)
	RootCmd.AddCommand(preflightCmd)
	RootCmd.AddCommand(pruneCmd)
	RootCmd.AddCommand(envCmd)
}

// Execute runs the CLI. Voluntary early termination (the operator declined
// to continue) exits zero; only unhandled internal faults exit non-zero.
func Execute() {
	defer logger.Sync()

	if err := RootCmd.Execute(); err != nil {
		if forge_err.IsExpectedUserError(err) {
			fmt.Fprintf(os.Stderr, "forge: %v\n", err)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "forge: error: %v\n", err)
		os.Exit(1)
	}
}
