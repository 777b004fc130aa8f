// cmd/preflight.go

package cmd

import (
	"fmt"

	"github.com/forgeworks/forge/pkg/forge_cli"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/preflight"
	"github.com/spf13/cobra"
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Probe the host and print a readiness report",
	Long: `Checks required and recommended tools, datastore ports and free disk
space without changing anything. Safe to run as often as you like.`,
	RunE: forge_cli.Wrap(func(rc *forge_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		report := preflight.Check(rc)
		fmt.Print(preflight.Render(report))

		if missing := report.Blocking(); len(missing) > 0 {
			for _, tool := range missing {
				fmt.Printf("required tool %q is missing\n", tool.Name)
			}
		}
		return nil
	}),
}
