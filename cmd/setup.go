// cmd/setup.go

package cmd

import (
	"github.com/forgeworks/forge/pkg/config"
	"github.com/forgeworks/forge/pkg/forge_cli"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	"github.com/forgeworks/forge/pkg/pipeline"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the full interactive setup pipeline",
	Long: `Runs the ordered setup steps: preflight, runtime version negotiation,
platform and module selection, scaffolding, pruning, environment generation,
datastore provisioning and verification. Every step is idempotent, so the
whole pipeline is safe to re-run after a partial failure.`,
	RunE: forge_cli.Wrap(func(rc *forge_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, err := cmd.Flags().GetString("root")
		if err != nil {
			return err
		}

		settings, err := config.Load(root)
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		prompter := interaction.NewPrompter()
		prompter.AssumeDefaults = yes || settings.AssumeDefaults

		pl := pipeline.New(prompter, settings)
		return pl.Run(rc, pipeline.NewState(root))
	}),
}

func init() {
	setupCmd.Flags().String("root", ".", "project root to configure")
	setupCmd.Flags().Bool("yes", false, "answer every prompt with its default")
}
