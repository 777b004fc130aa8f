// cmd/env.go

package cmd

import (
	"fmt"
	"strings"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/envgen"
	"github.com/forgeworks/forge/pkg/forge_cli"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/modules"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Regenerate .env.local from the template",
	Long: `Regenerates the environment artifact for the given module selection
and strategy. Connection values not provisioned in this run come out as
placeholders; values you already set in an existing .env.local are kept.`,
	RunE: forge_cli.Wrap(func(rc *forge_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		keep, _ := cmd.Flags().GetStringSlice("keep")
		auth, _ := cmd.Flags().GetString("auth")

		reg := modules.RegistryWithOverlay(root)
		selected := make(map[modules.ID]bool)
		if len(keep) == 0 {
			for _, d := range reg {
				if d.DefaultSelected {
					selected[d.ID] = true
				}
			}
		} else {
			for _, id := range keep {
				selected[modules.ID(strings.TrimSpace(id))] = true
			}
		}

		strategy := datastore.Strategy(auth)
		path, err := envgen.WriteArtifact(rc, root, reg, selected, datastore.Placeholder(strategy), strategy)
		if err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}),
}

func init() {
	envCmd.Flags().String("root", ".", "project root")
	envCmd.Flags().StringSlice("keep", nil, "module ids to keep (defaults to registry defaults)")
	envCmd.Flags().String("auth", string(datastore.StrategyLocalContainer), "auth/datastore strategy")
}
