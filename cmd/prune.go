// cmd/prune.go

package cmd

import (
	"fmt"
	"strings"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/forge_cli"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/modules"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove unselected module subtrees non-interactively",
	Long: `Prunes every registered module not named by --keep. The same
cross-cutting rules as the interactive pipeline apply: the background-jobs
module goes when --platforms excludes web, and the managed-auth adapter goes
when --auth is not a managed strategy. Already-absent subtrees are fine, so
prune can be re-run after a partial failure.`,
	RunE: forge_cli.Wrap(func(rc *forge_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		keep, _ := cmd.Flags().GetStringSlice("keep")
		platforms, _ := cmd.Flags().GetStringSlice("platforms")
		auth, _ := cmd.Flags().GetString("auth")

		sel := modules.Selection{
			Modules:   make(map[modules.ID]bool),
			Platforms: make(map[modules.Platform]bool),
			Auth:      datastore.Strategy(auth),
		}
		for _, id := range keep {
			sel.Modules[modules.ID(strings.TrimSpace(id))] = true
		}
		for _, p := range platforms {
			sel.Platforms[modules.Platform(strings.TrimSpace(p))] = true
		}

		removed, err := modules.Prune(rc, root, modules.RegistryWithOverlay(root), sel)
		for _, path := range removed {
			fmt.Println("removed", path)
		}
		return err
	}),
}

func init() {
	pruneCmd.Flags().String("root", ".", "project root")
	pruneCmd.Flags().StringSlice("keep", nil, "module ids to keep")
	pruneCmd.Flags().StringSlice("platforms", []string{"web"}, "selected platforms (web, mobile)")
	pruneCmd.Flags().String("auth", string(datastore.StrategyLocalContainer), "auth/datastore strategy")
}
