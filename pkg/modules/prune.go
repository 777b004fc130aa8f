// pkg/modules/prune.go

package modules

import (
	"os"
	"path/filepath"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Selection carries the three pipeline decisions the pruner depends on.
type Selection struct {
	Modules   map[ID]bool
	Platforms map[Platform]bool
	Auth      datastore.Strategy
}

// EffectiveRemovals resolves which modules must go. Beyond plain
// non-selection there are two cross-cutting rules that depend on other
// pipeline decisions and are therefore kept out of the per-module defaults:
//
//   - background-jobs goes whenever the web/server platform is excluded,
//     regardless of its own selection state;
//   - the managed-auth adapter goes whenever the chosen auth strategy is not
//     a managed one.
func EffectiveRemovals(reg []Descriptor, sel Selection) []Descriptor {
	var removals []Descriptor
	for _, d := range reg {
		remove := !sel.Modules[d.ID]

		switch d.ID {
		case BackgroundJobs:
			if !sel.Platforms[PlatformWeb] {
				remove = true
			}
		case AuthAdapter:
			if !sel.Auth.Managed() {
				remove = true
			}
		}

		if remove {
			removals = append(removals, d)
		}
	}
	return removals
}

// Prune deletes the source subtree of every module resolved for removal.
// The pruner only ever removes whole directories named by the registry; it
// never edits files inside a kept module. A missing subtree is not an error,
// which is what makes re-running after a partial failure safe. Per-path
// failures are collected and do not stop the remaining work.
func Prune(rc *forge_io.RuntimeContext, root string, reg []Descriptor, sel Selection) ([]string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	var removed []string
	var errs *multierror.Error

	for _, d := range EffectiveRemovals(reg, sel) {
		path := filepath.Join(root, d.SourcePath)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Debug("Module subtree already absent", zap.String("module", string(d.ID)))
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			logger.Warn("Could not remove module subtree",
				zap.String("module", string(d.ID)),
				zap.String("path", path),
				zap.Error(err))
			errs = multierror.Append(errs, err)
			continue
		}

		logger.Info("Module pruned", zap.String("module", string(d.ID)), zap.String("path", path))
		removed = append(removed, path)
	}

	return removed, errs.ErrorOrNil()
}
