// pkg/datastore/provision.go

package datastore

import (
	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	cerr "github.com/cockroachdb/errors"
)

// Provisioner is the one contract all strategies satisfy.
type Provisioner interface {
	// Provision produces connection credentials. It degrades to placeholder
	// values with warnings instead of failing; the returned error is
	// reserved for programmer mistakes, not provisioning outcomes.
	Provision(rc *forge_io.RuntimeContext) (*Config, error)
}

// ForStrategy returns the provisioner implementing the chosen strategy.
func ForStrategy(s Strategy, root string, p *interaction.Prompter) Provisioner {
	switch s {
	case StrategyLocalContainer:
		return &LocalContainer{Root: root}
	case StrategyRemoteManaged:
		return &RemoteManaged{Prompter: p}
	default:
		return &Embedded{Root: root}
	}
}

// execErr turns a failed ProcessResult into a concise error.
func execErr(res *execute.ProcessResult) error {
	return cerr.Newf("exit %d: %s", res.ExitCode, forge_err.ExtractSummary(res.Combined(), 2))
}
