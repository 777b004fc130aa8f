// pkg/noderuntime/manager.go

package noderuntime

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Manager is a discovered Node.js version manager. Install and verify both
// run through a login shell so the manager's own init is loaded; the verify
// script must end by printing node's version, which is the only evidence the
// switch is trusted on.
type Manager struct {
	Name string
	// homePaths are well-known install locations relative to $HOME.
	homePaths []string
	// installScript installs and pins the version; %[1]s is the version.
	installScript string
	// verifyScript re-queries node's version under the manager; %[1]s is the version.
	verifyScript string
}

var knownManagers = []Manager{
	{
		Name:          "fnm",
		homePaths:     []string{".fnm", ".local/share/fnm"},
		installScript: `fnm install %[1]s && fnm default %[1]s`,
		verifyScript:  `eval "$(fnm env)" && fnm use %[1]s >/dev/null 2>&1; node --version`,
	},
	{
		Name:          "nvm",
		homePaths:     []string{".nvm/nvm.sh"},
		installScript: `. "$HOME/.nvm/nvm.sh" && nvm install %[1]s && nvm alias default %[1]s`,
		verifyScript:  `. "$HOME/.nvm/nvm.sh" && nvm use %[1]s >/dev/null && node --version`,
	},
	{
		Name:          "volta",
		homePaths:     []string{".volta/bin/volta"},
		installScript: `volta install node@%[1]s`,
		verifyScript:  `volta run --node %[1]s node --version`,
	},
}

// DiscoverManager finds an installed version manager, first via well-known
// install locations, then via a shell-capability probe.
func DiscoverManager(rc *forge_io.RuntimeContext) *Manager {
	logger := otelzap.Ctx(rc.Ctx)
	home, err := os.UserHomeDir()

	for i := range knownManagers {
		mgr := &knownManagers[i]

		if err == nil {
			for _, rel := range mgr.homePaths {
				if _, statErr := os.Stat(filepath.Join(home, rel)); statErr == nil {
					logger.Debug("Version manager found on disk",
						zap.String("manager", mgr.Name), zap.String("path", rel))
					return mgr
				}
			}
		}

		res, runErr := execute.Run(rc.Ctx, execute.Options{
			Command: "bash",
			Args:    []string{"-lc", "command -v " + mgr.Name},
			Timeout: 10 * time.Second,
		})
		if runErr == nil && res.Success {
			logger.Debug("Version manager found via shell probe", zap.String("manager", mgr.Name))
			return mgr
		}
	}
	return nil
}

// InstallAndVerify drives the manager to install and switch, then confirms
// by asking a fresh subprocess for node's version through the manager's
// environment. Returns true only when the confirmed version satisfies the
// requirement.
func (m *Manager) InstallAndVerify(rc *forge_io.RuntimeContext, target string, req Requirement) bool {
	logger := otelzap.Ctx(rc.Ctx)

	runner := execute.NewStreamRunner()
	res, err := runner.RunStreaming(rc.Ctx, execute.Options{
		Command: "bash",
		Args:    []string{"-lc", fmt.Sprintf(m.installScript, target)},
		Timeout: remediationTimeout,
		Label:   "Installing Node.js " + target + " via " + m.Name,
	})
	if err != nil {
		logger.Warn("Version manager could not be started", zap.Error(err))
		return false
	}
	if res.TimedOut {
		logger.Warn("Node.js install timed out; it may still be running",
			zap.String("manager", m.Name))
		return false
	}
	if !res.Success {
		failure := execute.ClassifyFailure(res)
		logger.Warn("Node.js install failed",
			zap.String("manager", m.Name),
			zap.Int("exit_code", res.ExitCode),
			zap.String("advice", failure.Advice))
		return false
	}

	// The child's environment changes are gone by now. Verify through a new
	// shell that loads the manager before asking node.
	verify, err := execute.Run(rc.Ctx, execute.Options{
		Command: "bash",
		Args:    []string{"-lc", fmt.Sprintf(m.verifyScript, target)},
		Timeout: 30 * time.Second,
	})
	if err != nil || !verify.Success {
		logger.Warn("Could not re-verify node version after switch", zap.String("manager", m.Name))
		return false
	}

	confirmed, parseErr := parseNodeVersion(verify.Stdout)
	if parseErr != nil {
		logger.Warn("Unparseable version after switch", zap.Error(parseErr))
		return false
	}
	if confirmed.LessThan(req.Minimum) {
		logger.Warn("Switch reported success but node still resolves below minimum",
			zap.String("confirmed", confirmed.String()))
		return false
	}

	logger.Info("Node.js switch confirmed by fresh subprocess",
		zap.String("manager", m.Name),
		zap.String("version", confirmed.String()))
	return true
}
