// Package noderuntime negotiates Node.js version compatibility between the
// host and the project template. Version-manager state set by a child shell
// does not survive into this process, so every "did the switch work" check
// re-derives the answer from a fresh subprocess instead of trusting exit
// codes or mutated environment variables.
package noderuntime

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	cerr "github.com/cockroachdb/errors"
	goversion "github.com/hashicorp/go-version"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// State is the negotiator's verdict on the installed runtime.
type State int

const (
	StateUnknown State = iota
	StateCompatible
	StateNewerThanRecommended
	StateOlderThanMinimum
)

func (s State) String() string {
	switch s {
	case StateCompatible:
		return "compatible"
	case StateNewerThanRecommended:
		return "newer than recommended"
	case StateOlderThanMinimum:
		return "older than minimum"
	default:
		return "unknown"
	}
}

// Requirement is the project's declared runtime window.
type Requirement struct {
	Minimum     *goversion.Version
	Recommended *goversion.Version
}

// Outcome reports the final state plus whether remediation ran and was
// confirmed by a fresh version query.
type Outcome struct {
	State     State
	Installed *goversion.Version
	AutoFixed bool
}

const (
	defaultMinimum     = "20.0.0"
	defaultRecommended = "22.12.0"

	remediationTimeout = 10 * time.Minute
)

// LoadRequirement reads .nvmrc under root when present, falling back to the
// built-in window. A malformed .nvmrc is ignored rather than fatal.
func LoadRequirement(root string) Requirement {
	req := Requirement{
		Minimum:     goversion.Must(goversion.NewVersion(defaultMinimum)),
		Recommended: goversion.Must(goversion.NewVersion(defaultRecommended)),
	}

	raw, err := os.ReadFile(filepath.Join(root, ".nvmrc"))
	if err != nil {
		return req
	}
	pinned, err := goversion.NewVersion(strings.TrimPrefix(strings.TrimSpace(string(raw)), "v"))
	if err != nil {
		return req
	}
	req.Recommended = pinned
	return req
}

var nodeVersionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// InstalledVersion asks the node binary for its version.
func InstalledVersion(rc *forge_io.RuntimeContext) (*goversion.Version, error) {
	res, err := execute.Run(rc.Ctx, execute.Options{
		Command: "node",
		Args:    []string{"--version"},
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return nil, cerr.Wrap(err, "node not runnable")
	}
	if !res.Success {
		return nil, cerr.Newf("node --version exited %d", res.ExitCode)
	}
	return parseNodeVersion(res.Stdout)
}

func parseNodeVersion(output string) (*goversion.Version, error) {
	m := nodeVersionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, cerr.Newf("no version in output %q", strings.TrimSpace(output))
	}
	return goversion.NewVersion(m[1])
}

// Classify places an installed version inside the requirement window.
func Classify(installed *goversion.Version, req Requirement) State {
	if installed == nil {
		return StateUnknown
	}
	if installed.LessThan(req.Minimum) {
		return StateOlderThanMinimum
	}
	if installed.Segments()[0] > req.Recommended.Segments()[0] {
		return StateNewerThanRecommended
	}
	return StateCompatible
}

// Negotiate checks the installed runtime and, when it is below minimum,
// attempts manager-driven remediation before degrading to manual options.
// AutoFixed is only true when a fresh subprocess confirmed the new version.
func Negotiate(rc *forge_io.RuntimeContext, p *interaction.Prompter, req Requirement) (Outcome, error) {
	logger := otelzap.Ctx(rc.Ctx)

	installed, err := InstalledVersion(rc)
	if err != nil {
		logger.Warn("Could not determine installed Node.js version", zap.Error(err))
	}

	out := Outcome{State: Classify(installed, req), Installed: installed}
	logger.Info("Runtime version checked",
		zap.String("installed", versionString(installed)),
		zap.String("state", out.State.String()),
		zap.String("minimum", req.Minimum.String()),
		zap.String("recommended", req.Recommended.String()))

	switch out.State {
	case StateCompatible:
		return out, nil
	case StateNewerThanRecommended:
		// Newer majors usually work; flag it and move on.
		logger.Warn("Installed Node.js is newer than the template was tested with",
			zap.String("installed", versionString(installed)))
		return out, nil
	}

	// Below minimum (or unknown): try a discoverable version manager first.
	mgr := DiscoverManager(rc)
	if mgr != nil {
		target := req.Recommended.String()
		if p.YesNo(mgr.Name+" detected. Install Node.js "+target+" and switch to it?", true) {
			if fixed := mgr.InstallAndVerify(rc, target, req); fixed {
				out.AutoFixed = true
				out.State = StateCompatible
				return out, nil
			}
			logger.Warn("Version switch could not be confirmed, falling back to manual options")
		}
	} else {
		logger.Info("No Node.js version manager found on this host")
	}

	return out, manualRemediation(rc, p, req)
}

// manualRemediation presents the fallback choices when no manager could fix
// the mismatch. Only "abort" returns an error, and it is a user error so the
// process still exits zero.
func manualRemediation(rc *forge_io.RuntimeContext, p *interaction.Prompter, req Requirement) error {
	logger := otelzap.Ctx(rc.Ctx)

	// "Continue anyway" is the non-interactive default; the first two
	// options loop back into this menu and must never be answered by a
	// prompter that cannot change its answer.
	choice := p.Select("Node.js "+req.Minimum.String()+" or newer is required. How do you want to proceed?", []string{
		"Open the Node.js download page",
		"Show install commands",
		"Continue anyway",
		"Abort setup",
	}, 2)

	switch choice {
	case "Open the Node.js download page":
		openURL(rc, "https://nodejs.org/en/download")
		return manualRemediation(rc, p, req)
	case "Show install commands":
		logger.Info("Install with a version manager, then re-run forge setup:\n" +
			"  curl -fsSL https://fnm.vercel.app/install | bash\n" +
			"  fnm install " + req.Recommended.String() + "\n" +
			"  fnm default " + req.Recommended.String())
		return manualRemediation(rc, p, req)
	case "Continue anyway":
		logger.Warn("Continuing with an unsupported Node.js version")
		return nil
	default:
		return forge_err.NewUserError("setup aborted at runtime version check")
	}
}

func openURL(rc *forge_io.RuntimeContext, url string) {
	for _, opener := range []string{"xdg-open", "open"} {
		if _, ok := execute.LookPath(opener); ok {
			_, _ = execute.Run(rc.Ctx, execute.Options{Command: opener, Args: []string{url}, Timeout: 5 * time.Second})
			return
		}
	}
	otelzap.Ctx(rc.Ctx).Info("Open this page in your browser", zap.String("url", url))
}

func versionString(v *goversion.Version) string {
	if v == nil {
		return "unknown"
	}
	return v.String()
}
