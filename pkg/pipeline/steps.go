// pkg/pipeline/steps.go

package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/envgen"
	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/modules"
	"github.com/forgeworks/forge/pkg/noderuntime"
	"github.com/forgeworks/forge/pkg/preflight"
	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func stepPreflight(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	logger := otelzap.Ctx(rc.Ctx)

	st.Report = preflight.Check(rc)
	logger.Info("Host readiness:\n" + preflight.Render(st.Report))

	if missing := st.Report.Blocking(); len(missing) > 0 {
		for _, tool := range missing {
			logger.Warn("Required tool missing", zap.String("tool", tool.Name))
		}
		if !pl.Prompter.YesNo("Required tools are missing; setup will likely fail. Continue anyway?", false) {
			return forge_err.NewUserError("setup aborted at preflight")
		}
	}

	for _, port := range st.Report.Ports {
		if !port.Available {
			st.Warn("port in use before provisioning (may be a previous session)")
			break
		}
	}
	return nil
}

func stepRuntime(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	req := noderuntime.LoadRequirement(st.Root)

	outcome, err := noderuntime.Negotiate(rc, pl.Prompter, req)
	if err != nil {
		return err
	}
	st.Runtime = outcome

	if outcome.AutoFixed {
		// The switch was confirmed by a fresh subprocess, but the report was
		// taken before it; refresh and let the operator re-confirm.
		st.Report = preflight.Check(rc)
		if !pl.Prompter.YesNo("Node.js was switched. Continue with setup?", true) {
			return forge_err.NewUserError("setup aborted after runtime switch")
		}
	}
	return nil
}

func stepPlatforms(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	chosen := pl.Prompter.MultiSelect("Which platforms is this project for?",
		[]string{"Web", "Mobile"}, []int{0})

	st.Platforms = make(map[modules.Platform]bool)
	for _, c := range chosen {
		switch c {
		case "Web":
			st.Platforms[modules.PlatformWeb] = true
		case "Mobile":
			st.Platforms[modules.PlatformMobile] = true
		}
	}
	if len(st.Platforms) == 0 {
		st.Platforms[modules.PlatformWeb] = true
	}
	return nil
}

func stepModules(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	// Offer only modules whose platform constraint is satisfied; the
	// server-only jobs module disappears from the menu entirely when the web
	// platform is excluded.
	var offered []modules.Descriptor
	var names []string
	var defaults []int
	for _, d := range st.Registry {
		if d.PlatformConstraint != "" && !st.Platforms[d.PlatformConstraint] {
			continue
		}
		if d.DefaultSelected {
			defaults = append(defaults, len(offered))
		}
		offered = append(offered, d)
		names = append(names, d.DisplayName)
	}

	chosen := pl.Prompter.MultiSelect("Which optional modules do you want to keep?", names, defaults)

	st.Selected = make(map[modules.ID]bool)
	for _, name := range chosen {
		for _, d := range offered {
			if d.DisplayName == name {
				st.Selected[d.ID] = true
			}
		}
	}
	return nil
}

func stepAuthChoice(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	choice := pl.Prompter.Select("How should auth and the datastore be backed?", []string{
		"Local containerized service (recommended for development)",
		"Remote managed service (existing hosted project)",
		"Embedded file store (SQLite, no containers)",
		"Skip for now (configure by hand later)",
	}, 0)

	switch choice {
	case "Remote managed service (existing hosted project)":
		st.Auth = datastore.StrategyRemoteManaged
	case "Embedded file store (SQLite, no containers)":
		st.Auth = datastore.StrategyEmbedded
	case "Skip for now (configure by hand later)":
		st.Auth = datastore.StrategyLocalContainer
		st.SkipDatastore = true
		st.Warn("datastore setup skipped; .env.local holds placeholder values")
	default:
		st.Auth = datastore.StrategyLocalContainer
	}
	return nil
}

func stepScaffold(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	logger := otelzap.Ctx(rc.Ctx)

	timeout := 10 * time.Minute
	if pl.Settings != nil && pl.Settings.InstallTimeout > 0 {
		timeout = pl.Settings.InstallTimeout
	}

	runner := execute.NewStreamRunner()
	res, err := runner.RunStreaming(rc.Ctx, execute.Options{
		Command: "pnpm",
		Args:    []string{"install"},
		Dir:     st.Root,
		Timeout: timeout,
		Label:   "Installing dependencies",
	})
	if err != nil {
		return err
	}
	if res.TimedOut {
		st.Warn("dependency install timed out; run 'pnpm install' manually")
	} else if !res.Success {
		failure := execute.ClassifyFailure(res)
		st.Warn("dependency install failed: " + failure.Advice)
	}

	if st.Platforms[modules.PlatformMobile] {
		if err := scaffoldMobileConfig(rc, st.Root); err != nil {
			st.Warn("mobile scaffolding incomplete: " + err.Error())
		}
	}

	logger.Debug("Scaffolding finished")
	return nil
}

// scaffoldMobileConfig materializes the mobile app config from its example
// file. Already-materialized config is left untouched so re-runs are safe.
func scaffoldMobileConfig(rc *forge_io.RuntimeContext, root string) error {
	src := filepath.Join(root, "apps", "mobile", "app.config.example.ts")
	dst := filepath.Join(root, "apps", "mobile", "app.config.ts")

	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // template ships without a mobile app
		}
		return err
	}
	return os.WriteFile(dst, raw, 0o644)
}

func stepPrune(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	sel := modules.Selection{
		Modules:   st.Selected,
		Platforms: st.Platforms,
		Auth:      st.Auth,
	}

	removed, err := modules.Prune(rc, st.Root, st.Registry, sel)
	st.RemovedPaths = append(st.RemovedPaths, removed...)
	if err != nil {
		// Per-path failures were already logged; surface them once as a
		// warning and keep going.
		st.Warn("some module paths could not be removed: " + err.Error())
	}
	return nil
}

func stepEnvArtifact(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	ds := st.Datastore
	if ds == nil {
		// Provisioning runs after generation on purpose: the artifact must
		// exist even when provisioning is skipped or fails. The provisioning
		// step regenerates it once real values exist.
		ds = datastore.Placeholder(st.Auth)
	}

	path, err := envgen.WriteArtifact(rc, st.Root, st.Registry, st.Selected, ds, st.Auth)
	if err != nil {
		return err
	}
	st.ArtifactPath = path
	return nil
}

func stepProvision(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	prov := datastore.ForStrategy(st.Auth, st.Root, pl.Prompter)
	if lc, ok := prov.(*datastore.LocalContainer); ok && pl.Settings != nil {
		lc.StartTimeout = pl.Settings.StartTimeout
	}

	cfg, err := prov.Provision(rc)
	if err != nil {
		return err
	}
	st.Datastore = cfg
	st.Warnings = append(st.Warnings, cfg.Warnings...)

	// Regenerate the artifact now that real connection values exist.
	path, err := envgen.WriteArtifact(rc, st.Root, st.Registry, st.Selected, cfg, st.Auth)
	if err != nil {
		return err
	}
	st.ArtifactPath = path
	return nil
}

func stepSchema(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	if !pl.Prompter.YesNo("Apply the template's schema and seed data now?", true) {
		st.Warn("schema not applied; run it manually before first start")
		return nil
	}
	before := len(st.Datastore.Warnings)
	datastore.ApplySchema(rc, st.Root, st.Datastore)
	st.Warnings = append(st.Warnings, st.Datastore.Warnings[before:]...)
	return nil
}

func stepVerify(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
	logger := otelzap.Ctx(rc.Ctx)

	if st.ArtifactPath != "" {
		if _, err := godotenv.Read(st.ArtifactPath); err != nil {
			st.Warn("generated artifact does not parse: " + err.Error())
		}
	}

	// With the local strategy up, its ports are expected to be busy now;
	// silence would suggest the service never came up.
	if st.Auth == datastore.StrategyLocalContainer && !st.SkipDatastore && st.Datastore != nil {
		busy := 0
		for _, port := range preflight.DatastorePorts {
			if !preflight.PortAvailable(port, time.Second) {
				busy++
			}
		}
		if busy == 0 {
			st.Warn("no datastore ports are listening; the local service may not be running")
		}
	}

	logger.Info("Setup summary")
	for _, step := range st.Steps {
		logger.Info("  step",
			zap.String("name", step.Name),
			zap.String("status", string(step.Status)),
			zap.Duration("duration", step.Duration.Round(time.Millisecond)))
	}
	for _, w := range st.Warnings {
		logger.Warn("  " + w)
	}
	if st.Datastore != nil {
		if st.Datastore.DashboardURL != "" {
			logger.Info("Dashboard: " + st.Datastore.DashboardURL)
		}
		if st.Datastore.Seeded {
			logger.Info("Seed data applied; sign in with the demo account from the docs")
		}
	}
	return nil
}
