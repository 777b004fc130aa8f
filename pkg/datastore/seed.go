// pkg/datastore/seed.go

package datastore

import (
	"strings"
	"time"

	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ApplySchema pushes the template's migrations (and seed data when present)
// to a relational datastore. The command is treated as opaque: we consume
// only success/failure and whether the output mentions seeding, which feeds
// end-of-run messaging. Failures degrade to a warning on the config.
func ApplySchema(rc *forge_io.RuntimeContext, root string, cfg *Config) {
	logger := otelzap.Ctx(rc.Ctx)

	if !cfg.Strategy.Relational() {
		return
	}

	args := []string{"db", "push", "--include-seed"}
	if cfg.Strategy == StrategyLocalContainer {
		args = []string{"db", "reset"}
	}

	runner := execute.NewStreamRunner()
	res, err := runner.RunStreaming(rc.Ctx, execute.Options{
		Command: "supabase",
		Args:    args,
		Dir:     root,
		Timeout: 5 * time.Minute,
		Label:   "Applying schema",
	})
	if err != nil {
		cfg.Warnings = append(cfg.Warnings, "schema apply could not start: "+err.Error())
		return
	}
	if res.TimedOut {
		cfg.Warnings = append(cfg.Warnings, "schema apply timed out; verify migrations before first run")
		return
	}
	if !res.Success {
		failure := execute.ClassifyFailure(res)
		logger.Warn("Schema apply failed", zap.String("advice", failure.Advice))
		cfg.Warnings = append(cfg.Warnings, "schema apply failed: "+failure.Advice)
		return
	}

	cfg.Seeded = strings.Contains(strings.ToLower(res.Combined()), "seed")
	logger.Info("Schema applied", zap.Bool("seeded", cfg.Seeded))
}
