// pkg/datastore/remote.go

package datastore

import (
	"regexp"
	"strings"
	"time"

	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// RemoteManaged links a hosted project, either by driving the companion CLI
// or by manual credential entry. There is no safe local default for a remote
// credential, so extraction failures always fall back to asking the
// operator, never to placeholder guessing.
type RemoteManaged struct {
	Prompter *interaction.Prompter
}

var projectRefPattern = regexp.MustCompile(`\b([a-z]{20})\b`)

func (r *RemoteManaged) Provision(rc *forge_io.RuntimeContext) (*Config, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if _, ok := execute.LookPath("supabase"); ok {
		if r.Prompter.YesNo("Use the supabase CLI to link an existing project?", true) {
			if cfg := r.linkViaCLI(rc); cfg != nil {
				return cfg, nil
			}
			logger.Warn("CLI linking did not yield credentials, switching to manual entry")
		}
	} else {
		logger.Info("supabase CLI not found, collecting credentials manually")
	}

	return r.manualEntry(rc)
}

// linkViaCLI lists the account's projects and links the chosen one. Any
// missing piece returns nil so the caller falls through to manual entry.
func (r *RemoteManaged) linkViaCLI(rc *forge_io.RuntimeContext) *Config {
	logger := otelzap.Ctx(rc.Ctx)

	list, err := execute.Run(rc.Ctx, execute.Options{
		Command: "supabase",
		Args:    []string{"projects", "list"},
		Timeout: time.Minute,
	})
	if err != nil || !list.Success {
		logger.Warn("Could not list remote projects; are you logged in? (supabase login)")
		return nil
	}

	refs := projectRefPattern.FindAllString(list.Stdout, -1)
	if len(refs) == 0 {
		logger.Warn("No project references found in CLI output")
		return nil
	}

	ref := refs[0]
	if len(refs) > 1 {
		ref = r.Prompter.Select("Which project should this template use?", refs, 0)
	}

	link, err := execute.Run(rc.Ctx, execute.Options{
		Command: "supabase",
		Args:    []string{"link", "--project-ref", ref},
		Timeout: 2 * time.Minute,
	})
	if err != nil || !link.Success {
		logger.Warn("Project link failed", zap.String("project_ref", ref))
		return nil
	}

	logger.Info("Remote project linked", zap.String("project_ref", ref))

	// The CLI does not print API keys; those still come from the operator.
	cfg, err := r.manualEntry(rc)
	if err != nil {
		return nil
	}
	if cfg.EndpointURL == placeholderValue || cfg.EndpointURL == "" {
		cfg.EndpointURL = "https://" + ref + ".supabase.co"
	}
	cfg.DashboardURL = "https://supabase.com/dashboard/project/" + ref
	return cfg
}

// manualEntry walks the operator through the dashboard values. Secrets are
// read without echo when a terminal is available.
func (r *RemoteManaged) manualEntry(rc *forge_io.RuntimeContext) (*Config, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Enter the values from your project's dashboard (Settings → API)")

	cfg := &Config{Strategy: StrategyRemoteManaged}
	cfg.EndpointURL = strings.TrimSpace(r.Prompter.Input("Project URL", ""))

	anon, err := r.Prompter.Secret("anon key")
	if err != nil {
		anon = r.Prompter.Input("anon key (visible)", "")
	}
	service, err := r.Prompter.Secret("service_role key")
	if err != nil {
		service = r.Prompter.Input("service_role key (visible)", "")
	}
	cfg.ReadCredential = anon
	cfg.WriteCredential = service
	cfg.ConnectionString = strings.TrimSpace(r.Prompter.Input("Database connection string", ""))

	for _, field := range []struct {
		name  string
		value string
	}{
		{"endpoint URL", cfg.EndpointURL},
		{"anon key", cfg.ReadCredential},
		{"service_role key", cfg.WriteCredential},
		{"connection string", cfg.ConnectionString},
	} {
		if field.value == "" {
			cfg.Warnings = append(cfg.Warnings, field.name+" left empty; fill it in .env.local before first run")
		}
	}
	return cfg, nil
}
