// pkg/pipeline/pipeline.go

package pipeline

import (
	"time"

	"github.com/forgeworks/forge/pkg/config"
	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Step is one unit of the workflow. Condition gates conditional steps; a nil
// Condition always runs. Run mutates the shared state and talks to the
// operator through the pipeline's prompter.
type Step struct {
	Name      string
	Condition func(*State) bool
	Run       func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error
}

// Pipeline executes the fixed step order, prompting retry/continue/abort on
// recoverable failures rather than ever auto-retrying: a half-applied
// provisioning action is not guaranteed safe to repeat.
type Pipeline struct {
	Prompter *interaction.Prompter
	Settings *config.Settings
	Steps    []Step
}

// New builds the standard setup pipeline.
func New(p *interaction.Prompter, settings *config.Settings) *Pipeline {
	pl := &Pipeline{Prompter: p, Settings: settings}
	pl.Steps = []Step{
		{Name: "preflight", Run: stepPreflight},
		{Name: "runtime version", Run: stepRuntime},
		{Name: "platform choice", Run: stepPlatforms},
		{Name: "module choice", Run: stepModules},
		{Name: "auth/datastore choice", Run: stepAuthChoice},
		{Name: "scaffolding", Run: stepScaffold},
		{Name: "module pruning", Run: stepPrune},
		{Name: "environment artifact", Run: stepEnvArtifact},
		{Name: "datastore provisioning", Condition: wantsProvisioning, Run: stepProvision},
		{Name: "schema and seed", Condition: wantsSchema, Run: stepSchema},
		{Name: "verification", Run: stepVerify},
	}
	return pl
}

func wantsProvisioning(st *State) bool { return !st.SkipDatastore }

func wantsSchema(st *State) bool {
	return !st.SkipDatastore && st.Auth.Relational() && st.Datastore != nil
}

// Run drives the steps in order. Only an operator abort or an internal fault
// stops the pipeline; step failures degrade through the retry/continue/abort
// prompt so the run can always reach the end-of-run summary.
func (pl *Pipeline) Run(rc *forge_io.RuntimeContext, st *State) error {
	logger := otelzap.Ctx(rc.Ctx)

	for _, step := range pl.Steps {
		if step.Condition != nil && !step.Condition(st) {
			logger.Debug("Step skipped", zap.String("step", step.Name))
			st.record(step.Name, StatusSkipped, 0, "")
			continue
		}

		for {
			start := time.Now()
			err := step.Run(rc, pl, st)
			elapsed := time.Since(start)

			if err == nil {
				st.record(step.Name, StatusSuccess, elapsed, "")
				break
			}

			if forge_err.IsExpectedUserError(err) {
				st.record(step.Name, StatusFailed, elapsed, err.Error())
				return err
			}

			logger.Error("Step failed",
				zap.String("step", step.Name),
				zap.Error(err))

			// Non-interactive runs default to "Continue without it": the
			// failure becomes a warning and the run still reaches its
			// summary instead of retrying without bound.
			choice := pl.Prompter.Select("Step \""+step.Name+"\" failed. What now?", []string{
				"Retry this step",
				"Continue without it",
				"Abort setup",
			}, 1)
			switch choice {
			case "Retry this step":
				continue
			case "Continue without it":
				st.record(step.Name, StatusFailed, elapsed, err.Error())
				st.Warn("step \"" + step.Name + "\" skipped after failure: " + err.Error())
			default:
				st.record(step.Name, StatusFailed, elapsed, err.Error())
				return forge_err.NewUserError("setup aborted after step \"" + step.Name + "\" failed")
			}
			break
		}
	}

	return nil
}
