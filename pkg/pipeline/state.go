// Package pipeline is the top-level interactive workflow: a fixed, strictly
// sequential sequence of typed steps threading one accumulating state
// object. Steps are not transactional — a failure leaves earlier effects in
// place — so every step is written to be idempotent and the whole pipeline
// is safe to re-run after a partial failure.
package pipeline

import (
	"time"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/modules"
	"github.com/forgeworks/forge/pkg/noderuntime"
	"github.com/forgeworks/forge/pkg/preflight"
)

// StepStatus is the recorded outcome of one step for the end-of-run summary.
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult summarizes one executed step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// State accumulates operator decisions as the pipeline advances. It is owned
// by the pipeline and passed by reference into each step; steps run one at a
// time so no synchronization is needed.
type State struct {
	Root string

	Report  *preflight.ReadinessReport
	Runtime noderuntime.Outcome

	Platforms map[modules.Platform]bool
	Selected  map[modules.ID]bool
	Registry  []modules.Descriptor

	Auth datastore.Strategy
	// SkipDatastore is set when the operator defers datastore setup; the
	// provisioning and schema steps are then skipped and the artifact gets
	// placeholder values.
	SkipDatastore bool
	Datastore     *datastore.Config

	RemovedPaths []string
	ArtifactPath string

	Warnings []string
	Steps    []StepResult
}

// NewState seeds a state for a project root with the registry defaults.
func NewState(root string) *State {
	st := &State{
		Root:      root,
		Platforms: map[modules.Platform]bool{modules.PlatformWeb: true},
		Selected:  make(map[modules.ID]bool),
		Registry:  modules.RegistryWithOverlay(root),
		Auth:      datastore.StrategyLocalContainer,
	}
	for _, d := range st.Registry {
		if d.DefaultSelected {
			st.Selected[d.ID] = true
		}
	}
	return st
}

// Warn records a non-fatal degradation for end-of-run messaging.
func (st *State) Warn(msg string) {
	st.Warnings = append(st.Warnings, msg)
}

func (st *State) record(name string, status StepStatus, d time.Duration, msg string) {
	st.Steps = append(st.Steps, StepResult{Name: name, Status: status, Duration: d, Message: msg})
}
