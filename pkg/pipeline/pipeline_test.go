package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedPrompter(input string) *interaction.Prompter {
	return &interaction.Prompter{
		In:  bufio.NewReader(strings.NewReader(input)),
		Out: &bytes.Buffer{},
	}
}

func testRC() *forge_io.RuntimeContext {
	return &forge_io.RuntimeContext{Ctx: context.Background()}
}

func TestStepOrderIsFixed(t *testing.T) {
	t.Parallel()

	pl := New(scriptedPrompter(""), nil)

	var names []string
	for _, s := range pl.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"preflight",
		"runtime version",
		"platform choice",
		"module choice",
		"auth/datastore choice",
		"scaffolding",
		"module pruning",
		"environment artifact",
		"datastore provisioning",
		"schema and seed",
		"verification",
	}, names)
}

func TestConditionsGateDatastoreSteps(t *testing.T) {
	t.Parallel()

	st := NewState(t.TempDir())

	assert.True(t, wantsProvisioning(st))
	st.SkipDatastore = true
	assert.False(t, wantsProvisioning(st))
	assert.False(t, wantsSchema(st))
}

func TestRunRecordsSkippedSteps(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("")}
	pl.Steps = []Step{
		{Name: "always", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error { return nil }},
		{Name: "never", Condition: func(*State) bool { return false },
			Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
				t.Fatal("gated step must not run")
				return nil
			}},
	}

	st := NewState(t.TempDir())
	require.NoError(t, pl.Run(testRC(), st))

	require.Len(t, st.Steps, 2)
	assert.Equal(t, StatusSuccess, st.Steps[0].Status)
	assert.Equal(t, StatusSkipped, st.Steps[1].Status)
}

func TestRunRetryThenContinue(t *testing.T) {
	t.Parallel()

	attempts := 0
	// first failure answered with "Retry", second with "Continue without it"
	pl := &Pipeline{Prompter: scriptedPrompter("1\n2\n")}
	pl.Steps = []Step{
		{Name: "flaky", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
			attempts++
			return cerr.New("still broken")
		}},
		{Name: "tail", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error { return nil }},
	}

	st := NewState(t.TempDir())
	require.NoError(t, pl.Run(testRC(), st))

	assert.Equal(t, 2, attempts)
	assert.Equal(t, StatusFailed, st.Steps[0].Status)
	assert.Equal(t, StatusSuccess, st.Steps[1].Status)
	assert.NotEmpty(t, st.Warnings)
}

func TestRunAssumeDefaultsTerminatesOnStepFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	pl := &Pipeline{Prompter: &interaction.Prompter{AssumeDefaults: true}}
	pl.Steps = []Step{
		{Name: "broken", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
			attempts++
			return cerr.New("always broken")
		}},
		{Name: "tail", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error { return nil }},
	}

	st := NewState(t.TempDir())
	require.NoError(t, pl.Run(testRC(), st))

	// the non-interactive default must move past the failure, not retry it
	assert.Equal(t, 1, attempts)
	require.Len(t, st.Steps, 2)
	assert.Equal(t, StatusFailed, st.Steps[0].Status)
	assert.Equal(t, StatusSuccess, st.Steps[1].Status)
	assert.NotEmpty(t, st.Warnings)
}

func TestRunAbortIsAUserError(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("3\n")}
	ran := false
	pl.Steps = []Step{
		{Name: "broken", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
			return cerr.New("boom")
		}},
		{Name: "tail", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
			ran = true
			return nil
		}},
	}

	err := pl.Run(testRC(), NewState(t.TempDir()))
	require.Error(t, err)
	assert.True(t, forge_err.IsExpectedUserError(err), "abort must exit softly")
	assert.False(t, ran, "abort stops the pipeline")
}

func TestRunUserErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("")}
	pl.Steps = []Step{
		{Name: "declined", Run: func(rc *forge_io.RuntimeContext, pl *Pipeline, st *State) error {
			return forge_err.NewUserError("operator declined")
		}},
	}

	err := pl.Run(testRC(), NewState(t.TempDir()))
	require.Error(t, err)
	assert.True(t, forge_err.IsExpectedUserError(err))
}
