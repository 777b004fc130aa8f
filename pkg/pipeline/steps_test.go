package pipeline

import (
	"testing"

	"github.com/forgeworks/forge/pkg/datastore"
	"github.com/forgeworks/forge/pkg/modules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepPlatforms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[modules.Platform]bool
	}{
		{"defaults to web", "\n", map[modules.Platform]bool{modules.PlatformWeb: true}},
		{"both platforms", "1,2\n", map[modules.Platform]bool{modules.PlatformWeb: true, modules.PlatformMobile: true}},
		{"mobile only", "2\n", map[modules.Platform]bool{modules.PlatformMobile: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := &Pipeline{Prompter: scriptedPrompter(tt.input)}
			st := NewState(t.TempDir())

			require.NoError(t, stepPlatforms(testRC(), pl, st))
			assert.Equal(t, tt.want, st.Platforms)
		})
	}
}

func TestStepModulesHidesServerOnlyWithoutWeb(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("\n")}
	st := NewState(t.TempDir())
	st.Platforms = map[modules.Platform]bool{modules.PlatformMobile: true}

	require.NoError(t, stepModules(testRC(), pl, st))

	assert.False(t, st.Selected[modules.BackgroundJobs],
		"server-only module must not be selectable without the web platform")
}

func TestStepModulesKeepsDefaultsOnEmptyInput(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("\n")}
	st := NewState(t.TempDir())

	require.NoError(t, stepModules(testRC(), pl, st))

	for _, d := range st.Registry {
		if d.DefaultSelected {
			assert.True(t, st.Selected[d.ID], string(d.ID))
		}
	}
	assert.False(t, st.Selected[modules.Video])
}

func TestStepAuthChoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		want     datastore.Strategy
		wantSkip bool
	}{
		{"1\n", datastore.StrategyLocalContainer, false},
		{"2\n", datastore.StrategyRemoteManaged, false},
		{"3\n", datastore.StrategyEmbedded, false},
		{"4\n", datastore.StrategyLocalContainer, true},
	}

	for _, tt := range tests {
		pl := &Pipeline{Prompter: scriptedPrompter(tt.input)}
		st := NewState(t.TempDir())

		require.NoError(t, stepAuthChoice(testRC(), pl, st))
		assert.Equal(t, tt.want, st.Auth)
		assert.Equal(t, tt.wantSkip, st.SkipDatastore)
	}
}

func TestStepEnvArtifactWithoutProvisionedDatastore(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("")}
	st := NewState(t.TempDir())
	st.Auth = datastore.StrategyEmbedded

	require.NoError(t, stepEnvArtifact(testRC(), pl, st))
	assert.FileExists(t, st.ArtifactPath)
}

func TestStepPruneUsesCrossCuttingRules(t *testing.T) {
	t.Parallel()

	pl := &Pipeline{Prompter: scriptedPrompter("")}
	st := NewState(t.TempDir())
	st.Platforms = map[modules.Platform]bool{modules.PlatformMobile: true}
	st.Selected[modules.BackgroundJobs] = true

	// nothing scaffolded on disk: prune still succeeds and removes nothing
	require.NoError(t, stepPrune(testRC(), pl, st))
	assert.Empty(t, st.RemovedPaths)
}
