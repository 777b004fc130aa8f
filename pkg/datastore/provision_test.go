package datastore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/interaction"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedProvisionIsFastAndLocal(t *testing.T) {
	t.Parallel()

	rc := &forge_io.RuntimeContext{Ctx: context.Background()}
	e := &Embedded{Root: t.TempDir()}

	start := time.Now()
	cfg, err := e.Provision(rc)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, StrategyEmbedded, cfg.Strategy)
	assert.True(t, strings.HasPrefix(cfg.ConnectionString, "file:"))
	assert.Empty(t, cfg.Warnings)
	assert.FileExists(t, strings.TrimPrefix(cfg.ConnectionString, "file:"))
	assert.Less(t, elapsed, 2*time.Second, "embedded store must not do slow work")
}

func TestEmbeddedProvisionIsRepeatable(t *testing.T) {
	t.Parallel()

	rc := &forge_io.RuntimeContext{Ctx: context.Background()}
	e := &Embedded{Root: t.TempDir()}

	first, err := e.Provision(rc)
	require.NoError(t, err)
	second, err := e.Provision(rc)
	require.NoError(t, err)

	assert.Equal(t, first.ConnectionString, second.ConnectionString)
}

func TestLocalContainerUnreachableEngineDegrades(t *testing.T) {
	t.Parallel()

	rc := &forge_io.RuntimeContext{Ctx: context.Background()}
	lc := &LocalContainer{
		Root: t.TempDir(),
		EnginePing: func(rc *forge_io.RuntimeContext) error {
			return cerr.New("cannot connect to the engine socket")
		},
	}

	cfg, err := lc.Provision(rc)

	require.NoError(t, err, "an unreachable engine is a warning, not a failure")
	assert.Equal(t, StrategyLocalContainer, cfg.Strategy)
	assert.NotEmpty(t, cfg.Warnings)
	assert.Equal(t, defaultLocalDBURL, cfg.ConnectionString)
	assert.Equal(t, placeholderValue, cfg.ReadCredential)
}

func TestManualEntryWarnsInStableOrder(t *testing.T) {
	t.Parallel()

	rc := &forge_io.RuntimeContext{Ctx: context.Background()}
	r := &RemoteManaged{Prompter: &interaction.Prompter{AssumeDefaults: true}}

	cfg, err := r.manualEntry(rc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"endpoint URL left empty; fill it in .env.local before first run",
		"anon key left empty; fill it in .env.local before first run",
		"service_role key left empty; fill it in .env.local before first run",
		"connection string left empty; fill it in .env.local before first run",
	}, cfg.Warnings, "end-of-run messaging must not reorder between runs")
}

func TestPlaceholderPerStrategy(t *testing.T) {
	t.Parallel()

	local := Placeholder(StrategyLocalContainer, "w1")
	assert.Equal(t, defaultLocalAPIURL, local.EndpointURL)
	assert.Equal(t, []string{"w1"}, local.Warnings)

	remote := Placeholder(StrategyRemoteManaged)
	assert.Equal(t, placeholderValue, remote.EndpointURL)

	embedded := Placeholder(StrategyEmbedded)
	assert.Equal(t, "file:data/app.db", embedded.ConnectionString)
}

func TestStrategyPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, StrategyLocalContainer.Managed())
	assert.True(t, StrategyRemoteManaged.Managed())
	assert.False(t, StrategyEmbedded.Managed())

	assert.True(t, StrategyLocalContainer.Relational())
	assert.False(t, StrategyEmbedded.Relational())
}
