package preflight

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortAvailable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	bound := ln.Addr().(*net.TCPAddr).Port

	assert.False(t, PortAvailable(bound, time.Second), "bound port must report unavailable")

	// find a free port by binding and releasing it first
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	free := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	assert.True(t, PortAvailable(free, time.Second), "released port must report available")
}

func TestCheckIsNonMutatingAndRepeatable(t *testing.T) {
	t.Parallel()

	rc := &forge_io.RuntimeContext{Ctx: context.Background()}

	first := Check(rc)
	second := Check(rc)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, len(first.Tools), len(second.Tools))
	assert.Equal(t, len(DatastorePorts), len(first.Ports))

	// severity wiring: node and pnpm block, the rest never do
	for _, tool := range first.Tools {
		switch tool.Name {
		case "node", "pnpm":
			assert.Equal(t, Required, tool.Severity, tool.Name)
		default:
			assert.Equal(t, Recommended, tool.Severity, tool.Name)
		}
	}
}

func TestBlockingOnlyReportsMissingRequired(t *testing.T) {
	t.Parallel()

	report := &ReadinessReport{
		Tools: []ToolCheck{
			{Name: "node", Present: false, Severity: Required},
			{Name: "git", Present: false, Severity: Recommended},
			{Name: "pnpm", Present: true, Severity: Required},
		},
	}

	missing := report.Blocking()
	require.Len(t, missing, 1)
	assert.Equal(t, "node", missing[0].Name)
}

func TestRenderNeverPanics(t *testing.T) {
	t.Parallel()

	report := &ReadinessReport{
		Tools: []ToolCheck{{Name: "node", Present: true, Version: "22.1.0", Severity: Required}},
		Ports: []PortCheck{{Port: 54321, Available: false}},
		Disk:  DiskCheck{Known: false},
	}

	out := Render(report)
	assert.Contains(t, out, "node")
	assert.Contains(t, out, fmt.Sprint(54321))
	assert.Contains(t, out, "unknown")
}
