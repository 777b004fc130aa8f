package execute

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), Options{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
		Timeout: 10 * time.Second,
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, "out")
	assert.Contains(t, res.Stderr, "err")
	assert.False(t, res.TimedOut)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), Options{
		Command: "sh",
		Args:    []string{"-c", "echo boom >&2; exit 3"},
		Timeout: 10 * time.Second,
	})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "boom")
}

func TestRunMissingBinary(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), Options{
		Command: "definitely-not-a-real-binary-1b2c3",
		Timeout: 5 * time.Second,
	})

	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunTimeoutReturnsPromptly(t *testing.T) {
	t.Parallel()

	start := time.Now()
	res, err := Run(context.Background(), Options{
		Command: "sleep",
		Args:    []string{"30"},
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Success)
	// timeout plus a small grace margin, nowhere near the sleep duration
	assert.Less(t, elapsed, 6*time.Second)
}

func TestLookPath(t *testing.T) {
	t.Parallel()

	_, ok := LookPath("sh")
	assert.True(t, ok)

	_, ok = LookPath("definitely-not-a-real-binary-1b2c3")
	assert.False(t, ok)
}
