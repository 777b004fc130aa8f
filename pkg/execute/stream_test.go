package execute

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStreamingCapturesAndClassifies(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sr := &StreamRunner{Out: &buf, Interval: 50 * time.Millisecond}

	res, err := sr.RunStreaming(context.Background(), Options{
		Command: "sh",
		Args:    []string{"-c", "echo 'Pulling images'; echo 'Starting containers'; echo 'service is healthy'"},
		Timeout: 10 * time.Second,
		Label:   "test run",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Stdout, "Pulling images")
	assert.Contains(t, res.Stdout, "healthy")
	assert.Equal(t, StageHealthy, sr.Stage())
}

func TestRunStreamingTimeout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sr := &StreamRunner{Out: &buf, Interval: 50 * time.Millisecond}

	start := time.Now()
	res, err := sr.RunStreaming(context.Background(), Options{
		Command: "sh",
		Args:    []string{"-c", "echo waiting for things; sleep 30"},
		Timeout: 300 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Success)
	assert.Less(t, elapsed, 6*time.Second)
	// output produced before the deadline is still captured
	assert.Contains(t, res.Stdout, "waiting for things")
}

func TestRunStreamingRendersDuringSilence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sr := &StreamRunner{Out: &buf, Interval: 30 * time.Millisecond}

	_, err := sr.RunStreaming(context.Background(), Options{
		Command: "sh",
		Args:    []string{"-c", "echo starting once; sleep 0.3"},
		Timeout: 10 * time.Second,
		Label:   "silent op",
	})

	require.NoError(t, err)
	// several renders happened despite a single output line
	assert.Contains(t, buf.String(), "silent op")
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("\r")), 2)
}
