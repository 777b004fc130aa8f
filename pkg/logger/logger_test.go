package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFallbackDoesNotReplaceFileLogger(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	InitFallback()
	fallback := L()
	require.NotNil(t, fallback)

	// the file-backed tee may be installed after a fallback already exists
	InitializeWithFallback()
	teed := L()
	assert.NotSame(t, fallback, teed, "tee must take effect over the fallback")

	// but a later fallback init must never clobber the tee
	InitFallback()
	assert.Same(t, teed, L())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLogLevel("DEBUG").String())
	assert.Equal(t, "warn", ParseLogLevel("warning").String())
	assert.Equal(t, "info", ParseLogLevel("").String())
	assert.Equal(t, "info", ParseLogLevel("gibberish").String())
}
