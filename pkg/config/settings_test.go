package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, s.StartTimeout)
	assert.Equal(t, 10*time.Minute, s.InstallTimeout)
	assert.False(t, s.AssumeDefaults)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfg := "startTimeout: 3m\nassumeDefaults: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forge.yaml"), []byte(cfg), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Minute, s.StartTimeout)
	assert.True(t, s.AssumeDefaults)
	assert.Equal(t, 10*time.Minute, s.InstallTimeout, "unset keys keep defaults")
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forge.yaml"), []byte("startTimeout: [unclosed\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
