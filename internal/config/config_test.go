package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_InterpolatesEnvironment(t *testing.T) {
	t.Setenv("TIMECORE_TEST_DB_PATH", "/var/lib/timecore/test.db")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `database:
  path: ${TIMECORE_TEST_DB_PATH}
tracker:
  default_source: DESKTOP
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/timecore/test.db", cfg.Database.Path)
	assert.Equal(t, "DESKTOP", cfg.Tracker.DefaultSource)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.Path)
	assert.Equal(t, "WEB_TIMER", cfg.Tracker.DefaultSource)
	assert.Equal(t, "TRACKED", cfg.Tracker.DefaultLogType)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
