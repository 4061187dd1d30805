package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
scanner:
  target_media_path: /media/takeout
  database_path: /media/takeout/catalog.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 1000, cfg.Scanner.QueueMaxSize)
	assert.Equal(t, 100, cfg.Scanner.BatchSize)
	assert.Greater(t, cfg.Scanner.WorkerProcesses, 0)
}

func TestLoadNormalizesLogLevelCase(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: SIMPLE
scanner:
  target_media_path: /media/takeout
  database_path: /media/takeout/catalog.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "simple", cfg.Logging.Format)
}

func TestLoadRejectsUnknownTopLevelSection(t *testing.T) {
	path := writeConfig(t, `
scanner:
  target_media_path: /media/takeout
unknown_section:
  foo: bar
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
scanner:
  target_media_path: /media/takeout
  bogus_field: 1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: LOUD
scanner:
  target_media_path: /media/takeout
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRequiresTargetMediaPath(t *testing.T) {
	path := writeConfig(t, `
scanner:
  worker_threads: 2
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRequiresDatabasePath(t *testing.T) {
	path := writeConfig(t, `
scanner:
  target_media_path: /media/takeout
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandPathVariables(t *testing.T) {
	home := userHomeDir()
	expanded := ExpandPathVariables("${USER_HOME}/photos")
	assert.Equal(t, home+"/photos", expanded)
}

func TestAutoDetectWorkersRespectsMinimum(t *testing.T) {
	assert.GreaterOrEqual(t, autoDetectCPUWorkers(1.0, 8), 8)
}

func TestIOWorkerCountRespectsConfiguredMinimum(t *testing.T) {
	s := ScannerConfig{MinIOWorkers: 64}
	assert.GreaterOrEqual(t, s.IOWorkerCount(), 64)
}

func TestIOWorkerCountDefaultsWhenUnset(t *testing.T) {
	s := ScannerConfig{}
	assert.GreaterOrEqual(t, s.IOWorkerCount(), 3)
}
