package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshift/imagemgmt/internal/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.EngineSync, cfg.Workflow.Engine)
	assert.Equal(t, 30*time.Second, cfg.Workflow.Timeout)
}

func TestParse(t *testing.T) {
	t.Setenv("IMAGEMGMT_DB", "/var/lib/imagemgmt/store.db")

	cfg, err := config.Parse([]byte(`
database:
  path: ${IMAGEMGMT_DB}
log:
  level: debug
  format: json
workflow:
  engine: goworkflows
  timeout: 1m
dispatch:
  deterministic_rampup: true
  prefetch_proxy_users:
    spark: [etl, svc]
    hive: [warehouse]
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/imagemgmt/store.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, config.EngineGoWorkflows, cfg.Workflow.Engine)
	assert.Equal(t, time.Minute, cfg.Workflow.Timeout)
	assert.Equal(t, "imagemgmt", cfg.Workflow.AppName, "unset fields keep defaults")
	assert.True(t, cfg.Dispatch.DeterministicRampup)
	assert.Equal(t, 8, cfg.Dispatch.Concurrency)
	assert.Equal(t, "hive,warehouse;spark,etl;spark,svc", cfg.Dispatch.PrefetchMapping())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown engine", "workflow:\n  engine: temporal\n"},
		{"dbos without url", "workflow:\n  engine: dbos\n"},
		{"bad log level", "log:\n  level: trace\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"empty database path", "database:\n  path: \"\"\n"},
		{"negative timeout", "workflow:\n  timeout: -1s\n"},
		{"bad prefetch user", "dispatch:\n  prefetch_proxy_users:\n    spark: [\"a,b\"]\n"},
		{"malformed yaml", "database: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagemgmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workflow:\n  engine: dbos\n  database_url: postgres://localhost/dbos\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.EngineDBOS, cfg.Workflow.Engine)
	assert.Equal(t, "postgres://localhost/dbos", cfg.Workflow.DatabaseURL)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPrefetchMappingEmpty(t *testing.T) {
	assert.Empty(t, config.DispatchConfig{}.PrefetchMapping())
}
