package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuniesmith/fks-main/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	loader := NewFileLoader("").WithSearchPaths([]string{filepath.Join(t.TempDir(), "absent.yaml")})

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultRegistryPaths, cfg.Registry.Paths)
	assert.Equal(t, domain.RuntimeDriverCLI, cfg.Runtime.Driver)
	assert.Equal(t, 30*time.Second, cfg.Preflight.CheckTimeout)
	assert.Equal(t, 5*time.Second, cfg.Preflight.ProbeTimeout)
	assert.Equal(t, 2*time.Second, cfg.Tests.SettleDelay)
	assert.Equal(t, 5*time.Second, cfg.Tests.DependencyTimeout)
	assert.Equal(t, "fks_monitor", cfg.Preflight.AggregatorService)
	assert.Equal(t, "fks_build_info", cfg.Preflight.BuildInfoMarker)
	assert.Equal(t, []string{"MONITOR_URL"}, cfg.Preflight.RequiredEnv)
	assert.Len(t, cfg.Preflight.RequiredContainers, 5)
	assert.Equal(t, 8000, cfg.Preflight.PortRemap[3001])
	require.Len(t, cfg.Preflight.SmokeSteps, 4)
	assert.True(t, cfg.Preflight.SmokeSteps[3].TolerateStatus)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
registry:
  paths: [custom/registry.yaml]
runtime:
  driver: api
  min_version: "24.0"
preflight:
  check_timeout: 10s
  required_containers: [fks_web_db]
tests:
  settle_delay: 0s
  timeout: 5m
dependencies:
  fks_web_redis:
    kind: redis
    address: localhost:6379
`)

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"custom/registry.yaml"}, cfg.Registry.Paths)
	assert.Equal(t, domain.RuntimeDriverAPI, cfg.Runtime.Driver)
	assert.Equal(t, "24.0", cfg.Runtime.MinVersion)
	assert.Equal(t, 10*time.Second, cfg.Preflight.CheckTimeout)
	assert.Equal(t, []string{"fks_web_db"}, cfg.Preflight.RequiredContainers)
	assert.Equal(t, time.Duration(0), cfg.Tests.SettleDelay)
	assert.Equal(t, 5*time.Minute, cfg.Tests.Timeout)
	assert.Equal(t, domain.DependencyEndpoint{Kind: "redis", Address: "localhost:6379"}, cfg.Dependencies["fks_web_redis"])
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("FKS_LOG_LEVEL", "error")
	t.Setenv("FKS_REGISTRY_PATH", "/srv/registry.json")
	t.Setenv("FKS_CHECK_TIMEOUT", "45s")
	t.Setenv("FKS_REQUIRED_ENV", "MONITOR_URL, API_TOKEN")

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, []string{"/srv/registry.json"}, cfg.Registry.Paths)
	assert.Equal(t, 45*time.Second, cfg.Preflight.CheckTimeout)
	assert.Equal(t, []string{"MONITOR_URL", "API_TOKEN"}, cfg.Preflight.RequiredEnv)
}

func TestLoad_InvalidDurationFromEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("FKS_TEST_SETTLE_DELAY", "soon")

	_, err := NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FKS_TEST_SETTLE_DELAY")
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	path := writeConfig(t, "runtime:\n  driver: api\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := NewFileLoader("").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RuntimeDriverAPI, cfg.Runtime.Driver)
}

func TestLoad_ValidationJoinsProblems(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
runtime:
  driver: podman
dependencies:
  cache:
    kind: memcached
`)

	_, err := NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "runtime.driver")
	assert.Contains(t, err.Error(), "dependencies.cache.kind")
	assert.Contains(t, err.Error(), "dependencies.cache.address")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "log: [unterminated\n")
	_, err := NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestDefaultConfig_EmbeddedMatchesBuiltin(t *testing.T) {
	assert.Equal(t, builtinConfig(), DefaultConfig())
}
