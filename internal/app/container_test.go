package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/infrastructure/runtime"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBuildContainer_AppliesFlagOverrides(t *testing.T) {
	var out, errb bytes.Buffer
	c, err := BuildContainer(context.Background(), Options{
		ConfigPath:      writeConfig(t, "log:\n  level: info\n"),
		RegistryPath:    "/srv/fks/registry.json",
		MetricsTextfile: filepath.Join(t.TempDir(), "fks.prom"),
		Out:             &out,
		Err:             &errb,
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close(context.Background())) }()

	assert.Equal(t, []string{"/srv/fks/registry.json"}, c.Config.Registry.Paths)
	assert.Equal(t, "info", c.Config.Log.Level)
	assert.NotEmpty(t, c.Config.Metrics.Textfile)
	_, err = uuid.Parse(c.RunID)
	assert.NoError(t, err)

	require.NotNil(t, c.PreflightService)
	require.NotNil(t, c.TestService)
	assert.Same(t, c.Gate, c.TestService.Gate)
	assert.NotNil(t, c.PreflightService.Recorder)
	assert.IsType(t, &runtime.CLIRuntime{}, c.PreflightService.Containers)
}

func TestBuildContainer_APIDriver(t *testing.T) {
	t.Setenv("DOCKER_HOST", "tcp://127.0.0.1:1")
	c, err := BuildContainer(context.Background(), Options{
		ConfigPath: writeConfig(t, "runtime:\n  driver: api\n"),
		Out:        &bytes.Buffer{},
		Err:        &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.IsType(t, &runtime.APIRuntime{}, c.PreflightService.Containers)
	assert.NoError(t, c.Close(context.Background()))
}

func TestBuildContainer_InvalidConfig(t *testing.T) {
	_, err := BuildContainer(context.Background(), Options{
		ConfigPath: writeConfig(t, "runtime:\n  driver: podman\n"),
		Out:        &bytes.Buffer{},
		Err:        &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestBuildContainer_RunIDOnLogLines(t *testing.T) {
	var errb bytes.Buffer
	c, err := BuildContainer(context.Background(), Options{
		ConfigPath: writeConfig(t, "log:\n  level: warn\n"),
		Verbose:    true,
		Out:        &bytes.Buffer{},
		Err:        &errb,
	})
	require.NoError(t, err)
	defer c.Close(context.Background())

	assert.Contains(t, errb.String(), "container ready")
	assert.Contains(t, errb.String(), "run_id="+c.RunID)
}
