package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

const sampleConfig = `
azure:
  resourceGroup: rg-mcp
  location: westeurope
image:
  repository: acrdeepresearch.azurecr.io/deep-research
  platforms: [linux/amd64]
release:
  namespace: mcp
  timeout: 10m
endpoint:
  attempts: 12
  interval: 15s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolate points HOME at an empty directory and clears DRMCP_CONFIG.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DRMCP_CONFIG", "")
}

func resolvedSource(values []ResolvedValue, key string) ConfigSource {
	for _, v := range values {
		if v.Key == key {
			return v.Source
		}
	}
	return ""
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	l := NewLoader()
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.False(t, l.FileLoaded())
	assert.Equal(t, SourceDefault, l.ConfigFile().Source)

	assert.Equal(t, DefaultConfig().Endpoint, cfg.Endpoint)
	assert.Equal(t, "deep-research-mcp", cfg.Release.Name)
	assert.Equal(t, []string{"linux/amd64", "linux/arm64"}, cfg.Image.Platforms)
	assert.Nil(t, cfg.Log.Timestamps)
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	l := NewLoader()
	cfg, err := l.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.True(t, l.FileLoaded())

	assert.Equal(t, "rg-mcp", cfg.Azure.ResourceGroup)
	assert.Equal(t, "westeurope", cfg.Azure.Location)
	assert.Equal(t, "id-deep-research-mcp", cfg.Azure.IdentityName, "unset keys keep defaults")
	assert.Equal(t, []string{"linux/amd64"}, cfg.Image.Platforms)
	assert.Equal(t, 10*time.Minute, cfg.Release.Timeout)
	assert.Equal(t, 12, cfg.Endpoint.Attempts)
	assert.Equal(t, 15*time.Second, cfg.Endpoint.Interval)

	res := l.Resolved()
	assert.Equal(t, SourceConfig, resolvedSource(res, "endpoint.attempts"))
	assert.Equal(t, SourceDefault, resolvedSource(res, "endpoint.port"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv("DRMCP_IMAGE_REPOSITORY", "ghcr.io/acme/deep-research")
	t.Setenv("DRMCP_ENDPOINT_ATTEMPTS", "5")
	t.Setenv("DRMCP_KUBECONFIG", "/etc/aks/kubeconfig")

	l := NewLoader()
	cfg, err := l.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "ghcr.io/acme/deep-research", cfg.Image.Repository)
	assert.Equal(t, 5, cfg.Endpoint.Attempts)
	assert.Equal(t, "/etc/aks/kubeconfig", cfg.Kubernetes.Kubeconfig)

	res := l.Resolved()
	assert.Equal(t, SourceEnv, resolvedSource(res, "endpoint.attempts"))
	assert.Equal(t, SourceEnv, resolvedSource(res, "kubernetes.kubeconfig"))
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DRMCP_ENDPOINT_ATTEMPTS", "5")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("attempts", 30, "")
	fs.Duration("interval", 10*time.Second, "")

	l := NewLoader()
	require.NoError(t, l.BindFlag("endpoint.attempts", fs.Lookup("attempts")))
	require.NoError(t, l.BindFlag("endpoint.interval", fs.Lookup("interval")))
	require.NoError(t, fs.Parse([]string{"--attempts=3"}))

	cfg, err := l.Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Endpoint.Attempts)
	assert.Equal(t, 15*time.Second, cfg.Endpoint.Interval, "unset flag does not shadow the file")

	assert.Equal(t, SourceFlag, resolvedSource(l.Resolved(), "endpoint.attempts"))
}

func TestLoad_BindUndefinedFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	assert.Error(t, NewLoader().BindFlag("endpoint.attempts", fs.Lookup("attempts")))
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)

	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrConfig)
}

func TestLoad_InvalidValue(t *testing.T) {
	isolate(t)

	_, err := NewLoader().Load(writeConfig(t, "endpoint:\n  scheme: gopher\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrConfig)
	assert.Contains(t, err.Error(), "endpoint.scheme")
}

func TestLoad_DefaultTemplate(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load(writeConfig(t, DefaultConfigTemplate))
	require.NoError(t, err)

	assert.Empty(t, cfg.Env.Required)
	require.NotNil(t, cfg.Log.Timestamps)
	assert.True(t, *cfg.Log.Timestamps)
	assert.Equal(t, 5*time.Minute, cfg.Release.Timeout)
}

func TestLoad_ExpandsPaths(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")

	cfg, err := NewLoader().Load(writeConfig(t, "env:\n  file: ~/secrets/.env\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "secrets", ".env"), cfg.Env.File)
}
