package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

func TestDeploy_PrintsURLOnly(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	stdout, stderr, err := execute(t, "deploy", "--config", cfg)
	require.NoError(t, err)

	assert.Equal(t, "http://20.1.2.3:8001/mcp\n", stdout)
	assert.Contains(t, stderr, "deep-research-mcp rev 2")
	assert.Equal(t, 1, td.identity.ensures)
	assert.Equal(t, 1, td.publisher.builds)
	assert.Equal(t, 1, td.driver.calls)
	require.Len(t, td.opts, 1)
	assert.True(t, td.opts[0].cluster)
}

func TestDeploy_TwoKeyEnvironment(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, "PROJECT_ENDPOINT=https://example.services.ai.azure.com/api/projects/p\nMODEL_DEPLOYMENT_NAME=gpt-4o\n")

	stdout, stderr, err := execute(t, "deploy", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, ExitCodeFromError(err))
	assert.Contains(t, stderr, "myregistry.azurecr.io/deep-research-mcp:deadbee")

	assert.Equal(t, "http://20.1.2.3:8001/mcp\n", stdout)
	assert.Equal(t, 1, td.queries, "address is observed on the first attempt")
	assert.Equal(t, 1, td.publisher.builds)
	assert.Equal(t, 1, td.driver.calls)
}

func TestDeploy_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		args     []string
		setup    func(*testDeps)
		wantCode int
		released bool
	}{
		{
			name:     "environment without settings",
			env:      "# PROJECT_ENDPOINT is not set yet\n\n",
			wantCode: ExitConfigError,
		},
		{
			name:     "identity failure",
			env:      workloadEnv,
			setup:    func(td *testDeps) { td.identity.err = oerrors.NewProvisioningError("az failed", "", nil) },
			wantCode: ExitProvisioningError,
		},
		{
			name:     "build failure",
			env:      workloadEnv,
			setup:    func(td *testDeps) { td.publisher.err = oerrors.NewBuildError("buildx failed", "", nil) },
			wantCode: ExitBuildError,
		},
		{
			name:     "publish failure",
			env:      workloadEnv,
			setup:    func(td *testDeps) { td.publisher.err = oerrors.NewPublishError("push denied", "", nil) },
			wantCode: ExitPublishError,
		},
		{
			name:     "release failure",
			env:      workloadEnv,
			setup:    func(td *testDeps) { td.driver.err = oerrors.NewReleaseError("helm failed", "", nil) },
			wantCode: ExitReleaseError,
			released: true,
		},
		{
			name:     "skip-build without tag",
			env:      workloadEnv,
			args:     []string{"--skip-build"},
			wantCode: ExitConfigError,
		},
		{
			name:     "endpoint required but never observed",
			env:      workloadEnv,
			args:     []string{"--require-endpoint"},
			setup:    func(td *testDeps) { td.address = "" },
			wantCode: ExitEndpointTimeout,
			released: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := installDeps(t)
			if tt.setup != nil {
				tt.setup(td)
			}
			cfg := writeConfig(t, tt.env)

			args := append([]string{"deploy", "--config", cfg}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.Error(t, err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.wantCode, exitErr.Code)
			assert.Empty(t, stdout)
			if tt.released {
				assert.Equal(t, 1, td.driver.calls)
			} else {
				assert.Zero(t, td.driver.calls)
			}
		})
	}
}

func TestDeploy_EndpointTimeoutIsNotFatal(t *testing.T) {
	td := installDeps(t)
	td.address = ""
	cfg := writeConfig(t, workloadEnv)

	stdout, stderr, err := execute(t, "deploy", "--config", cfg)
	require.NoError(t, err)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no external address was observed after 3 attempts")
	assert.Equal(t, 3, td.queries)
}

func TestDeploy_SkipEndpointNeedsNoCluster(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	stdout, _, err := execute(t, "deploy", "--config", cfg, "--skip-endpoint")
	require.NoError(t, err)

	assert.Empty(t, stdout)
	assert.Zero(t, td.queries)
	require.Len(t, td.opts, 1)
	assert.False(t, td.opts[0].cluster)
}

func TestDeploy_SkipBuild(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	_, stderr, err := execute(t, "deploy", "--config", cfg, "--skip-build", "--tag", "3f9c2ab")
	require.NoError(t, err)

	assert.Zero(t, td.publisher.builds)
	assert.Zero(t, td.publisher.pushes)
	assert.Contains(t, stderr, "myregistry.azurecr.io/deep-research-mcp:3f9c2ab")
}

func TestDeploy_DryRun(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	stdout, _, err := execute(t, "deploy", "--config", cfg, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "clientId: abc-123")
	assert.Contains(t, stdout, "tag: deadbee")
	assert.Zero(t, td.publisher.builds)
	assert.Zero(t, td.driver.calls)
	assert.Equal(t, 1, td.identity.finds)
	assert.Zero(t, td.identity.ensures)
}

func TestDeploy_MissingRepository(t *testing.T) {
	installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	_, _, err := execute(t, "deploy", "--config", cfg, "--repository", "")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCodeFromError(err))
}
