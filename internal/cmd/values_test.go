package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

func TestValues_YAML(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	stdout, _, err := execute(t, "values", "--config", cfg, "--tag", "3f9c2ab")
	require.NoError(t, err)

	assert.Contains(t, stdout, "repository: myregistry.azurecr.io/deep-research-mcp")
	assert.Contains(t, stdout, "tag: 3f9c2ab")
	assert.Contains(t, stdout, "clientId: abc-123")
	assert.Contains(t, stdout, "BING_RESOURCE_NAME: bing-grounding")
	assert.Zero(t, td.identity.ensures)
	assert.Zero(t, td.publisher.builds)
	assert.Zero(t, td.driver.calls)
}

func TestValues_JSON(t *testing.T) {
	installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	stdout, _, err := execute(t, "values", "--config", cfg, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Image struct {
			Tag        string `json:"tag"`
			PullPolicy string `json:"pullPolicy"`
		} `json:"image"`
		WorkloadIdentity struct {
			ClientID string `json:"clientId"`
		} `json:"workloadIdentity"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "deadbee", got.Image.Tag)
	assert.Equal(t, "Always", got.Image.PullPolicy)
	assert.Equal(t, "abc-123", got.WorkloadIdentity.ClientID)
}

func TestValues_CreateIdentity(t *testing.T) {
	td := installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	_, _, err := execute(t, "values", "--config", cfg, "--create-identity")
	require.NoError(t, err)
	assert.Equal(t, 1, td.identity.ensures)
	assert.Zero(t, td.identity.finds)
}

func TestValues_MissingIdentity(t *testing.T) {
	td := installDeps(t)
	td.identity.err = oerrors.NewProvisioningError("identity id-deep-research-mcp does not exist", "", oerrors.ErrNotFound)
	cfg := writeConfig(t, workloadEnv)

	stdout, _, err := execute(t, "values", "--config", cfg)
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, ExitProvisioningError, ExitCodeFromError(err))
}

func TestValues_UnsupportedFormat(t *testing.T) {
	installDeps(t)
	cfg := writeConfig(t, workloadEnv)

	_, _, err := execute(t, "values", "--config", cfg, "-o", "toml")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCodeFromError(err))
}

func TestDiff(t *testing.T) {
	t.Run("no live release", func(t *testing.T) {
		td := installDeps(t)
		td.liveErr = oerrors.Wrap(oerrors.ErrNotFound, `release "deep-research-mcp"`)
		cfg := writeConfig(t, workloadEnv)

		stdout, _, err := execute(t, "diff", "--config", cfg, "--tag", "3f9c2ab")
		require.NoError(t, err)
		assert.Contains(t, stdout, "3f9c2ab")
	})

	t.Run("deployed tag is reused", func(t *testing.T) {
		td := installDeps(t)
		td.live = []byte("image:\n  tag: 3f9c2ab\n")
		cfg := writeConfig(t, workloadEnv)

		stdout, _, err := execute(t, "diff", "--config", cfg)
		require.NoError(t, err)
		assert.NotContains(t, stdout, "deadbee")
	})

	t.Run("helm failure", func(t *testing.T) {
		td := installDeps(t)
		td.liveErr = oerrors.NewReleaseError("helm get values failed", "", nil)
		cfg := writeConfig(t, workloadEnv)

		_, _, err := execute(t, "diff", "--config", cfg)
		require.Error(t, err)
		assert.Equal(t, ExitReleaseError, ExitCodeFromError(err))
	})
}

func TestEndpoint(t *testing.T) {
	t.Run("observed", func(t *testing.T) {
		installDeps(t)
		cfg := writeConfig(t, workloadEnv)

		stdout, _, err := execute(t, "endpoint", "--config", cfg)
		require.NoError(t, err)
		assert.Equal(t, "http://20.1.2.3:8001/mcp\n", stdout)
	})

	t.Run("exhausted", func(t *testing.T) {
		td := installDeps(t)
		td.address = ""
		cfg := writeConfig(t, workloadEnv)

		stdout, _, err := execute(t, "endpoint", "--config", cfg, "--attempts", "2")
		require.Error(t, err)
		assert.Empty(t, stdout)
		assert.Equal(t, ExitEndpointTimeout, ExitCodeFromError(err))
		assert.Equal(t, 2, td.queries)
	})
}

func TestDeployedTag(t *testing.T) {
	tests := []struct {
		name string
		live string
		want string
	}{
		{name: "not installed", live: "", want: ""},
		{name: "tagged", live: "image:\n  tag: 3f9c2ab\n", want: "3f9c2ab"},
		{name: "untagged", live: "replicaCount: 1\n", want: ""},
		{name: "unreadable", live: "image: [\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deployedTag([]byte(tt.live)))
		})
	}
}
