package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deep-research-mcp/deployer/internal/config"
	"github.com/deep-research-mcp/deployer/internal/identity"
	"github.com/deep-research-mcp/deployer/internal/image"
	"github.com/deep-research-mcp/deployer/internal/pipeline"
	"github.com/deep-research-mcp/deployer/internal/release"
	"github.com/deep-research-mcp/deployer/internal/tool/tooltest"
)

const workloadEnv = `PROJECT_ENDPOINT=https://example.services.ai.azure.com/api/projects/p
MODEL_DEPLOYMENT_NAME=gpt-4o
DEEP_RESEARCH_MODEL_DEPLOYMENT_NAME=o3-deep-research
BING_RESOURCE_NAME=bing-grounding
`

type fakeIdentity struct {
	clientID string
	err      error
	ensures  int
	finds    int
}

func (f *fakeIdentity) Ensure(context.Context, string, string, string) (*identity.Result, error) {
	f.ensures++
	if f.err != nil {
		return nil, f.err
	}
	return &identity.Result{Record: identity.Record{ClientID: f.clientID}}, nil
}

func (f *fakeIdentity) Find(context.Context, string, string) (*identity.Result, error) {
	f.finds++
	if f.err != nil {
		return nil, f.err
	}
	return &identity.Result{Record: identity.Record{ClientID: f.clientID}}, nil
}

type fakePublisher struct {
	err    error
	builds int
	pushes int
}

func (f *fakePublisher) BuildAndPush(context.Context, string, []string, string, string) (bool, error) {
	f.builds++
	return f.err == nil, f.err
}

func (f *fakePublisher) Push(context.Context, string, []string, string, string) (bool, error) {
	f.pushes++
	return f.err == nil, f.err
}

type fakeTags struct{}

func (fakeTags) Next(context.Context, string) (string, image.TagOrigin) {
	return "deadbee", image.OriginGit
}

type fakeDriver struct {
	calls int
	err   error
}

func (f *fakeDriver) Apply(_ context.Context, req release.Request) (*release.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &release.Result{Name: req.Name, Namespace: req.Namespace, Revision: 2, Status: "deployed"}, nil
}

// testDeps holds the fakes installed in place of the production collaborators.
type testDeps struct {
	identity  *fakeIdentity
	publisher *fakePublisher
	driver    *fakeDriver
	address   string
	queries   int
	live      []byte
	liveErr   error
	runner    *tooltest.Runner
	opts      []depsOptions
}

// installDeps replaces newDeps for the duration of the test.
func installDeps(t *testing.T) *testDeps {
	t.Helper()
	td := &testDeps{
		identity:  &fakeIdentity{clientID: "abc-123"},
		publisher: &fakePublisher{},
		driver:    &fakeDriver{},
		address:   "20.1.2.3",
		runner:    tooltest.NewRunner(),
	}

	prev := newDeps
	t.Cleanup(func() { newDeps = prev })
	newDeps = func(_ *config.Config, opts depsOptions) (*runtimeDeps, error) {
		td.opts = append(td.opts, opts)
		return &runtimeDeps{
			stages: pipeline.Stages{
				Identity:  td.identity,
				Publisher: td.publisher,
				Tags:      fakeTags{},
				Release:   td.driver,
				Address: func(context.Context, string, string) (string, error) {
					td.queries++
					return td.address, nil
				},
			},
			liveValues: func(context.Context, string, string) ([]byte, error) {
				return td.live, td.liveErr
			},
			runner: td.runner,
		}, nil
	}
	return td
}

// writeConfig creates a config file and environment file in a temp HOME and
// returns the config path.
func writeConfig(t *testing.T, env string, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DRMCP_CONFIG", "")

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(env), 0o600))

	lines := []string{
		"azure:",
		"  resourceGroup: rg-research",
		"image:",
		"  repository: myregistry.azurecr.io/deep-research-mcp",
		"release:",
		"  valuesFile: " + filepath.Join(dir, "values.yaml"),
		"env:",
		"  file: " + envFile,
		"endpoint:",
		"  attempts: 3",
		"  interval: 0s",
	}
	lines = append(lines, extra...)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		drmcpConfig, loadErr, loader = nil, nil, nil
	})

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
