package cmd

import (
	"context"
	"os"

	"github.com/deep-research-mcp/deployer/internal/config"
	"github.com/deep-research-mcp/deployer/internal/identity"
	"github.com/deep-research-mcp/deployer/internal/image"
	"github.com/deep-research-mcp/deployer/internal/kubernetes"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/pipeline"
	"github.com/deep-research-mcp/deployer/internal/release"
	"github.com/deep-research-mcp/deployer/internal/tool"
)

// runtimeDeps are the external collaborators a command drives.
type runtimeDeps struct {
	stages pipeline.Stages

	// liveValues reads the deployed release's values.
	liveValues func(ctx context.Context, name, namespace string) ([]byte, error)

	// runner executes external tools directly (version probes).
	runner tool.Runner
}

// depsOptions select which collaborators need a live cluster.
type depsOptions struct {
	// cluster requests a Kubernetes client and a connectivity check.
	cluster bool
}

// newDeps builds the production collaborators. Tests replace it.
var newDeps = defaultDeps

func defaultDeps(cfg *config.Config, opts depsOptions) (*runtimeDeps, error) {
	runner := tool.NewExecRunner()
	if verboseFlag {
		runner.Stream = os.Stderr
	}

	helm := &release.Helm{
		Runner:      runner,
		Binary:      cfg.Tools.Helm,
		Kubeconfig:  kubernetes.ResolveKubeconfig(cfg.Kubernetes.Kubeconfig),
		KubeContext: cfg.Kubernetes.Context,
	}

	tags := image.NewTagSource(runner, nil)
	tags.GitBinary = cfg.Tools.Git

	deps := &runtimeDeps{
		stages: pipeline.Stages{
			Identity: identity.NewProvisioner(&identity.AzureCLI{
				Runner:       runner,
				Subscription: cfg.Azure.Subscription,
				Binary:       cfg.Tools.Az,
			}),
			Publisher: image.NewPublisher(&image.Buildx{
				Runner:      runner,
				Binary:      cfg.Tools.Docker,
				BuilderName: cfg.Image.Builder,
			}, cfg.Image.Dockerfile),
			Tags:    tags,
			Release: helm,
		},
		liveValues: helm.GetValues,
		runner:     runner,
	}

	if !opts.cluster {
		return deps, nil
	}

	client, err := kubernetes.NewClient(kubernetes.ClientOptions{
		Kubeconfig:  cfg.Kubernetes.Kubeconfig,
		Context:     cfg.Kubernetes.Context,
		APIWarnings: cfg.Kubernetes.APIWarnings,
	})
	if err != nil {
		return nil, err
	}
	if err := client.CheckConnectivity(); err != nil {
		return nil, err
	}
	deps.stages.Address = func(ctx context.Context, name, namespace string) (string, error) {
		addr, err := client.ServiceAddress(ctx, name, namespace)
		if kubernetes.IsServiceNotFound(err) {
			output.Debug("service not created yet", "service", name, "namespace", namespace)
			return "", nil
		}
		return addr, err
	}
	return deps, nil
}
