package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/deep-research-mcp/deployer/internal/config"
	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/pipeline"
	"github.com/deep-research-mcp/deployer/internal/poll"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// pipelineOptions translates the resolved configuration into pipeline
// options, reading the base values and environment files.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	base, err := loadBaseValues(cfg)
	if err != nil {
		return pipeline.Options{}, err
	}

	envLines, err := values.ReadEnvFile(cfg.Env.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pipeline.Options{}, oerrors.NewConfigError("env.file", fmt.Sprintf("environment file %s does not exist", cfg.Env.File))
		}
		return pipeline.Options{}, oerrors.NewConfigError("env.file", err.Error())
	}

	return pipeline.Options{
		IdentityName:  cfg.Azure.IdentityName,
		ResourceGroup: cfg.Azure.ResourceGroup,
		Location:      cfg.Azure.Location,

		Repository:  cfg.Image.Repository,
		ContextPath: cfg.Image.Context,
		Platforms:   cfg.Image.Platforms,
		PullPolicy:  cfg.Image.PullPolicy,

		Values:      base,
		EnvLines:    envLines,
		RequiredEnv: cfg.Env.Required,

		ReleaseName: cfg.Release.Name,
		Chart:       cfg.Release.Chart,
		Namespace:   cfg.Release.Namespace,
		Timeout:     cfg.Release.Timeout,
		Wait:        cfg.Release.Wait,

		Service:  cfg.ServiceName(),
		Attempts: cfg.Endpoint.Attempts,
		Interval: cfg.Endpoint.Interval,
		URL:      urlSpec(cfg),
	}, nil
}

// endpointOptions is the subset Pipeline.Endpoint needs; no files are read.
func endpointOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		ReleaseName: cfg.Release.Name,
		Namespace:   cfg.Release.Namespace,
		Service:     cfg.ServiceName(),
		Attempts:    cfg.Endpoint.Attempts,
		Interval:    cfg.Endpoint.Interval,
		URL:         urlSpec(cfg),
	}
}

func urlSpec(cfg *config.Config) poll.URLSpec {
	return poll.URLSpec{
		Scheme: cfg.Endpoint.Scheme,
		Port:   cfg.Endpoint.Port,
		Path:   cfg.Endpoint.Path,
	}
}

// loadBaseValues reads the base release configuration. A missing file starts
// from an empty document.
func loadBaseValues(cfg *config.Config) (values.Document, error) {
	if cfg.Release.ValuesFile == "" {
		return values.New(cfg.Image.PullPolicy), nil
	}
	doc, err := values.Load(cfg.Release.ValuesFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			output.Debug("no base values file, starting empty", "path", cfg.Release.ValuesFile)
			return values.New(cfg.Image.PullPolicy), nil
		}
		return values.Document{}, oerrors.NewConfigError("release.valuesFile", err.Error())
	}
	return doc, nil
}
