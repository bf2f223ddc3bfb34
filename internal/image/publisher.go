package image

import (
	"context"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/tool"
)

// Publisher builds and pushes the workload image.
type Publisher struct {
	builder    Builder
	dockerfile string
}

// NewPublisher creates a Publisher. dockerfile may be empty.
func NewPublisher(builder Builder, dockerfile string) *Publisher {
	return &Publisher{builder: builder, dockerfile: dockerfile}
}

// BuildAndPush builds one image for platforms and pushes it as
// repository:revisionTag and repository:latest. A build failure is a build
// error; a push failure after a successful build is a publish error, which the
// caller may retry with Push alone.
func (p *Publisher) BuildAndPush(ctx context.Context, contextPath string, platforms []string, repository, revisionTag string) (bool, error) {
	spec, err := p.spec(contextPath, platforms, repository, revisionTag)
	if err != nil {
		return false, err
	}

	log := output.StageLogger(string(oerrors.StageBuild))
	log.Info("building image", "ref", spec.Refs[0].String(), "platforms", spec.Platforms)

	err = output.RunWithSpinner(ctx, "Building "+spec.Refs[0].String(), func(ctx context.Context) error {
		return p.builder.Build(ctx, spec)
	})
	if err != nil {
		return false, oerrors.NewBuildError("building "+spec.Refs[0].String(), tool.OutputOf(err), err)
	}

	return p.push(ctx, spec)
}

// Push publishes an already built image without rebuilding from scratch.
func (p *Publisher) Push(ctx context.Context, contextPath string, platforms []string, repository, revisionTag string) (bool, error) {
	spec, err := p.spec(contextPath, platforms, repository, revisionTag)
	if err != nil {
		return false, err
	}
	return p.push(ctx, spec)
}

func (p *Publisher) push(ctx context.Context, spec Spec) (bool, error) {
	log := output.StageLogger(string(oerrors.StagePublish))
	log.Info("pushing image", "ref", spec.Refs[0].String(), "alias", spec.Refs[1].Tag)

	err := output.RunWithSpinner(ctx, "Pushing "+spec.Refs[0].String(), func(ctx context.Context) error {
		return p.builder.Push(ctx, spec)
	})
	if err != nil {
		return false, oerrors.NewPublishError("pushing "+spec.Refs[0].String(), tool.OutputOf(err), err)
	}
	return true, nil
}

func (p *Publisher) spec(contextPath string, platforms []string, repository, revisionTag string) (Spec, error) {
	if err := ValidateRepository(repository); err != nil {
		return Spec{}, err
	}
	if err := ValidateTag(repository, revisionTag); err != nil {
		return Spec{}, err
	}
	if revisionTag == AliasTag {
		return Spec{}, oerrors.NewConfigError("image.tag", "revision tag must differ from the "+AliasTag+" alias")
	}
	if contextPath == "" {
		contextPath = "."
	}
	if len(platforms) == 0 {
		platforms = DefaultPlatforms
	}

	ref := Reference{Repository: repository, Tag: revisionTag}
	return Spec{
		ContextPath: contextPath,
		Dockerfile:  p.dockerfile,
		Platforms:   platforms,
		Refs:        []Reference{ref, ref.Alias()},
	}, nil
}
