package image

import (
	"context"
	"strings"

	"github.com/deep-research-mcp/deployer/internal/tool"
)

// Spec describes one image build.
type Spec struct {
	// ContextPath is the build context directory.
	ContextPath string

	// Dockerfile is an optional Dockerfile path. Empty uses the context default.
	Dockerfile string

	// Platforms is the target platform set (e.g. linux/amd64).
	Platforms []string

	// Refs are the destination references, revision tag first.
	Refs []Reference
}

// Builder is the container build/push tool.
type Builder interface {
	// Build compiles the image for every platform without publishing it.
	Build(ctx context.Context, spec Spec) error

	// Push publishes the image to every ref. It reuses the build cache, so a
	// Push after a successful Build does not recompile.
	Push(ctx context.Context, spec Spec) error
}

// Buildx implements Builder with `docker buildx build`.
type Buildx struct {
	// Runner executes docker. Required.
	Runner tool.Runner

	// Binary is the docker binary name or path. Empty means "docker".
	Binary string

	// BuilderName selects a buildx builder instance. Empty uses the current one.
	BuilderName string
}

// Build runs buildx without an output, leaving the result in the build cache.
func (b *Buildx) Build(ctx context.Context, spec Spec) error {
	_, err := b.Runner.Run(ctx, b.command(spec, false))
	return err
}

// Push runs buildx with --push.
func (b *Buildx) Push(ctx context.Context, spec Spec) error {
	_, err := b.Runner.Run(ctx, b.command(spec, true))
	return err
}

func (b *Buildx) command(spec Spec, push bool) tool.Command {
	args := []string{"buildx", "build"}
	if b.BuilderName != "" {
		args = append(args, "--builder", b.BuilderName)
	}
	if len(spec.Platforms) > 0 {
		args = append(args, "--platform", strings.Join(spec.Platforms, ","))
	}
	if spec.Dockerfile != "" {
		args = append(args, "--file", spec.Dockerfile)
	}
	for _, ref := range spec.Refs {
		args = append(args, "--tag", ref.String())
	}
	if push {
		args = append(args, "--push")
	}
	args = append(args, spec.ContextPath)

	bin := b.Binary
	if bin == "" {
		bin = "docker"
	}
	return tool.Command{Name: bin, Args: args}
}
