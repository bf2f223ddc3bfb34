// Package pipeline sequences the deployment stages once per invocation:
// identity, materialization, image publish, completeness gate, release and
// endpoint observation. No stage is re-entered and any fatal stage error
// halts the run.
package pipeline

import (
	"context"
	"time"

	"k8s.io/utils/clock"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/identity"
	"github.com/deep-research-mcp/deployer/internal/image"
	"github.com/deep-research-mcp/deployer/internal/poll"
	"github.com/deep-research-mcp/deployer/internal/release"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// Pipeline runs the deployment workflow.
type Pipeline interface {
	// Deploy runs every stage. A fatal error halts the run and is returned
	// together with the partial Result of the stages that completed. An
	// exhausted endpoint poll is not fatal: it is reported on the Result.
	Deploy(ctx context.Context, opts Options) (*Result, error)

	// Materialize resolves the identity and builds the release configuration
	// without publishing, releasing or polling.
	Materialize(ctx context.Context, opts Options) (*Result, error)

	// Endpoint observes the external address of an existing release.
	Endpoint(ctx context.Context, opts Options) (*Result, error)
}

// IdentityProvisioner ensures the workload identity exists.
type IdentityProvisioner interface {
	Ensure(ctx context.Context, name, scope, location string) (*identity.Result, error)
	Find(ctx context.Context, name, scope string) (*identity.Result, error)
}

// ImagePublisher builds and pushes the workload image.
type ImagePublisher interface {
	BuildAndPush(ctx context.Context, contextPath string, platforms []string, repository, revisionTag string) (bool, error)
	Push(ctx context.Context, contextPath string, platforms []string, repository, revisionTag string) (bool, error)
}

// TagSource derives a revision tag for the build context.
type TagSource interface {
	Next(ctx context.Context, dir string) (string, image.TagOrigin)
}

// ReleaseDriver applies the chart with the release configuration.
type ReleaseDriver interface {
	Apply(ctx context.Context, req release.Request) (*release.Result, error)
}

// Stages are the collaborators the pipeline drives.
type Stages struct {
	Identity  IdentityProvisioner
	Publisher ImagePublisher
	Tags      TagSource
	Release   ReleaseDriver

	// Address reads the Service's external address.
	Address poll.QueryFunc

	// Clock drives endpoint polling. Nil means the real clock.
	Clock clock.Clock
}

// Options configure one pipeline run.
type Options struct {
	// Identity.
	IdentityName  string
	ResourceGroup string
	Location      string

	// CreateIdentity allows Materialize to create a missing identity.
	// Deploy always may.
	CreateIdentity bool

	// Image.
	Repository  string
	ContextPath string
	Platforms   []string
	PullPolicy  string

	// Tag is an explicit revision tag. Empty derives one from the context.
	Tag string

	// SkipBuild reuses an image already pushed under Tag.
	SkipBuild bool

	// PushOnly retries the publish step for Tag without a fresh build.
	PushOnly bool

	// Values is the base release configuration the runtime fields are
	// written into.
	Values values.Document

	// EnvLines are the KEY=VALUE lines of the environment file.
	EnvLines []string

	// RequiredEnv lists keys the completeness gate insists on.
	RequiredEnv []string

	// Release.
	ReleaseName string
	Chart       string
	Namespace   string
	Timeout     time.Duration
	Wait        bool

	// Endpoint.
	Service      string
	Attempts     int
	Interval     time.Duration
	URL          poll.URLSpec
	SkipEndpoint bool
}

// Validate checks option combinations before any stage runs.
func (o Options) Validate() error {
	if o.SkipBuild && o.Tag == "" {
		return oerrors.NewConfigError("image.tag", "--skip-build requires an explicit --tag")
	}
	if o.SkipBuild && o.PushOnly {
		return oerrors.NewConfigError("image.tag", "--skip-build and --push-only are mutually exclusive")
	}
	if o.PushOnly && o.Tag == "" {
		return oerrors.NewConfigError("image.tag", "--push-only requires an explicit --tag")
	}
	return nil
}

// Result is the outcome of a pipeline run. Deployment and endpoint outcomes
// are reported separately.
type Result struct {
	// RunID identifies the run and is recorded on the release revision.
	RunID string

	Identity *identity.Result

	Image     image.Reference
	TagOrigin image.TagOrigin

	// Published is true when this run pushed the image.
	Published bool

	// Values is the finalized release configuration.
	Values values.Document

	Release *release.Result

	Endpoint *poll.Endpoint

	// EndpointErr is the non-fatal timeout when the poll was exhausted.
	EndpointErr error

	// URL is the workload endpoint, set once the address is observed.
	URL string
}

// EndpointStatus returns the terminal poll state, or "" if no poll ran.
func (r *Result) EndpointStatus() poll.Status {
	if r == nil || r.Endpoint == nil {
		return ""
	}
	return r.Endpoint.Status
}
