package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/identity"
	"github.com/deep-research-mcp/deployer/internal/image"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/poll"
	"github.com/deep-research-mcp/deployer/internal/release"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// pipeline implements the Pipeline interface.
type pipeline struct {
	stages Stages
	newID  func() string
}

// New creates a Pipeline driving stages.
func New(stages Stages) Pipeline {
	return &pipeline{stages: stages, newID: uuid.NewString}
}

// Deploy executes the stages in order:
//
//  1. IDENTITY:    ensure the workload identity, creating it when absent
//  2. MATERIALIZE: write identity and image coordinates into the values
//  3. PUBLISH:     build and push the revision tag and latest
//  4. ENVIRONMENT: ingest the environment file into the values
//  5. GATE:        reject an incomplete configuration
//  6. RELEASE:     helm upgrade --install
//  7. ENDPOINT:    poll for the load balancer address
func (p *pipeline) Deploy(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res := &Result{RunID: p.newID()}
	output.Info("deploying", "release", opts.ReleaseName, "namespace", opts.Namespace, "run", res.RunID)

	// Phase 1-2: IDENTITY + MATERIALIZE
	doc, err := p.materialize(ctx, opts, res, true)
	if err != nil {
		return res, err
	}

	// Phase 3: PUBLISH
	if err := p.publish(ctx, opts, res); err != nil {
		return res, err
	}

	// Phase 4-5: ENVIRONMENT + GATE
	doc = values.IngestEnvironment(doc, opts.EnvLines)
	res.Values = doc
	output.Debug("environment ingested", "keys", doc.EnvKeys())
	if err := values.Validate(doc, opts.RequiredEnv); err != nil {
		return res, err
	}

	// Phase 6: RELEASE
	var rel *release.Result
	err = output.RunWithSpinner(ctx, "Releasing "+opts.ReleaseName, func(ctx context.Context) error {
		var applyErr error
		rel, applyErr = p.stages.Release.Apply(ctx, release.Request{
			Name:        opts.ReleaseName,
			Chart:       opts.Chart,
			Namespace:   opts.Namespace,
			Values:      doc,
			Timeout:     opts.Timeout,
			Wait:        opts.Wait,
			Description: "drmcp run " + res.RunID,
		})
		return applyErr
	})
	if err != nil {
		return res, err
	}
	res.Release = rel

	// Phase 7: ENDPOINT
	if opts.SkipEndpoint {
		return res, nil
	}
	if err := p.observe(ctx, opts, res); err != nil {
		return res, err
	}
	return res, nil
}

// Materialize resolves the identity and returns the release configuration
// the next deploy would apply, environment included and gate applied.
func (p *pipeline) Materialize(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{RunID: p.newID()}

	doc, err := p.materialize(ctx, opts, res, opts.CreateIdentity)
	if err != nil {
		return res, err
	}

	doc = values.IngestEnvironment(doc, opts.EnvLines)
	res.Values = doc
	if err := values.Validate(doc, opts.RequiredEnv); err != nil {
		return res, err
	}
	return res, nil
}

// Endpoint runs only the endpoint stage.
func (p *pipeline) Endpoint(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{RunID: p.newID()}
	if err := p.observe(ctx, opts, res); err != nil {
		return res, err
	}
	return res, nil
}

func (p *pipeline) materialize(ctx context.Context, opts Options, res *Result, create bool) (values.Document, error) {
	tag, origin := opts.Tag, image.OriginExplicit
	if tag == "" {
		tag, origin = p.stages.Tags.Next(ctx, opts.ContextPath)
	}
	res.Image = image.Reference{Repository: opts.Repository, Tag: tag}
	res.TagOrigin = origin
	output.Debug("revision tag", "tag", tag, "origin", origin)

	var (
		id  *identity.Result
		err error
	)
	if create {
		id, err = p.stages.Identity.Ensure(ctx, opts.IdentityName, opts.ResourceGroup, opts.Location)
	} else {
		id, err = p.stages.Identity.Find(ctx, opts.IdentityName, opts.ResourceGroup)
	}
	if err != nil {
		return values.Document{}, err
	}
	res.Identity = id

	doc := values.WriteIdentity(opts.Values, id.Record.ClientID)
	doc = values.WriteImageFields(doc, opts.Repository, tag)
	if opts.PullPolicy != "" || doc.Image.PullPolicy == "" {
		doc = values.WritePullPolicy(doc, opts.PullPolicy)
	}
	res.Values = doc
	return doc, nil
}

func (p *pipeline) publish(ctx context.Context, opts Options, res *Result) error {
	if opts.SkipBuild {
		output.StageLogger(string(oerrors.StageBuild)).Info("skipping build", "ref", res.Image.String())
		return nil
	}

	publish := p.stages.Publisher.BuildAndPush
	if opts.PushOnly {
		publish = p.stages.Publisher.Push
	}
	pushed, err := publish(ctx, opts.ContextPath, opts.Platforms, opts.Repository, res.Image.Tag)
	if err != nil {
		return err
	}
	res.Published = pushed
	return nil
}

func (p *pipeline) observe(ctx context.Context, opts Options, res *Result) error {
	if p.stages.Address == nil {
		return errors.New("observing endpoint: no cluster query configured")
	}
	service := opts.Service
	if service == "" {
		service = opts.ReleaseName
	}

	ep, err := poll.WaitForEndpoint(ctx, p.stages.Address, service, opts.Namespace, poll.Retry{
		Attempts: opts.Attempts,
		Interval: opts.Interval,
		Clock:    p.stages.Clock,
	})
	res.Endpoint = ep

	switch {
	case err == nil:
		res.URL = ep.URL(opts.URL)
		return nil
	case !oerrors.IsFatal(err):
		res.EndpointErr = err
		output.StageLogger(string(oerrors.StageEndpoint)).Warn("no external address yet", "service", service, "attempts", ep.Attempts)
		return nil
	default:
		return fmt.Errorf("observing endpoint: %w", err)
	}
}
