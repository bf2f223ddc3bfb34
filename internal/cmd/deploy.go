package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/pipeline"
	"github.com/deep-research-mcp/deployer/internal/poll"
)

// NewDeployCmd creates the deploy command.
func NewDeployCmd() *cobra.Command {
	var (
		tagFlag             string
		skipBuildFlag       bool
		pushOnlyFlag        bool
		requireEndpointFlag bool
		skipEndpointFlag    bool
		dryRunFlag          bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision, build, release and wait for the endpoint",
		Long: `Run the full deployment pipeline once:

  1. Ensure the managed identity exists (created only when absent)
  2. Write the identity client id and image coordinates into the values
  3. Build the image for every platform and push <tag> and latest
  4. Load the environment file into the values
  5. Reject an incomplete configuration
  6. helm upgrade --install the chart
  7. Poll the Service for its load balancer address

Any failure in steps 1-6 stops the run. Running out of endpoint attempts
is reported but is not a failure unless --require-endpoint is set.

The endpoint URL is the only line written to stdout.

Examples:
  # Deploy with settings from ~/.drmcp/config.yaml
  drmcp deploy

  # Redeploy an image that is already pushed
  drmcp deploy --skip-build --tag 3f9c2ab

  # Retry only the push after a registry failure
  drmcp deploy --push-only --tag 3f9c2ab

  # Fail if no address appears within 60 attempts
  drmcp deploy --attempts 60 --require-endpoint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, deployFlags{
				tag:             tagFlag,
				skipBuild:       skipBuildFlag,
				pushOnly:        pushOnlyFlag,
				requireEndpoint: requireEndpointFlag,
				skipEndpoint:    skipEndpointFlag,
				dryRun:          dryRunFlag,
			})
		},
	}

	addAzureFlags(cmd)
	addImageFlags(cmd)
	addReleaseFlags(cmd)
	addApplyFlags(cmd)
	addEndpointFlags(cmd)

	cmd.Flags().StringVar(&tagFlag, "tag", "", "Revision tag (default: short git commit, else a timestamp)")
	cmd.Flags().BoolVar(&skipBuildFlag, "skip-build", false, "Do not build or push; release an existing --tag")
	cmd.Flags().BoolVar(&pushOnlyFlag, "push-only", false, "Push an already built --tag without rebuilding")
	cmd.Flags().BoolVar(&requireEndpointFlag, "require-endpoint", false,
		fmt.Sprintf("Exit %d when no endpoint address is observed", ExitEndpointTimeout))
	cmd.Flags().BoolVar(&skipEndpointFlag, "skip-endpoint", false, "Do not wait for the endpoint address")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the release values without building or releasing")

	return cmd
}

type deployFlags struct {
	tag             string
	skipBuild       bool
	pushOnly        bool
	requireEndpoint bool
	skipEndpoint    bool
	dryRun          bool
}

func runDeploy(cmd *cobra.Command, f deployFlags) error {
	ctx := cmd.Context()

	cfg, err := requireConfig()
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}
	if err := cfg.RequireDeploy(); err != nil {
		return NewExitError(err, ExitConfigError)
	}

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}
	opts.Tag = f.tag
	opts.SkipBuild = f.skipBuild
	opts.PushOnly = f.pushOnly
	opts.SkipEndpoint = f.skipEndpoint
	if err := opts.Validate(); err != nil {
		return NewExitError(err, ExitConfigError)
	}

	if f.dryRun {
		deps, err := newDeps(cfg, depsOptions{})
		if err != nil {
			return NewExitError(err, ExitCodeFromError(err))
		}
		res, err := pipeline.New(deps.stages).Materialize(ctx, opts)
		if res != nil && res.Identity != nil {
			if printErr := printValues(cmd.OutOrStdout(), res.Values, "yaml"); printErr != nil {
				return printErr
			}
		}
		if err != nil {
			return NewExitError(err, ExitCodeFromError(err))
		}
		return nil
	}

	deps, err := newDeps(cfg, depsOptions{cluster: !f.skipEndpoint})
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	res, err := pipeline.New(deps.stages).Deploy(ctx, opts)
	printSummary(cmd.ErrOrStderr(), res, opts)
	if err != nil {
		if stage := oerrors.StageOf(err); stage != "" && res != nil {
			output.Debug("deploy halted", "stage", stage, "run", res.RunID)
		}
		return NewExitError(err, ExitCodeFromError(err))
	}

	if res.EndpointErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), output.FormatWarning(fmt.Sprintf(
			"release %s is deployed but no external address was observed after %d attempts; run 'drmcp endpoint' later",
			res.Release.Name, res.Endpoint.Attempts)))
		if f.requireEndpoint {
			return &ExitError{Err: res.EndpointErr, Code: ExitEndpointTimeout, Printed: true}
		}
		return nil
	}

	if res.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.URL)
	}
	return nil
}

// printSummary writes one line per completed stage.
func printSummary(w io.Writer, res *pipeline.Result, opts pipeline.Options) {
	if res == nil {
		return
	}

	if res.Identity != nil {
		status := output.StatusReused
		if res.Identity.Created {
			status = output.StatusCreated
		}
		fmt.Fprintln(w, output.FormatStageLine("identity", opts.IdentityName, status))
	}

	if res.Identity != nil && (res.Published || opts.SkipBuild) {
		status := output.StatusPushed
		if !res.Published {
			status = output.StatusSkipped
		}
		fmt.Fprintln(w, output.FormatStageLine("image", res.Image.String(), status))
	}

	if res.Release != nil {
		status := output.StatusUpgraded
		if res.Release.Installed {
			status = output.StatusInstalled
		}
		subject := res.Release.Name
		if res.Release.Revision > 0 {
			subject += " rev " + strconv.Itoa(res.Release.Revision)
		}
		fmt.Fprintln(w, output.FormatStageLine("release", subject, status))
	}

	if res.Endpoint != nil {
		switch res.EndpointStatus() {
		case poll.StatusObserved:
			fmt.Fprintln(w, output.FormatStageLine("endpoint", res.Endpoint.Address, output.StatusObserved))
		case poll.StatusExhausted:
			fmt.Fprintln(w, output.FormatStageLine("endpoint", opts.Service, output.StatusExhausted))
		}
	}

	if res.URL != "" {
		fmt.Fprintln(w, output.FormatCheckmark("MCP server reachable at "+output.StyleNoun.Render(res.URL)))
	}
}
