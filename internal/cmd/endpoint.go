package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/pipeline"
)

// NewEndpointCmd creates the endpoint command.
func NewEndpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Wait for the load balancer address of a deployed release",
		Long: `Poll the release's Service until the load balancer assigns an external
address, then print the MCP URL. Exits 8 if the attempts run out.

Examples:
  drmcp endpoint
  drmcp endpoint --attempts 60 --interval 5s`,
		Args: cobra.NoArgs,
		RunE: runEndpoint,
	}

	cmd.Flags().String("release", "", "Release name (config: release.name)")
	cmd.Flags().StringP("namespace", "n", "", "Release namespace (config: release.namespace)")
	addEndpointFlags(cmd)

	return cmd
}

func runEndpoint(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	deps, err := newDeps(cfg, depsOptions{cluster: true})
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	opts := endpointOptions(cfg)
	res, err := pipeline.New(deps.stages).Endpoint(cmd.Context(), opts)
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	if !res.Endpoint.Observed() {
		fmt.Fprintln(cmd.ErrOrStderr(), output.FormatStageLine("endpoint", opts.Service, output.StatusExhausted))
		return NewExitError(res.EndpointErr, ExitEndpointTimeout)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), output.FormatStageLine("endpoint", res.Endpoint.Address, output.StatusObserved))
	fmt.Fprintln(cmd.OutOrStdout(), res.URL)
	return nil
}
