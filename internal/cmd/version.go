package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deep-research-mcp/deployer/internal/config"
	"github.com/deep-research-mcp/deployer/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var shortFlag bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show drmcp version information.

Displays:
  - drmcp version, commit, and build date
  - versions of az, docker buildx, helm and git on PATH`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, shortFlag)
		},
	}

	cmd.Flags().BoolVar(&shortFlag, "short", false, "Print only the drmcp version")

	return cmd
}

func runVersion(cmd *cobra.Command, short bool) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	if short {
		fmt.Fprintln(out, info.Version)
		return nil
	}

	fmt.Fprintln(out, info.String())

	// Tool overrides come from config when it loaded; defaults otherwise.
	cfg := drmcpConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	deps, err := newDeps(cfg, depsOptions{})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nTools:")
	probes := version.DefaultProbes(cfg.Tools.Az, cfg.Tools.Docker, cfg.Tools.Helm, cfg.Tools.Git)
	for _, t := range version.DetectTools(cmd.Context(), deps.runner, probes) {
		fmt.Fprintln(out, t.String())
	}
	return nil
}
