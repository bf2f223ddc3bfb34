package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deep-research-mcp/deployer/internal/config"
	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	var tagFlag string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare deployed release values with the next deploy",
		Long: `Materialize the release values as 'drmcp values' does and compare them
with the values of the deployed release. A release that is not installed
yet shows every value as added.

Without --tag the deployed image tag is reused, so the report shows
configuration changes only. Pass --tag to preview a new image.

Examples:
  drmcp diff
  drmcp diff --tag 3f9c2ab`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, tagFlag)
		},
	}

	addAzureFlags(cmd)
	addImageFlags(cmd)
	addReleaseFlags(cmd)

	cmd.Flags().StringVar(&tagFlag, "tag", "", "Revision tag to compare (default: the deployed tag, else the short git commit)")

	return cmd
}

func runDiff(cmd *cobra.Command, tag string) error {
	cfg, err := deployConfig()
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}
	deps, err := newDeps(cfg, depsOptions{})
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	releaseLog := output.ReleaseLogger(cfg.Release.Name)

	live, err := deps.liveValues(cmd.Context(), cfg.Release.Name, cfg.Release.Namespace)
	if err != nil {
		if !errors.Is(err, oerrors.ErrNotFound) {
			return NewExitError(err, ExitReleaseError)
		}
		releaseLog.Info("release not installed yet")
		live = nil
	}

	if tag == "" {
		if tag = deployedTag(live); tag != "" {
			releaseLog.Debug("comparing against the deployed tag", "tag", tag)
		}
	}

	res, err := materializeWith(cmd, cfg, deps, tag, false)
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	report, err := values.Diff(live, res.Values, output.IsTTY())
	if err != nil {
		return err
	}
	if report == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("No changes to "+releaseTarget(cfg)))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}

// deployedTag returns the image tag recorded in the live values, or "".
func deployedTag(live []byte) string {
	if len(live) == 0 {
		return ""
	}
	doc, err := values.Parse(live)
	if err != nil {
		output.Debug("unreadable deployed values", "error", err)
		return ""
	}
	return doc.Image.Tag
}

func releaseTarget(cfg *config.Config) string {
	return cfg.Release.Namespace + "/" + cfg.Release.Name
}
