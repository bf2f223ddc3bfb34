package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/deep-research-mcp/deployer/internal/config"
	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/pipeline"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// NewValuesCmd creates the values command.
func NewValuesCmd() *cobra.Command {
	var (
		outputFlag         string
		tagFlag            string
		createIdentityFlag bool
	)

	cmd := &cobra.Command{
		Use:   "values",
		Short: "Print the release values the next deploy would apply",
		Long: `Resolve the identity, derive the revision tag and load the environment
file, then print the resulting release values. Nothing is built, pushed or
released. The identity is only read unless --create-identity is set.

Examples:
  drmcp values
  drmcp values -o json --tag 3f9c2ab`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(cmd, outputFlag, tagFlag, createIdentityFlag)
		},
	}

	addAzureFlags(cmd)
	addImageFlags(cmd)
	addReleaseFlags(cmd)

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "yaml", "Output format: yaml, json")
	cmd.Flags().StringVar(&tagFlag, "tag", "", "Revision tag (default: short git commit, else a timestamp)")
	cmd.Flags().BoolVar(&createIdentityFlag, "create-identity", false, "Create the identity if it does not exist")

	return cmd
}

func runValues(cmd *cobra.Command, format, tag string, createIdentity bool) error {
	if format != "yaml" && format != "json" {
		err := oerrors.NewConfigError("output", fmt.Sprintf("unsupported output format %q", format))
		return NewExitError(err, ExitConfigError)
	}

	res, err := materialize(cmd, tag, createIdentity)
	if res != nil && res.Identity != nil {
		if printErr := printValues(cmd.OutOrStdout(), res.Values, format); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}
	return nil
}

// deployConfig returns the loaded configuration once the settings every
// materializing command needs are present.
func deployConfig() (*config.Config, error) {
	cfg, err := requireConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDeploy(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// materialize runs Pipeline.Materialize with the resolved configuration.
func materialize(cmd *cobra.Command, tag string, createIdentity bool) (*pipeline.Result, error) {
	cfg, err := deployConfig()
	if err != nil {
		return nil, err
	}
	deps, err := newDeps(cfg, depsOptions{})
	if err != nil {
		return nil, err
	}
	return materializeWith(cmd, cfg, deps, tag, createIdentity)
}

func materializeWith(cmd *cobra.Command, cfg *config.Config, deps *runtimeDeps, tag string, createIdentity bool) (*pipeline.Result, error) {
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.Tag = tag
	opts.CreateIdentity = createIdentity

	return pipeline.New(deps.stages).Materialize(cmd.Context(), opts)
}

// printValues writes doc as YAML or indented JSON.
func printValues(w io.Writer, doc values.Document, format string) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	if format == "json" {
		raw, err := yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("converting values to json: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		data = buf.Bytes()
	}

	_, err = w.Write(data)
	return err
}
