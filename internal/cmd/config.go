package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	gyaml "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	"github.com/deep-research-mcp/deployer/internal/config"
	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for drmcp.`,
	}

	cmd.AddCommand(NewConfigInitCmd())
	cmd.AddCommand(NewConfigViewCmd())

	return cmd
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Write a commented default configuration to ~/.drmcp/config.yaml
(or the --config / DRMCP_CONFIG path).

Examples:
  drmcp config init
  drmcp config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, forceFlag)
		},
	}

	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	target, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}
	path := target.ConfigPath

	if _, err := os.Stat(path); err == nil && !force {
		return NewExitError(&oerrors.StageError{
			Stage:   oerrors.StageConfigure,
			Message: "configuration already exists",
			Context: map[string]string{"Path": path},
			Hint:    "Use --force to overwrite existing configuration.",
			Cause:   oerrors.ErrConfig,
		}, ExitConfigError)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if target.Source == config.SourceDefault {
		if _, err := config.EnsureHomeDir(); err != nil {
			return fmt.Errorf("creating drmcp home: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.FormatCheckmark("Configuration written to "+path))
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Next: set azure.resourceGroup and image.repository, then run 'drmcp config view'")
	return nil
}

// NewConfigViewCmd creates the config view command.
func NewConfigViewCmd() *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after applying defaults, the config file and
DRMCP_* environment variables.

Examples:
  drmcp config view
  drmcp config view -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigView(cmd, outputFlag)
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "yaml", "Output format: yaml, json")

	return cmd
}

func runConfigView(cmd *cobra.Command, format string) error {
	cfg, err := requireConfig()
	if err != nil {
		return NewExitError(err, ExitCodeFromError(err))
	}

	data, err := gyaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	switch format {
	case "yaml":
	case "json":
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		data = append(data, '\n')
	default:
		return NewExitError(oerrors.NewConfigError("output", fmt.Sprintf("unsupported output format %q", format)), ExitConfigError)
	}

	if verboseFlag && loader != nil {
		output.Debug("config source", "path", loader.ConfigFile().ConfigPath, "loaded", loader.FileLoaded())
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
