package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deep-research-mcp/deployer/internal/config"
	"github.com/deep-research-mcp/deployer/internal/output"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool

	// Loaded during PersistentPreRunE. loadErr is reported only by commands
	// that need the configuration.
	drmcpConfig *config.Config
	loadErr     error
	loader      *config.Loader
)

// flagBindings maps flag names to the configuration keys they override.
// Any command defining one of these flags gets flag > env > file > default.
var flagBindings = map[string]string{
	"kubeconfig":     "kubernetes.kubeconfig",
	"context":        "kubernetes.context",
	"subscription":   "azure.subscription",
	"resource-group": "azure.resourceGroup",
	"location":       "azure.location",
	"identity":       "azure.identityName",
	"repository":     "image.repository",
	"platform":       "image.platforms",
	"build-context":  "image.context",
	"release":        "release.name",
	"chart":          "release.chart",
	"namespace":      "release.namespace",
	"values":         "release.valuesFile",
	"timeout":        "release.timeout",
	"wait":           "release.wait",
	"env-file":       "env.file",
	"service":        "endpoint.service",
	"attempts":       "endpoint.attempts",
	"interval":       "endpoint.interval",
}

// NewRootCmd creates the root command for the drmcp CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drmcp",
		Short: "Deploy the deep-research MCP server",
		Long: `drmcp provisions the workload identity, builds and publishes the image,
releases the chart and waits for the load balancer address of the
deep-research MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: DRMCP_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")
	rootCmd.PersistentFlags().String("kubeconfig", "", "Path to kubeconfig file (env: DRMCP_KUBECONFIG)")
	rootCmd.PersistentFlags().String("context", "", "Kubernetes context to use (env: DRMCP_CONTEXT)")

	rootCmd.AddCommand(NewDeployCmd())
	rootCmd.AddCommand(NewValuesCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewEndpointCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(cmd *cobra.Command) error {
	loader = config.NewLoader()
	for name, key := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := loader.BindFlag(key, f); err != nil {
				return err
			}
		}
	}

	drmcpConfig, loadErr = loader.Load(configFlag)

	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if drmcpConfig != nil && drmcpConfig.Log.Timestamps != nil {
		logCfg.Timestamps = drmcpConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if loadErr != nil {
		output.Debug("config load error", "error", loadErr)
		return nil
	}

	if verboseFlag {
		output.Debug("initializing CLI", "config", loader.ConfigFile().ConfigPath, "source", loader.ConfigFile().Source, "loaded", loader.FileLoaded())
		config.LogResolvedValues(loader.Resolved())
	}
	return nil
}

// requireConfig returns the loaded configuration or the load error.
func requireConfig() (*config.Config, error) {
	if loadErr != nil {
		return nil, loadErr
	}
	if drmcpConfig == nil {
		return config.DefaultConfig(), nil
	}
	return drmcpConfig, nil
}
