package cmd

import (
	"github.com/spf13/cobra"
)

// Flags below have zero defaults: they are bound to configuration keys and
// override them only when set. Defaults live in the config package.

func addAzureFlags(cmd *cobra.Command) {
	cmd.Flags().String("subscription", "", "Azure subscription (config: azure.subscription)")
	cmd.Flags().String("resource-group", "", "Resource group of the identity (config: azure.resourceGroup)")
	cmd.Flags().String("location", "", "Region for a newly created identity (config: azure.location)")
	cmd.Flags().String("identity", "", "Managed identity name (config: azure.identityName)")
}

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().String("repository", "", "Image repository without tag (config: image.repository)")
	cmd.Flags().StringSlice("platform", nil, "Target platforms (config: image.platforms)")
	cmd.Flags().String("build-context", "", "Build context directory (config: image.context)")
}

func addReleaseFlags(cmd *cobra.Command) {
	cmd.Flags().String("release", "", "Release name (config: release.name)")
	cmd.Flags().String("chart", "", "Chart path or reference (config: release.chart)")
	cmd.Flags().StringP("namespace", "n", "", "Target namespace (config: release.namespace)")
	cmd.Flags().StringP("values", "f", "", "Base values file (config: release.valuesFile)")
	cmd.Flags().String("env-file", "", "Environment file of KEY=VALUE lines (config: env.file)")
}

func addApplyFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "Release timeout (config: release.timeout)")
	cmd.Flags().Bool("wait", false, "Wait for workloads to become ready (config: release.wait)")
}

func addEndpointFlags(cmd *cobra.Command) {
	cmd.Flags().String("service", "", "Service to observe, defaults to the release name (config: endpoint.service)")
	cmd.Flags().Int("attempts", 0, "Maximum endpoint queries (config: endpoint.attempts)")
	cmd.Flags().Duration("interval", 0, "Delay between endpoint queries (config: endpoint.interval)")
}
