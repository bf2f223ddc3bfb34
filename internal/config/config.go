// Package config provides configuration loading and management.
package config

import (
	"time"

	"github.com/deep-research-mcp/deployer/internal/image"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// AzureConfig locates the workload identity.
type AzureConfig struct {
	// Subscription is passed to az when set. Env: DRMCP_AZURE_SUBSCRIPTION
	Subscription string `mapstructure:"subscription" yaml:"subscription,omitempty"`

	// ResourceGroup scopes the identity. Env: DRMCP_AZURE_RESOURCEGROUP
	ResourceGroup string `mapstructure:"resourceGroup" yaml:"resourceGroup,omitempty"`

	// Location is the region an absent identity is created in.
	Location string `mapstructure:"location" yaml:"location,omitempty"`

	// IdentityName is the managed identity's unique name.
	IdentityName string `mapstructure:"identityName" yaml:"identityName,omitempty"`
}

// ImageConfig describes the workload image.
type ImageConfig struct {
	// Repository is the registry repository, without tag.
	Repository string `mapstructure:"repository" yaml:"repository,omitempty"`

	// Context is the build context directory. Default: "."
	Context string `mapstructure:"context" yaml:"context,omitempty"`

	// Dockerfile overrides the context's Dockerfile.
	Dockerfile string `mapstructure:"dockerfile" yaml:"dockerfile,omitempty"`

	// Platforms lists the target architectures.
	Platforms []string `mapstructure:"platforms" yaml:"platforms,omitempty"`

	// PullPolicy is written into the release configuration.
	PullPolicy string `mapstructure:"pullPolicy" yaml:"pullPolicy,omitempty"`

	// Builder selects a buildx builder instance.
	Builder string `mapstructure:"builder" yaml:"builder,omitempty"`
}

// ReleaseConfig describes the chart release.
type ReleaseConfig struct {
	Name      string `mapstructure:"name" yaml:"name,omitempty"`
	Chart     string `mapstructure:"chart" yaml:"chart,omitempty"`
	Namespace string `mapstructure:"namespace" yaml:"namespace,omitempty"`

	// ValuesFile is the base release configuration the runtime fields are
	// written into. Missing means start from an empty document.
	ValuesFile string `mapstructure:"valuesFile" yaml:"valuesFile,omitempty"`

	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Wait    bool          `mapstructure:"wait" yaml:"wait,omitempty"`
}

// EnvConfig describes the workload environment file.
type EnvConfig struct {
	File string `mapstructure:"file" yaml:"file,omitempty"`

	// Required keys must be present and non-empty before release.
	Required []string `mapstructure:"required" yaml:"required,omitempty"`
}

// EndpointConfig bounds the load balancer poll and shapes the printed URL.
type EndpointConfig struct {
	// Service defaults to the release name.
	Service  string        `mapstructure:"service" yaml:"service,omitempty"`
	Attempts int           `mapstructure:"attempts" yaml:"attempts,omitempty"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval,omitempty"`
	Port     int           `mapstructure:"port" yaml:"port,omitempty"`
	Path     string        `mapstructure:"path" yaml:"path,omitempty"`
	Scheme   string        `mapstructure:"scheme" yaml:"scheme,omitempty"`
}

// KubernetesConfig contains Kubernetes-specific settings.
type KubernetesConfig struct {
	// Kubeconfig is the path to the kubeconfig file.
	// Env: DRMCP_KUBECONFIG. Empty falls through to KUBECONFIG, then ~/.kube/config.
	Kubeconfig string `mapstructure:"kubeconfig" yaml:"kubeconfig,omitempty"`

	// Context is the Kubernetes context to use.
	// Env: DRMCP_CONTEXT, Default: current-context from kubeconfig
	Context string `mapstructure:"context" yaml:"context,omitempty"`

	// APIWarnings controls API server warning output: warn, debug, suppress.
	APIWarnings string `mapstructure:"apiWarnings" yaml:"apiWarnings,omitempty"`
}

// ToolsConfig overrides the external binaries drmcp shells out to.
type ToolsConfig struct {
	Az     string `mapstructure:"az" yaml:"az,omitempty"`
	Docker string `mapstructure:"docker" yaml:"docker,omitempty"`
	Helm   string `mapstructure:"helm" yaml:"helm,omitempty"`
	Git    string `mapstructure:"git" yaml:"git,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the drmcp configuration.
// Loaded from ~/.drmcp/config.yaml, overridden by DRMCP_* env and flags.
type Config struct {
	Azure      AzureConfig      `mapstructure:"azure" yaml:"azure"`
	Image      ImageConfig      `mapstructure:"image" yaml:"image"`
	Release    ReleaseConfig    `mapstructure:"release" yaml:"release"`
	Env        EnvConfig        `mapstructure:"env" yaml:"env"`
	Endpoint   EndpointConfig   `mapstructure:"endpoint" yaml:"endpoint"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes" yaml:"kubernetes"`
	Tools      ToolsConfig      `mapstructure:"tools" yaml:"tools"`
	Log        LogConfig        `mapstructure:"log" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		Azure: AzureConfig{
			IdentityName: "id-deep-research-mcp",
		},
		Image: ImageConfig{
			Context:    ".",
			Platforms:  append([]string(nil), image.DefaultPlatforms...),
			PullPolicy: values.DefaultPullPolicy,
		},
		Release: ReleaseConfig{
			Name:       "deep-research-mcp",
			Chart:      "./chart",
			Namespace:  "default",
			ValuesFile: "./chart/values.yaml",
			Timeout:    5 * time.Minute,
		},
		Env: EnvConfig{
			File: ".env",
		},
		Endpoint: EndpointConfig{
			Attempts: 30,
			Interval: 10 * time.Second,
			Port:     8001,
			Path:     "/mcp",
			Scheme:   "http",
		},
		Kubernetes: KubernetesConfig{
			APIWarnings: "warn",
		},
		Tools: ToolsConfig{
			Az:     "az",
			Docker: "docker",
			Helm:   "helm",
			Git:    "git",
		},
	}
}

// ServiceName returns the Service polled for the endpoint.
func (c *Config) ServiceName() string {
	if c.Endpoint.Service != "" {
		return c.Endpoint.Service
	}
	return c.Release.Name
}
