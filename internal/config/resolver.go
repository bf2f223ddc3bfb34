package config

import (
	"os"

	"github.com/deep-research-mcp/deployer/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration key with its effective value and
// where it came from.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) DRMCP_CONFIG env, (3) ~/.drmcp/config.yaml
func ResolveConfigPath(flagValue string) (ResolveConfigPathResult, error) {
	if flagValue != "" {
		return ResolveConfigPathResult{ConfigPath: ExpandTilde(flagValue), Source: SourceFlag}, nil
	}
	if envValue := os.Getenv("DRMCP_CONFIG"); envValue != "" {
		return ResolveConfigPathResult{ConfigPath: ExpandTilde(envValue), Source: SourceEnv}, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return ResolveConfigPathResult{}, err
	}
	return ResolveConfigPathResult{ConfigPath: paths.ConfigFile, Source: SourceDefault}, nil
}

// LogResolvedValues logs each configuration value's resolution at DEBUG.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
	}
}
