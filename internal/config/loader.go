package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

// Environment variable prefix for drmcp configuration.
const envPrefix = "DRMCP"

// envAliases binds keys to short environment names in addition to the
// DRMCP_<SECTION>_<KEY> form AutomaticEnv derives.
var envAliases = map[string]string{
	"kubernetes.kubeconfig": "DRMCP_KUBECONFIG",
	"kubernetes.context":    "DRMCP_CONTEXT",
}

// Loader handles loading and merging configuration from multiple sources.
// Precedence: flag > env > config file > default.
type Loader struct {
	v          *viper.Viper
	flags      map[string]*pflag.Flag
	configFile ResolveConfigPathResult
	fileLoaded bool
}

// NewLoader creates a new configuration loader with every key defaulted.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	for key, env := range envAliases {
		_ = v.BindEnv(key, envName(key), env)
	}
	_ = v.BindEnv("log.timestamps")

	return &Loader{v: v, flags: map[string]*pflag.Flag{}}
}

// BindFlag makes flag override key when the user set it.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: flag not defined", key)
	}
	l.flags[strings.ToLower(key)] = flag
	return l.v.BindPFlag(key, flag)
}

// Load reads configFile (or the resolved default) and returns the merged,
// validated configuration. A missing file at the default location is not an
// error; a missing file that was asked for explicitly is.
func (l *Loader) Load(configFile string) (*Config, error) {
	resolved, err := ResolveConfigPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	l.configFile = resolved

	l.v.SetConfigFile(resolved.ConfigPath)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if !missing || resolved.Source != SourceDefault {
			return nil, oerrors.NewConfigError("config", fmt.Sprintf("reading %s: %v", resolved.ConfigPath, err))
		}
	} else {
		l.fileLoaded = true
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewConfigError("config", fmt.Sprintf("decoding %s: %v", resolved.ConfigPath, err))
	}

	cfg.Kubernetes.Kubeconfig = ExpandTilde(cfg.Kubernetes.Kubeconfig)
	cfg.Release.ValuesFile = ExpandTilde(cfg.Release.ValuesFile)
	cfg.Release.Chart = ExpandTilde(cfg.Release.Chart)
	cfg.Image.Context = ExpandTilde(cfg.Image.Context)
	cfg.Image.Dockerfile = ExpandTilde(cfg.Image.Dockerfile)
	cfg.Env.File = ExpandTilde(cfg.Env.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFile returns the config path the last Load used.
func (l *Loader) ConfigFile() ResolveConfigPathResult {
	return l.configFile
}

// FileLoaded reports whether the last Load read a config file.
func (l *Loader) FileLoaded() bool {
	return l.fileLoaded
}

// Resolved lists every key with its effective value and source, sorted by key.
func (l *Loader) Resolved() []ResolvedValue {
	keys := l.v.AllKeys()
	sort.Strings(keys)

	out := make([]ResolvedValue, 0, len(keys))
	for _, key := range keys {
		out = append(out, ResolvedValue{
			Key:    key,
			Value:  fmt.Sprint(l.v.Get(key)),
			Source: l.source(key),
		})
	}
	return out
}

func (l *Loader) source(key string) ConfigSource {
	if f, ok := l.flags[key]; ok && f.Changed {
		return SourceFlag
	}
	if _, ok := os.LookupEnv(envName(key)); ok {
		return SourceEnv
	}
	for k, alias := range envAliases {
		if strings.EqualFold(k, key) {
			if _, ok := os.LookupEnv(alias); ok {
				return SourceEnv
			}
		}
	}
	if l.v.InConfig(key) {
		return SourceConfig
	}
	return SourceDefault
}

// envName returns the DRMCP_ environment variable for key.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("azure.subscription", d.Azure.Subscription)
	v.SetDefault("azure.resourceGroup", d.Azure.ResourceGroup)
	v.SetDefault("azure.location", d.Azure.Location)
	v.SetDefault("azure.identityName", d.Azure.IdentityName)

	v.SetDefault("image.repository", d.Image.Repository)
	v.SetDefault("image.context", d.Image.Context)
	v.SetDefault("image.dockerfile", d.Image.Dockerfile)
	v.SetDefault("image.platforms", d.Image.Platforms)
	v.SetDefault("image.pullPolicy", d.Image.PullPolicy)
	v.SetDefault("image.builder", d.Image.Builder)

	v.SetDefault("release.name", d.Release.Name)
	v.SetDefault("release.chart", d.Release.Chart)
	v.SetDefault("release.namespace", d.Release.Namespace)
	v.SetDefault("release.valuesFile", d.Release.ValuesFile)
	v.SetDefault("release.timeout", d.Release.Timeout)
	v.SetDefault("release.wait", d.Release.Wait)

	v.SetDefault("env.file", d.Env.File)
	v.SetDefault("env.required", append([]string{}, d.Env.Required...))

	v.SetDefault("endpoint.service", d.Endpoint.Service)
	v.SetDefault("endpoint.attempts", d.Endpoint.Attempts)
	v.SetDefault("endpoint.interval", d.Endpoint.Interval)
	v.SetDefault("endpoint.port", d.Endpoint.Port)
	v.SetDefault("endpoint.path", d.Endpoint.Path)
	v.SetDefault("endpoint.scheme", d.Endpoint.Scheme)

	v.SetDefault("kubernetes.kubeconfig", d.Kubernetes.Kubeconfig)
	v.SetDefault("kubernetes.context", d.Kubernetes.Context)
	v.SetDefault("kubernetes.apiWarnings", d.Kubernetes.APIWarnings)

	v.SetDefault("tools.az", d.Tools.Az)
	v.SetDefault("tools.docker", d.Tools.Docker)
	v.SetDefault("tools.helm", d.Tools.Helm)
	v.SetDefault("tools.git", d.Tools.Git)
}
