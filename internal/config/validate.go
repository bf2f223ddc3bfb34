package config

import (
	"fmt"
	"regexp"
	"slices"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/image"
)

// dnsLabel validates release and namespace names per RFC 1123.
var dnsLabel = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// platformPattern matches os/arch[/variant].
var platformPattern = regexp.MustCompile(`^[a-z0-9]+/[a-z0-9_]+(/[a-z0-9]+)?$`)

var pullPolicies = []string{"Always", "IfNotPresent", "Never"}

var warningLevels = []string{"warn", "debug", "suppress"}

// Validate checks the shape of every configured value. Fields a particular
// command needs but which have no default are checked by RequireDeploy.
func (c *Config) Validate() error {
	if c.Image.Repository != "" {
		if err := image.ValidateRepository(c.Image.Repository); err != nil {
			return err
		}
	}
	for _, p := range c.Image.Platforms {
		if !platformPattern.MatchString(p) {
			return oerrors.NewConfigError("image.platforms", fmt.Sprintf("invalid platform %q, expected os/arch", p))
		}
	}
	if c.Image.PullPolicy != "" && !slices.Contains(pullPolicies, c.Image.PullPolicy) {
		return oerrors.NewConfigError("image.pullPolicy", fmt.Sprintf("must be one of %v, got %q", pullPolicies, c.Image.PullPolicy))
	}

	if c.Release.Name != "" && !dnsLabel.MatchString(c.Release.Name) {
		return oerrors.NewConfigError("release.name", fmt.Sprintf("%q is not a valid release name", c.Release.Name))
	}
	if c.Release.Namespace != "" && !dnsLabel.MatchString(c.Release.Namespace) {
		return oerrors.NewConfigError("release.namespace", fmt.Sprintf("%q is not a valid namespace", c.Release.Namespace))
	}
	if c.Release.Timeout < 0 {
		return oerrors.NewConfigError("release.timeout", "must not be negative")
	}

	if c.Endpoint.Attempts < 1 {
		return oerrors.NewConfigError("endpoint.attempts", fmt.Sprintf("must be at least 1, got %d", c.Endpoint.Attempts))
	}
	if c.Endpoint.Interval < 0 {
		return oerrors.NewConfigError("endpoint.interval", "must not be negative")
	}
	if c.Endpoint.Port < 1 || c.Endpoint.Port > 65535 {
		return oerrors.NewConfigError("endpoint.port", fmt.Sprintf("must be between 1 and 65535, got %d", c.Endpoint.Port))
	}
	if c.Endpoint.Scheme != "http" && c.Endpoint.Scheme != "https" {
		return oerrors.NewConfigError("endpoint.scheme", fmt.Sprintf("must be http or https, got %q", c.Endpoint.Scheme))
	}
	if c.Kubernetes.APIWarnings != "" && !slices.Contains(warningLevels, c.Kubernetes.APIWarnings) {
		return oerrors.NewConfigError("kubernetes.apiWarnings", fmt.Sprintf("must be one of %v, got %q", warningLevels, c.Kubernetes.APIWarnings))
	}
	return nil
}

// RequireDeploy checks the fields a deploy cannot run without.
func (c *Config) RequireDeploy() error {
	required := []struct {
		field string
		value string
	}{
		{"azure.resourceGroup", c.Azure.ResourceGroup},
		{"azure.identityName", c.Azure.IdentityName},
		{"image.repository", c.Image.Repository},
		{"release.name", c.Release.Name},
		{"release.chart", c.Release.Chart},
		{"release.namespace", c.Release.Namespace},
	}
	for _, r := range required {
		if r.value == "" {
			return oerrors.NewConfigError(r.field, "required setting is empty; set it in the config file, a DRMCP_ variable, or a flag")
		}
	}
	return nil
}
