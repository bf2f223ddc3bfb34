package values

import (
	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

// Validate is the completeness gate run before the release stage. It returns
// a configuration error naming the first missing field. required lists
// environment keys that must be present with a non-empty value.
func Validate(doc Document, required []string) error {
	checks := []struct {
		field string
		value string
	}{
		{"image.repository", doc.Image.Repository},
		{"image.tag", doc.Image.Tag},
		{"image.pullPolicy", doc.Image.PullPolicy},
		{"workloadIdentity.clientId", doc.WorkloadIdentity.ClientID},
	}
	for _, c := range checks {
		if c.value == "" {
			return oerrors.NewConfigError(c.field, "required field is empty")
		}
	}

	if len(doc.Env) == 0 {
		return oerrors.NewConfigError("env", "environment map is empty; check the environment file")
	}
	for _, key := range required {
		if doc.Env[key] == "" {
			return oerrors.NewConfigError("env."+key, "required environment variable is missing or empty")
		}
	}
	return nil
}
