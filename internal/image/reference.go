// Package image builds the workload's multi-architecture container image and
// publishes it under a revision tag plus the floating alias.
package image

import (
	"github.com/distribution/reference"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

// AliasTag is pushed alongside every revision tag and always points at the
// most recent build.
const AliasTag = "latest"

// DefaultPlatforms is the target platform set when none is configured.
var DefaultPlatforms = []string{"linux/amd64", "linux/arm64"}

// Reference is an image repository and tag.
type Reference struct {
	Repository string
	Tag        string
}

// String returns repository:tag.
func (r Reference) String() string {
	if r.Tag == "" {
		return r.Repository
	}
	return r.Repository + ":" + r.Tag
}

// Alias returns the alias reference for the same repository.
func (r Reference) Alias() Reference {
	return Reference{Repository: r.Repository, Tag: AliasTag}
}

// ValidateRepository checks that repo is a valid image repository without a
// tag or digest (e.g. "myacr.azurecr.io/deep-research-mcp").
func ValidateRepository(repo string) error {
	if repo == "" {
		return oerrors.NewConfigError("image.repository", "image repository is required")
	}
	named, err := reference.ParseNormalizedNamed(repo)
	if err != nil {
		return oerrors.NewConfigError("image.repository", "invalid image repository "+repo+": "+err.Error())
	}
	if !reference.IsNameOnly(named) {
		return oerrors.NewConfigError("image.repository", "image repository "+repo+" must not carry a tag or digest")
	}
	return nil
}

// ValidateTag checks that tag is a valid image tag.
func ValidateTag(repo, tag string) error {
	if tag == "" {
		return oerrors.NewConfigError("image.tag", "image tag is required")
	}
	if _, err := reference.ParseNormalizedNamed(repo + ":" + tag); err != nil {
		return oerrors.NewConfigError("image.tag", "invalid image tag "+tag+": "+err.Error())
	}
	return nil
}
