// Package values materializes the release configuration document consumed by
// the release stage.
//
// A Document is a value: every write returns a new Document and leaves its
// input untouched, so each pipeline stage hands the next an explicit snapshot
// rather than mutating shared state. The last write wins; there is no
// versioning or conflict detection.
package values

import (
	"fmt"
	"maps"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultPullPolicy is the image pull policy written when none is configured.
const DefaultPullPolicy = "Always"

// Image holds the image coordinates of the release.
type Image struct {
	Repository string `yaml:"repository"`
	Tag        string `yaml:"tag"`
	PullPolicy string `yaml:"pullPolicy"`

	// Extra preserves chart-specific keys under image.
	Extra map[string]any `yaml:",inline"`
}

// WorkloadIdentity holds the cloud identity the workload authenticates as.
type WorkloadIdentity struct {
	ClientID string `yaml:"clientId"`
}

// Document is the release configuration.
type Document struct {
	Image            Image             `yaml:"image"`
	WorkloadIdentity WorkloadIdentity  `yaml:"workloadIdentity"`
	Env              map[string]string `yaml:"env"`

	// Extra preserves top-level keys this package does not own.
	Extra map[string]any `yaml:",inline"`
}

// New returns an empty document with the given pull policy.
func New(pullPolicy string) Document {
	if pullPolicy == "" {
		pullPolicy = DefaultPullPolicy
	}
	return Document{
		Image: Image{PullPolicy: pullPolicy},
		Env:   map[string]string{},
	}
}

// Parse decodes a YAML values document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parsing values: %w", err)
	}
	if doc.Env == nil {
		doc.Env = map[string]string{}
	}
	return doc, nil
}

// Load reads a YAML values document from path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading values file: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the document as YAML.
func (d Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Save writes the document to path as YAML.
func (d Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("encoding values: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing values file: %w", err)
	}
	return nil
}

// EnvKeys returns the environment keys in sorted order.
func (d Document) EnvKeys() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clone returns a copy whose maps can be written without touching d.
func (d Document) clone() Document {
	out := d
	out.Env = maps.Clone(d.Env)
	if out.Env == nil {
		out.Env = map[string]string{}
	}
	out.Extra = maps.Clone(d.Extra)
	out.Image.Extra = maps.Clone(d.Image.Extra)
	return out
}

// WriteImageFields overwrites the image repository and tag.
func WriteImageFields(doc Document, repository, tag string) Document {
	out := doc.clone()
	out.Image.Repository = repository
	out.Image.Tag = tag
	return out
}

// WritePullPolicy overwrites the image pull policy.
func WritePullPolicy(doc Document, policy string) Document {
	out := doc.clone()
	out.Image.PullPolicy = policy
	return out
}

// WriteIdentity overwrites the workload identity client id.
func WriteIdentity(doc Document, clientID string) Document {
	out := doc.clone()
	out.WorkloadIdentity.ClientID = clientID
	return out
}
