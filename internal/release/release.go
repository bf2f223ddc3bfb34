// Package release applies the workload chart with its materialized values
// using a single idempotent upgrade-or-install verb.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/tool"
	"github.com/deep-research-mcp/deployer/internal/values"
)

// Request describes one release apply.
type Request struct {
	// Name is the release name.
	Name string

	// Chart is the chart directory or reference.
	Chart string

	// Namespace is the target namespace; created when absent.
	Namespace string

	// Values is the finalized release configuration.
	Values values.Document

	// Timeout bounds the apply. Zero leaves the tool default.
	Timeout time.Duration

	// Wait blocks until workloads report ready.
	Wait bool

	// Description is recorded on the release revision.
	Description string
}

// Result is the outcome of a successful apply.
type Result struct {
	Name      string
	Namespace string
	Revision  int
	Status    string

	// Installed is true when this apply created the release (first revision).
	Installed bool
}

// Helm implements the release driver with `helm upgrade --install`.
type Helm struct {
	// Runner executes helm. Required.
	Runner tool.Runner

	// Binary is the helm binary name or path. Empty means "helm".
	Binary string

	// Kubeconfig and KubeContext select the target cluster.
	Kubeconfig  string
	KubeContext string
}

// helmRelease is the subset of helm's JSON release output we read.
type helmRelease struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Version   int    `json:"version"`
	Info      struct {
		Status string `json:"status"`
	} `json:"info"`
}

// Apply installs the release if absent and upgrades it in place otherwise.
// The same call serves first deploy and redeploy. Failures carry helm's
// diagnostic output and are never rolled back.
func (h *Helm) Apply(ctx context.Context, req Request) (*Result, error) {
	switch {
	case req.Name == "":
		return nil, oerrors.NewConfigError("release.name", "release name is required")
	case req.Chart == "":
		return nil, oerrors.NewConfigError("release.chart", "chart path is required")
	case req.Namespace == "":
		return nil, oerrors.NewConfigError("release.namespace", "namespace is required")
	}

	valuesFile, cleanup, err := writeValues(req.Values)
	if err != nil {
		return nil, oerrors.NewReleaseError("writing values for "+req.Name, "", err)
	}
	defer cleanup()

	args := []string{
		"upgrade", "--install", req.Name, req.Chart,
		"--namespace", req.Namespace,
		"--create-namespace",
		"--values", valuesFile,
		"--output", "json",
	}
	if req.Wait {
		args = append(args, "--wait")
	}
	if req.Timeout > 0 {
		args = append(args, "--timeout", req.Timeout.String())
	}
	if req.Description != "" {
		args = append(args, "--description", req.Description)
	}
	args = append(args, h.clusterArgs()...)

	log := output.ReleaseLogger(req.Name)
	log.Info("applying release", "chart", req.Chart, "namespace", req.Namespace, "image", req.Values.Image.Repository+":"+req.Values.Image.Tag)

	res, err := h.Runner.Run(ctx, tool.Command{Name: h.binary(), Args: args})
	if err != nil {
		return nil, oerrors.NewReleaseError("helm upgrade --install "+req.Name, tool.OutputOf(err), err)
	}

	var rel helmRelease
	if err := json.Unmarshal(res.Stdout, &rel); err != nil {
		// The apply succeeded; only the report is unreadable.
		output.Debug("unparseable helm output", "error", err)
		return &Result{Name: req.Name, Namespace: req.Namespace, Status: "unknown"}, nil
	}

	return &Result{
		Name:      req.Name,
		Namespace: req.Namespace,
		Revision:  rel.Version,
		Status:    rel.Info.Status,
		Installed: rel.Version == 1,
	}, nil
}

// GetValues returns the user-supplied values of the deployed release as YAML.
// A release that does not exist yields an error wrapping errors.ErrNotFound.
func (h *Helm) GetValues(ctx context.Context, name, namespace string) ([]byte, error) {
	args := append([]string{"get", "values", name, "--namespace", namespace, "--output", "yaml"}, h.clusterArgs()...)
	res, err := h.Runner.Run(ctx, tool.Command{Name: h.binary(), Args: args})
	if err != nil {
		if strings.Contains(tool.OutputOf(err), "not found") {
			return nil, oerrors.Wrap(oerrors.ErrNotFound, "release "+strconv.Quote(name))
		}
		return nil, fmt.Errorf("helm get values %s: %w", name, err)
	}
	return res.Stdout, nil
}

func (h *Helm) clusterArgs() []string {
	var args []string
	if h.Kubeconfig != "" {
		args = append(args, "--kubeconfig", h.Kubeconfig)
	}
	if h.KubeContext != "" {
		args = append(args, "--kube-context", h.KubeContext)
	}
	return args
}

func (h *Helm) binary() string {
	if h.Binary != "" {
		return h.Binary
	}
	return "helm"
}

// writeValues writes doc to a private temp file for helm --values.
func writeValues(doc values.Document) (string, func(), error) {
	f, err := os.CreateTemp("", "drmcp-values-*.yaml")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	if err := doc.Save(path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
