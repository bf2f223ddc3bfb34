// Package version provides version information for drmcp and the external
// tools it drives.
package version

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/deep-research-mcp/deployer/internal/tool"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Info contains version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("drmcp:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion)
}

// ToolInfo reports one external tool.
type ToolInfo struct {
	Name    string `json:"name"`
	Binary  string `json:"binary"`
	Version string `json:"version,omitempty"`
	Found   bool   `json:"found"`
	Message string `json:"message,omitempty"`
}

// String renders the tool line for `drmcp version`.
func (t ToolInfo) String() string {
	if !t.Found {
		msg := "not found"
		if t.Message != "" {
			msg = t.Message
		}
		return fmt.Sprintf("  %-7s %s", t.Name+":", msg)
	}
	return fmt.Sprintf("  %-7s %s (%s)", t.Name+":", t.Version, t.Binary)
}

// ToolProbe describes how to ask a tool for its version.
type ToolProbe struct {
	Name   string
	Binary string
	Args   []string
}

// DefaultProbes returns probes for the tools the pipeline shells out to.
func DefaultProbes(az, docker, helm, git string) []ToolProbe {
	return []ToolProbe{
		{Name: "az", Binary: az, Args: []string{"version", "--output", "tsv"}},
		{Name: "buildx", Binary: docker, Args: []string{"buildx", "version"}},
		{Name: "helm", Binary: helm, Args: []string{"version", "--short"}},
		{Name: "git", Binary: git, Args: []string{"--version"}},
	}
}

var semver = regexp.MustCompile(`v?\d+\.\d+\.\d+`)

// DetectTools runs each probe and extracts a version number from its output.
// A tool that cannot be run is reported as not found, never as an error.
func DetectTools(ctx context.Context, runner tool.Runner, probes []ToolProbe) []ToolInfo {
	infos := make([]ToolInfo, 0, len(probes))
	for _, p := range probes {
		info := ToolInfo{Name: p.Name, Binary: p.Binary}

		res, err := runner.Run(ctx, tool.Command{Name: p.Binary, Args: p.Args})
		if err != nil {
			info.Message = firstLine(tool.OutputOf(err))
			infos = append(infos, info)
			continue
		}

		info.Found = true
		info.Version = semver.FindString(string(res.Stdout))
		if info.Version == "" {
			info.Version = firstLine(string(res.Stdout))
		}
		infos = append(infos, info)
	}
	return infos
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
