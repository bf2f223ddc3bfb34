package values

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
)

// Diff renders a YAML-aware diff between the deployed values and the desired
// document. It returns "" when they are equivalent.
func Diff(live []byte, desired Document, useColor bool) (string, error) {
	desiredYAML, err := desired.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding desired values: %w", err)
	}

	liveInput, err := parseYAMLInput("deployed", live)
	if err != nil {
		return "", fmt.Errorf("parsing deployed values: %w", err)
	}
	desiredInput, err := parseYAMLInput("desired", desiredYAML)
	if err != nil {
		return "", fmt.Errorf("parsing desired values: %w", err)
	}

	report, err := dyff.CompareInputFiles(liveInput, desiredInput)
	if err != nil {
		return "", fmt.Errorf("comparing values: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := reportWriter.WriteReport(&buf); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// parseYAMLInput parses YAML bytes into a dyff input file. Empty input (a
// release not yet installed) compares as an empty mapping.
func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}
