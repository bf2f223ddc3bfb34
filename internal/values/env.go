package values

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envLine matches `identifier = value` after the line has been trimmed.
var envLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

// Entry is one qualifying KEY=VALUE line.
type Entry struct {
	Key   string
	Value string
}

// ParseEnv returns the qualifying entries of lines in order. Lines that are
// not KEY=VALUE (comments, blanks, anything else) are skipped without error.
// Values are taken verbatim apart from surrounding whitespace.
func ParseEnv(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		m := envLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		entries = append(entries, Entry{Key: m[1], Value: strings.TrimSpace(m[2])})
	}
	return entries
}

// IngestEnvironment writes every qualifying line of lines into the document's
// environment map. Later lines overwrite earlier ones with the same key, and
// the result overwrites any value already in doc.
func IngestEnvironment(doc Document, lines []string) Document {
	out := doc.clone()
	for _, e := range ParseEnv(lines) {
		out.Env[e.Key] = e.Value
	}
	return out
}

// ReadEnvFile reads an environment file into lines. A leading UTF-8 BOM is
// dropped.
func ReadEnvFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	return lines, nil
}
