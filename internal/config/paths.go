package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for drmcp.
type Paths struct {
	// ConfigFile is the path to the config file (~/.drmcp/config.yaml).
	ConfigFile string

	// HomeDir is the drmcp home directory (~/.drmcp).
	HomeDir string
}

// DefaultPaths returns the default paths for drmcp.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	home := filepath.Join(homeDir, ".drmcp")

	return &Paths{
		ConfigFile: filepath.Join(home, "config.yaml"),
		HomeDir:    home,
	}, nil
}

// EnsureHomeDir creates the drmcp home directory if it doesn't exist.
func EnsureHomeDir() (string, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}
	return paths.HomeDir, os.MkdirAll(paths.HomeDir, 0o700)
}

// ExpandTilde expands ~ to the user's home directory. ~username forms and
// paths that do not start with ~ are returned unchanged, as is the input
// when the home directory cannot be determined.
func ExpandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
