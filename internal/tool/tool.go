// Package tool wraps the external command-line tools the pipeline drives
// (az, docker, git, helm).
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
)

// Command is a single external tool invocation.
type Command struct {
	// Name is the binary name or path.
	Name string

	// Args are the command arguments.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the process environment.
	Env []string
}

// String renders the command line for logs and diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a completed command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError is returned when a command ran but exited non-zero.
type ExitError struct {
	// Command is the rendered command line.
	Command string

	// Code is the process exit code.
	Code int

	// Stdout and Stderr hold the captured output.
	Stdout string
	Stderr string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with exit code %d", e.Command, e.Code)
}

// Output returns the tool diagnostic, preferring stderr.
func (e *ExitError) Output() string {
	if strings.TrimSpace(e.Stderr) != "" {
		return e.Stderr
	}
	return e.Stdout
}

// OutputOf returns the tool diagnostic carried by err, or "".
func OutputOf(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Output()
	}
	return ""
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stream, when set, receives a live copy of stderr (build progress).
	Stream io.Writer
}

// NewExecRunner creates an ExecRunner that captures output only.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes cmd and captures its output.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	path, err := exec.LookPath(cmd.Name)
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrNotFound, fmt.Sprintf("%s binary", cmd.Name))
	}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if r.Stream != nil {
		c.Stderr = io.MultiWriter(&stderr, r.Stream)
	}

	output.Debug("running command", "cmd", cmd.String(), "dir", cmd.Dir)

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Command: cmd.String(),
				Code:    exitErr.ExitCode(),
				Stdout:  stdout.String(),
				Stderr:  stderr.String(),
			}
		}
		return nil, fmt.Errorf("%s: %w", cmd.String(), err)
	}

	return &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}
