// Package tooltest provides a scripted tool.Runner for unit tests.
package tooltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/deep-research-mcp/deployer/internal/tool"
)

// Handler answers a single command invocation.
type Handler func(cmd tool.Command) (*tool.Result, error)

// Runner records every command and answers with the first handler whose
// prefix matches the rendered command line.
type Runner struct {
	mu       sync.Mutex
	handlers []prefixHandler
	calls    []tool.Command
}

type prefixHandler struct {
	prefix string
	fn     Handler
}

// NewRunner creates an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{}
}

// On registers fn for commands whose rendered line starts with prefix.
// Earlier registrations win.
func (r *Runner) On(prefix string, fn Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, prefixHandler{prefix: prefix, fn: fn})
	return r
}

// Stdout is a Handler that succeeds with the given stdout.
func Stdout(s string) Handler {
	return func(tool.Command) (*tool.Result, error) {
		return &tool.Result{Stdout: []byte(s)}, nil
	}
}

// Fail is a Handler that exits non-zero with the given stderr.
func Fail(code int, stderr string) Handler {
	return func(cmd tool.Command) (*tool.Result, error) {
		return nil, &tool.ExitError{Command: cmd.String(), Code: code, Stderr: stderr}
	}
}

// Run implements tool.Runner.
func (r *Runner) Run(_ context.Context, cmd tool.Command) (*tool.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	handlers := append([]prefixHandler(nil), r.handlers...)
	r.mu.Unlock()

	line := cmd.String()
	for _, h := range handlers {
		if strings.HasPrefix(line, h.prefix) {
			return h.fn(cmd)
		}
	}
	return nil, fmt.Errorf("tooltest: unexpected command %q", line)
}

// Calls returns the recorded invocations.
func (r *Runner) Calls() []tool.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tool.Command(nil), r.calls...)
}

// Count returns how many recorded invocations start with prefix.
func (r *Runner) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls() {
		if strings.HasPrefix(c.String(), prefix) {
			n++
		}
	}
	return n
}
