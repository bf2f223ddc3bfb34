package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// spinnerEnabled gates the interactive spinner. Tests and non-TTY output
// run actions inline.
var spinnerEnabled = IsTTY

// RunWithSpinner executes a long-running stage action behind a spinner titled
// with the stage description. On a non-TTY stdout the action runs inline and
// progress is visible through the log lines instead.
func RunWithSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !spinnerEnabled() {
		return action(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- action(ctx)
	}()

	var actionErr error
	spinnerErr := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() {
			actionErr = <-errCh
		}).
		Run()

	if spinnerErr != nil {
		return fmt.Errorf("spinner error: %w", spinnerErr)
	}
	return actionErr
}
