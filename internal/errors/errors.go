// Package errors provides the error taxonomy for the drmcp pipeline.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrProvisioning indicates the cloud identity lookup or creation failed.
	ErrProvisioning = errors.New("provisioning error")

	// ErrBuild indicates the container image build failed.
	ErrBuild = errors.New("build error")

	// ErrPublish indicates the image push to the registry failed after a successful build.
	ErrPublish = errors.New("publish error")

	// ErrRelease indicates the release apply failed.
	ErrRelease = errors.New("release error")

	// ErrConfig indicates a malformed or incomplete release configuration.
	ErrConfig = errors.New("configuration error")

	// ErrTimeout indicates the endpoint was not observed within the retry budget.
	// It is the only non-fatal error in the taxonomy.
	ErrTimeout = errors.New("timeout")

	// ErrConnectivity indicates the Kubernetes cluster could not be reached.
	ErrConnectivity = errors.New("connectivity error")

	// ErrNotFound indicates a resource, file, or tool was not found.
	ErrNotFound = errors.New("not found")
)

// Stage names a pipeline stage in diagnostics.
type Stage string

// Pipeline stages in execution order.
const (
	StageIdentity  Stage = "identity"
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StagePublish   Stage = "publish"
	StageRelease   Stage = "release"
	StageEndpoint  Stage = "endpoint"
)

// StageError captures a pipeline failure with the stage that produced it and
// the underlying tool diagnostic.
type StageError struct {
	// Stage is the failing pipeline stage (required).
	Stage Stage

	// Message is the specific description (required).
	Message string

	// Field is the configuration field at fault (optional, config errors).
	Field string

	// Output is the underlying tool's diagnostic output (optional).
	Output string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the sentinel classifying the failure (required).
	Cause error

	// Err is the underlying error (optional).
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(string(e.Stage))
	b.WriteString(" stage failed (")
	if e.Cause != nil {
		b.WriteString(e.Cause.Error())
	}
	b.WriteString(")\n")

	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Context[k])
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	b.WriteString("\n")

	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(out, "\n") {
			b.WriteString("  | ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap exposes both the sentinel and the underlying error to errors.Is/As.
func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewProvisioningError creates an identity stage error.
func NewProvisioningError(message, output string, err error) error {
	return &StageError{
		Stage:   StageIdentity,
		Message: message,
		Output:  output,
		Hint:    "Check 'az login' and that the resource group exists; a failed lookup never triggers a create.",
		Cause:   ErrProvisioning,
		Err:     err,
	}
}

// NewBuildError creates a build stage error.
func NewBuildError(message, output string, err error) error {
	return &StageError{
		Stage:   StageBuild,
		Message: message,
		Output:  output,
		Cause:   ErrBuild,
		Err:     err,
	}
}

// NewPublishError creates a publish stage error.
func NewPublishError(message, output string, err error) error {
	return &StageError{
		Stage:   StagePublish,
		Message: message,
		Output:  output,
		Hint:    "Registry pushes are usually credential or network failures; re-run with --push-only --tag <tag> to retry only the push.",
		Cause:   ErrPublish,
		Err:     err,
	}
}

// NewReleaseError creates a release stage error.
func NewReleaseError(message, output string, err error) error {
	return &StageError{
		Stage:   StageRelease,
		Message: message,
		Output:  output,
		Cause:   ErrRelease,
		Err:     err,
	}
}

// NewConfigError creates a configuration error naming the offending field.
func NewConfigError(field, message string) error {
	return &StageError{
		Stage:   StageConfigure,
		Message: message,
		Field:   field,
		Cause:   ErrConfig,
	}
}

// NewTimeoutError creates the non-fatal endpoint timeout outcome.
func NewTimeoutError(service, namespace string, attempts int) error {
	return &StageError{
		Stage:   StageEndpoint,
		Message: fmt.Sprintf("no external address observed after %d attempts", attempts),
		Context: map[string]string{
			"Service":   service,
			"Namespace": namespace,
		},
		Hint:  "The load balancer may still be provisioning; run 'drmcp endpoint' later.",
		Cause: ErrTimeout,
	}
}

// IsFatal reports whether err must halt the pipeline.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrTimeout)
}

// StageOf returns the stage recorded in err's chain, or "" if none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
