package cmd

import (
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/kubernetes"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is true when the command already rendered the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return ExitCodeName(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
// A stage error is classified by its stage sentinel before anything it wraps.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, oerrors.ErrConfig):
		return ExitConfigError
	case errors.Is(err, oerrors.ErrProvisioning):
		return ExitProvisioningError
	case errors.Is(err, oerrors.ErrBuild):
		return ExitBuildError
	case errors.Is(err, oerrors.ErrPublish):
		return ExitPublishError
	case errors.Is(err, oerrors.ErrRelease):
		return ExitReleaseError
	case errors.Is(err, oerrors.ErrTimeout):
		return ExitEndpointTimeout
	case errors.Is(err, oerrors.ErrConnectivity), errors.Is(err, kubernetes.ErrPermissionDenied):
		return ExitConnectivityError
	}
	return exitCodeFromK8sError(err)
}

// exitCodeFromK8sError maps raw API errors that escaped classification.
func exitCodeFromK8sError(err error) int {
	switch {
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return ExitConnectivityError
	case apierrors.IsServiceUnavailable(err), apierrors.IsServerTimeout(err), apierrors.IsTimeout(err):
		return ExitConnectivityError
	default:
		return ExitGeneralError
	}
}
