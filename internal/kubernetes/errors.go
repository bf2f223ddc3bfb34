package kubernetes

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

// ErrPermissionDenied is returned when the cluster rejects our credentials.
var ErrPermissionDenied = errors.New("permission denied")

// ServiceNotFoundError reports that the observed Service does not exist yet.
// The chart may not have created it, so pollers treat it as pending.
type ServiceNotFoundError struct {
	Name      string
	Namespace string
}

// Error implements the error interface.
func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %q not found in namespace %q", e.Name, e.Namespace)
}

// Is matches errors.ErrNotFound.
func (e *ServiceNotFoundError) Is(target error) bool {
	return target == oerrors.ErrNotFound
}

// IsServiceNotFound reports whether err indicates a missing Service.
func IsServiceNotFound(err error) bool {
	var nf *ServiceNotFoundError
	return errors.As(err, &nf)
}

// classify maps API errors onto the drmcp taxonomy.
func classify(err error, name, namespace string) error {
	switch {
	case apierrors.IsNotFound(err):
		return &ServiceNotFoundError{Name: name, Namespace: namespace}
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case apierrors.IsServerTimeout(err), apierrors.IsTimeout(err), apierrors.IsServiceUnavailable(err):
		return fmt.Errorf("reading service %s/%s: %w", namespace, name, oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	default:
		return fmt.Errorf("reading service %s/%s: %w", namespace, name, err)
	}
}
