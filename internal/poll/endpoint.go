package poll

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
)

// Status is the terminal state of an endpoint poll.
type Status string

const (
	// StatusObserved means an external address was assigned.
	StatusObserved Status = "observed"

	// StatusExhausted means the attempt budget ran out first.
	StatusExhausted Status = "exhausted"
)

// QueryFunc reads the current external address of a service. An empty
// address with a nil error means not yet assigned.
type QueryFunc func(ctx context.Context, service, namespace string) (string, error)

// Endpoint is an observed external address.
type Endpoint struct {
	Address  string
	Attempts int
	Status   Status
}

// Observed reports whether an address was assigned.
func (e *Endpoint) Observed() bool {
	return e != nil && e.Status == StatusObserved
}

// WaitForEndpoint polls query until it returns a non-empty address or the
// retry budget is spent. Query errors are logged and treated as pending, so
// a Service the chart has not created yet does not abort the wait.
//
// On exhaustion the returned Endpoint has StatusExhausted and the error is
// classified as errors.ErrTimeout, which is not fatal to the deployment.
func WaitForEndpoint(ctx context.Context, query QueryFunc, service, namespace string, r Retry) (*Endpoint, error) {
	if service == "" {
		return nil, oerrors.NewConfigError("endpoint.service", "service name is required")
	}
	if r.Attempts < 1 {
		return nil, oerrors.NewConfigError("endpoint.attempts", fmt.Sprintf("must be at least 1, got %d", r.Attempts))
	}
	if r.Interval < 0 {
		return nil, oerrors.NewConfigError("endpoint.interval", "must not be negative")
	}

	log := output.StageLogger(string(oerrors.StageEndpoint))
	ep := &Endpoint{}

	attempts, err := r.Do(ctx, func(ctx context.Context, attempt int) (bool, error) {
		addr, qerr := query(ctx, service, namespace)
		if qerr != nil {
			log.Debug("endpoint query failed", "attempt", attempt, "service", service, "error", qerr)
			return false, nil
		}
		if addr == "" {
			log.Debug("external address pending", "attempt", attempt, "of", r.Attempts)
			return false, nil
		}
		ep.Address = addr
		return true, nil
	})
	ep.Attempts = attempts

	switch {
	case err == nil:
		ep.Status = StatusObserved
		return ep, nil
	case errors.Is(err, ErrExhausted):
		ep.Status = StatusExhausted
		return ep, oerrors.NewTimeoutError(service, namespace, attempts)
	default:
		return nil, err
	}
}

// URLSpec describes how the workload is reached once its address is known.
type URLSpec struct {
	Scheme string
	Port   int
	Path   string
}

// DefaultURLSpec is the MCP server's listener.
var DefaultURLSpec = URLSpec{Scheme: "http", Port: 8001, Path: "/mcp"}

// URL renders the endpoint as <scheme>://<address>:<port><path>.
func (e *Endpoint) URL(spec URLSpec) string {
	if spec.Scheme == "" {
		spec.Scheme = DefaultURLSpec.Scheme
	}
	if spec.Port == 0 {
		spec.Port = DefaultURLSpec.Port
	}
	if spec.Path == "" {
		spec.Path = DefaultURLSpec.Path
	}
	if !strings.HasPrefix(spec.Path, "/") {
		spec.Path = "/" + spec.Path
	}
	u := url.URL{
		Scheme: spec.Scheme,
		Host:   net.JoinHostPort(e.Address, strconv.Itoa(spec.Port)),
		Path:   spec.Path,
	}
	return u.String()
}
