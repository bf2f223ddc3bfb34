// Package identity ensures the workload's cloud-managed identity exists.
//
// The identity name is the unique key: a lookup that finds the identity
// returns its client ID unchanged, and only an explicit not-found result
// triggers a create. Transport and authentication failures during lookup are
// errors, never a decision to create.
package identity

import (
	"context"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/tool"
)

// Record is a cloud identity as reported by the identity service.
type Record struct {
	// Name is the identity name, unique within the resource group.
	Name string `json:"name"`

	// ResourceGroup is the scope the identity lives in.
	ResourceGroup string `json:"resourceGroup"`

	// Location is the cloud region.
	Location string `json:"location"`

	// ClientID is the immutable client identifier used by the workload.
	ClientID string `json:"clientId"`

	// PrincipalID is the service principal object id.
	PrincipalID string `json:"principalId"`

	// ResourceID is the fully qualified resource id.
	ResourceID string `json:"id"`
}

// LookupResult distinguishes "not found" from a found identity. Failures to
// perform the lookup are reported as errors, not as Found == false.
type LookupResult struct {
	Found  bool
	Record Record
}

// Service is the cloud identity service.
type Service interface {
	// Lookup finds an identity by name within scope.
	Lookup(ctx context.Context, name, scope string) (LookupResult, error)

	// Create creates an identity by name at location within scope.
	Create(ctx context.Context, name, scope, location string) error
}

// Result is the outcome of Ensure.
type Result struct {
	Record Record

	// Created is true when this call created the identity.
	Created bool
}

// Provisioner ensures a named identity exists.
type Provisioner struct {
	svc Service
}

// NewProvisioner creates a Provisioner backed by svc.
func NewProvisioner(svc Service) *Provisioner {
	return &Provisioner{svc: svc}
}

// Ensure returns the client ID of the identity named name in scope, creating
// it at location when the lookup reports it absent.
func (p *Provisioner) Ensure(ctx context.Context, name, scope, location string) (*Result, error) {
	if name == "" {
		return nil, oerrors.NewConfigError("azure.identityName", "identity name is required")
	}
	if scope == "" {
		return nil, oerrors.NewConfigError("azure.resourceGroup", "resource group is required")
	}

	log := output.StageLogger(string(oerrors.StageIdentity))

	found, err := p.svc.Lookup(ctx, name, scope)
	if err != nil {
		return nil, oerrors.NewProvisioningError("looking up identity "+name, tool.OutputOf(err), err)
	}
	if found.Found {
		if found.Record.ClientID == "" {
			return nil, oerrors.NewProvisioningError("identity "+name+" has no client id", "", nil)
		}
		log.Debug("identity exists", "name", name, "clientId", found.Record.ClientID)
		return &Result{Record: found.Record}, nil
	}

	if location == "" {
		return nil, oerrors.NewConfigError("azure.location", "location is required to create identity "+name)
	}

	log.Info("creating identity", "name", name, "resourceGroup", scope, "location", location)
	if err := p.svc.Create(ctx, name, scope, location); err != nil {
		return nil, oerrors.NewProvisioningError("creating identity "+name, tool.OutputOf(err), err)
	}

	created, err := p.svc.Lookup(ctx, name, scope)
	if err != nil {
		return nil, oerrors.NewProvisioningError("reading identity "+name+" after create", tool.OutputOf(err), err)
	}
	if !created.Found || created.Record.ClientID == "" {
		return nil, oerrors.NewProvisioningError("identity "+name+" not visible after create", "", nil)
	}

	return &Result{Record: created.Record, Created: true}, nil
}

// Find returns the existing identity without creating it. An absent identity
// is a provisioning error wrapping errors.ErrNotFound.
func (p *Provisioner) Find(ctx context.Context, name, scope string) (*Result, error) {
	if name == "" {
		return nil, oerrors.NewConfigError("azure.identityName", "identity name is required")
	}
	if scope == "" {
		return nil, oerrors.NewConfigError("azure.resourceGroup", "resource group is required")
	}

	found, err := p.svc.Lookup(ctx, name, scope)
	if err != nil {
		return nil, oerrors.NewProvisioningError("looking up identity "+name, tool.OutputOf(err), err)
	}
	if !found.Found {
		return nil, oerrors.NewProvisioningError("identity "+name+" does not exist", "", oerrors.ErrNotFound)
	}
	return &Result{Record: found.Record}, nil
}
