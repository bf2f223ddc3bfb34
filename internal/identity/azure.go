package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deep-research-mcp/deployer/internal/tool"
)

// notFoundMarkers identify an az diagnostic for a missing identity.
var notFoundMarkers = []string{
	"ResourceNotFound",
	"was not found",
}

// AzureCLI implements Service with the az command-line tool.
type AzureCLI struct {
	// Runner executes az. Required.
	Runner tool.Runner

	// Subscription pins the subscription. Empty uses the az default.
	Subscription string

	// Binary is the az binary name or path. Empty means "az".
	Binary string
}

// Lookup runs `az identity show`. A ResourceNotFound diagnostic is reported as
// Found == false; every other failure is returned as an error.
func (a *AzureCLI) Lookup(ctx context.Context, name, scope string) (LookupResult, error) {
	res, err := a.Runner.Run(ctx, a.command("show", name, scope))
	if err != nil {
		if isNotFound(err) {
			return LookupResult{}, nil
		}
		return LookupResult{}, err
	}

	var rec Record
	if err := json.Unmarshal(res.Stdout, &rec); err != nil {
		return LookupResult{}, fmt.Errorf("parsing az identity show output: %w", err)
	}
	if rec.ResourceGroup == "" {
		rec.ResourceGroup = scope
	}
	return LookupResult{Found: true, Record: rec}, nil
}

// Create runs `az identity create`.
func (a *AzureCLI) Create(ctx context.Context, name, scope, location string) error {
	cmd := a.command("create", name, scope)
	cmd.Args = append(cmd.Args, "--location", location)
	_, err := a.Runner.Run(ctx, cmd)
	return err
}

func (a *AzureCLI) command(verb, name, scope string) tool.Command {
	args := []string{"identity", verb, "--name", name, "--resource-group", scope, "--output", "json"}
	if a.Subscription != "" {
		args = append(args, "--subscription", a.Subscription)
	}
	bin := a.Binary
	if bin == "" {
		bin = "az"
	}
	return tool.Command{Name: bin, Args: args}
}

// isNotFound reports whether err is az's diagnostic for a missing identity.
// A missing resource group is a configuration problem, not a reason to create.
func isNotFound(err error) bool {
	var exitErr *tool.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	diag := exitErr.Stderr
	if strings.Contains(diag, "ResourceGroupNotFound") {
		return false
	}
	for _, m := range notFoundMarkers {
		if strings.Contains(diag, m) {
			return true
		}
	}
	return false
}
