package kubernetes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

func TestServiceNotFoundError(t *testing.T) {
	err := &ServiceNotFoundError{Name: "deep-research", Namespace: "mcp"}
	assert.Equal(t, `service "deep-research" not found in namespace "mcp"`, err.Error())

	wrapped := fmt.Errorf("polling: %w", err)
	assert.True(t, IsServiceNotFound(wrapped))
	assert.True(t, errors.Is(wrapped, oerrors.ErrNotFound))
	assert.False(t, IsServiceNotFound(errors.New("connection refused")))
}

func TestClassify(t *testing.T) {
	gr := schema.GroupResource{Resource: "services"}

	assert.True(t, IsServiceNotFound(classify(apierrors.NewNotFound(gr, "x"), "x", "ns")))
	assert.ErrorIs(t, classify(apierrors.NewUnauthorized("expired"), "x", "ns"), ErrPermissionDenied)
	assert.ErrorIs(t, classify(apierrors.NewServiceUnavailable("down"), "x", "ns"), oerrors.ErrConnectivity)

	plain := classify(errors.New("dial tcp: i/o timeout"), "x", "ns")
	assert.Contains(t, plain.Error(), "reading service ns/x")
	assert.False(t, errors.Is(plain, oerrors.ErrConnectivity))
}
