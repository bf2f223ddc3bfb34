package kubernetes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
)

func loadBalancer(ingress ...corev1.LoadBalancerIngress) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "deep-research", Namespace: "mcp"},
		Spec: corev1.ServiceSpec{
			Type:  corev1.ServiceTypeLoadBalancer,
			Ports: []corev1.ServicePort{{Name: "http", Port: 8001}},
		},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{Ingress: ingress},
		},
	}
}

func TestServiceAddress(t *testing.T) {
	tests := []struct {
		name string
		svc  *corev1.Service
		want string
	}{
		{"pending", loadBalancer(), ""},
		{"ip", loadBalancer(corev1.LoadBalancerIngress{IP: "20.1.2.3"}), "20.1.2.3"},
		{"hostname", loadBalancer(corev1.LoadBalancerIngress{Hostname: "lb.example.net"}), "lb.example.net"},
		{
			"ip preferred over hostname",
			loadBalancer(
				corev1.LoadBalancerIngress{Hostname: "lb.example.net"},
				corev1.LoadBalancerIngress{IP: "20.1.2.3"},
			),
			"20.1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClientFromInterface(fake.NewSimpleClientset(tt.svc))
			got, err := c.ServiceAddress(context.Background(), "deep-research", "mcp")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceAddress_Missing(t *testing.T) {
	c := NewClientFromInterface(fake.NewSimpleClientset())

	_, err := c.ServiceAddress(context.Background(), "deep-research", "mcp")
	require.Error(t, err)
	assert.True(t, IsServiceNotFound(err))
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

func TestServiceAddress_Forbidden(t *testing.T) {
	cs := fake.NewSimpleClientset()
	cs.PrependReactor("get", "services", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewForbidden(schema.GroupResource{Resource: "services"}, "deep-research", errors.New("rbac"))
	})

	_, err := NewClientFromInterface(cs).ServiceAddress(context.Background(), "deep-research", "mcp")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
