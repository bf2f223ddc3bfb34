package kubernetes

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ServiceAddress returns the first external address assigned to a
// LoadBalancer Service, preferring an IP over a hostname. It returns ""
// with a nil error while the load balancer is still provisioning.
func (c *Client) ServiceAddress(ctx context.Context, name, namespace string) (string, error) {
	svc, err := c.Clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", classify(err, name, namespace)
	}
	return ingressAddress(svc), nil
}

func ingressAddress(svc *corev1.Service) string {
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.IP != "" {
			return ing.IP
		}
	}
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.Hostname != "" {
			return ing.Hostname
		}
	}
	return ""
}
