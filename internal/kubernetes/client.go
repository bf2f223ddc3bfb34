// Package kubernetes provides the read-only cluster access drmcp needs to
// observe a deployed workload.
package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	oerrors "github.com/deep-research-mcp/deployer/internal/errors"
	"github.com/deep-research-mcp/deployer/internal/output"
)

// ClientOptions configures Kubernetes client creation.
type ClientOptions struct {
	// Kubeconfig is the path to the kubeconfig file.
	// Precedence: this field > DRMCP_KUBECONFIG env > KUBECONFIG env > ~/.kube/config
	Kubeconfig string

	// Context is the Kubernetes context to use.
	// If empty, uses the current-context from kubeconfig.
	Context string

	// APIWarnings selects how API server warnings are logged:
	// warn (default), debug, or suppress.
	APIWarnings string
}

// Client wraps the typed Kubernetes clientset.
type Client struct {
	Clientset kubernetes.Interface

	// RestConfig is the underlying REST configuration.
	RestConfig *rest.Config
}

// cachedClient stores the singleton client for reuse within a command.
var (
	cachedClient *Client
	clientMu     sync.Mutex
)

// NewClient creates a Kubernetes client with the given options.
// The client is cached for reuse within the same command invocation.
func NewClient(opts ClientOptions) (*Client, error) {
	clientMu.Lock()
	defer clientMu.Unlock()

	if cachedClient != nil {
		return cachedClient, nil
	}

	restConfig, err := buildRestConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w",
			oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}
	restConfig.WarningHandler = newWarningHandler(opts.APIWarnings)

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w",
			oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}

	cachedClient = &Client{
		Clientset:  clientset,
		RestConfig: restConfig,
	}

	return cachedClient, nil
}

// NewClientFromInterface wraps an existing clientset, typically a fake.
func NewClientFromInterface(cs kubernetes.Interface) *Client {
	return &Client{Clientset: cs}
}

// ResetClient clears the cached client. Used for testing.
func ResetClient() {
	clientMu.Lock()
	defer clientMu.Unlock()
	cachedClient = nil
}

// ResolveKubeconfig returns the kubeconfig path that NewClient would load.
// The release driver is pointed at the same file.
func ResolveKubeconfig(flagValue string) string {
	return resolveKubeconfig(flagValue)
}

func buildRestConfig(opts ClientOptions) (*rest.Config, error) {
	loadingRules := &clientcmd.ClientConfigLoadingRules{
		ExplicitPath: resolveKubeconfig(opts.Kubeconfig),
	}

	overrides := &clientcmd.ConfigOverrides{}
	if opts.Context != "" {
		overrides.CurrentContext = opts.Context
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
}

// resolveKubeconfig resolves kubeconfig path with precedence:
// flag > DRMCP_KUBECONFIG > KUBECONFIG > ~/.kube/config
func resolveKubeconfig(flagValue string) string {
	var path string

	switch {
	case flagValue != "":
		path = flagValue
	case os.Getenv("DRMCP_KUBECONFIG") != "":
		path = os.Getenv("DRMCP_KUBECONFIG")
	case os.Getenv("KUBECONFIG") != "":
		path = os.Getenv("KUBECONFIG")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, ".kube", "config")
	}

	return expandTilde(path)
}

// expandTilde expands a leading ~ or ~/ to the user's home directory.
// ~username forms are returned unchanged.
func expandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}
	if len(path) > 1 && path[1] == '/' {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// CheckConnectivity verifies the API server answers with our credentials.
func (c *Client) CheckConnectivity() error {
	v, err := c.Clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("contacting cluster: %w", oerrors.Wrap(oerrors.ErrConnectivity, err.Error()))
	}
	output.Debug("cluster reachable", "version", v.GitVersion)
	return nil
}
