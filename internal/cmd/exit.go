// Package cmd provides command implementations for the drmcp CLI.
package cmd

// Exit codes. Each fatal pipeline stage has its own code so callers can tell
// which stage stopped the run.
const (
	// ExitSuccess indicates the command completed successfully. A deploy whose
	// endpoint poll timed out still exits 0 unless --require-endpoint is set.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitConfigError indicates an incomplete or malformed configuration.
	ExitConfigError = 2

	// ExitProvisioningError indicates the identity lookup or create failed.
	ExitProvisioningError = 3

	// ExitBuildError indicates the image build failed.
	ExitBuildError = 4

	// ExitPublishError indicates the image push failed after a good build.
	ExitPublishError = 5

	// ExitReleaseError indicates the chart release failed.
	ExitReleaseError = 6

	// ExitConnectivityError indicates the cluster could not be reached.
	ExitConnectivityError = 7

	// ExitEndpointTimeout indicates no external address was observed and the
	// caller required one.
	ExitEndpointTimeout = 8
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitConfigError:
		return "Configuration Error"
	case ExitProvisioningError:
		return "Provisioning Error"
	case ExitBuildError:
		return "Build Error"
	case ExitPublishError:
		return "Publish Error"
	case ExitReleaseError:
		return "Release Error"
	case ExitConnectivityError:
		return "Connectivity Error"
	case ExitEndpointTimeout:
		return "Endpoint Timeout"
	default:
		return "Unknown"
	}
}
