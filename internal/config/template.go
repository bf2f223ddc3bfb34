package config

// DefaultConfigTemplate is written by `drmcp config init`.
const DefaultConfigTemplate = `# drmcp configuration
#
# Every key can be overridden with a DRMCP_<SECTION>_<KEY> environment
# variable (for example DRMCP_IMAGE_REPOSITORY) or the matching flag.

azure:
  # subscription: 00000000-0000-0000-0000-000000000000
  resourceGroup: ""
  # Region used only when the identity has to be created.
  location: eastus
  identityName: id-deep-research-mcp

image:
  # Registry repository without a tag, e.g. myregistry.azurecr.io/deep-research-mcp
  repository: ""
  context: .
  platforms:
    - linux/amd64
    - linux/arm64
  pullPolicy: Always

release:
  name: deep-research-mcp
  chart: ./chart
  namespace: default
  valuesFile: ./chart/values.yaml
  timeout: 5m

env:
  file: .env
  # Keys that must be present and non-empty before the release runs.
  # required:
  #   - PROJECT_ENDPOINT
  #   - MODEL_DEPLOYMENT_NAME
  #   - DEEP_RESEARCH_MODEL_DEPLOYMENT_NAME
  #   - BING_RESOURCE_NAME

endpoint:
  # Defaults to the release name.
  # service: deep-research-mcp
  attempts: 30
  interval: 10s
  port: 8001
  path: /mcp
  scheme: http

kubernetes:
  # kubeconfig: ~/.kube/config
  # context: my-aks-cluster
  # API server warnings: warn, debug, suppress
  apiWarnings: warn

log:
  timestamps: true
`
