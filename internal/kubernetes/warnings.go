package kubernetes

import (
	"k8s.io/client-go/rest"

	"github.com/deep-research-mcp/deployer/internal/output"
)

// Warning levels accepted by ClientOptions.APIWarnings.
const (
	WarningsWarn     = "warn"
	WarningsDebug    = "debug"
	WarningsSuppress = "suppress"
)

// warningLogger is the subset of the output package the handler writes to.
type warningLogger interface {
	Warn(msg string, keyvals ...interface{})
	Debug(msg string, keyvals ...interface{})
}

type outputLogger struct{}

func (outputLogger) Warn(msg string, keyvals ...interface{})  { output.Warn(msg, keyvals...) }
func (outputLogger) Debug(msg string, keyvals ...interface{}) { output.Debug(msg, keyvals...) }

// apiWarningHandler routes API server Warning headers (deprecations, policy
// notices on the Service read) through the drmcp logger instead of klog.
type apiWarningHandler struct {
	level string
	log   warningLogger
}

// newWarningHandler returns a handler for level. Unknown levels warn.
func newWarningHandler(level string) rest.WarningHandler {
	return &apiWarningHandler{level: level, log: outputLogger{}}
}

// HandleWarningHeader implements rest.WarningHandler.
func (h *apiWarningHandler) HandleWarningHeader(code int, agent string, text string) {
	if code != 299 || text == "" {
		return
	}

	switch h.level {
	case WarningsSuppress:
		return
	case WarningsDebug:
		h.log.Debug("kubernetes API warning", "text", text)
	default:
		h.log.Warn("kubernetes API warning", "text", text)
	}
}
