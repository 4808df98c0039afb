package script

import (
	"io"

	"github.com/rocketship-ai/scriptstep/internal/plugins/script/executors"
	"github.com/rocketship-ai/scriptstep/internal/scriptsource"
)

// PluginType is the registered type of the system script step
const PluginType = "system-script"

// Build is the context of the build running a step
type Build struct {
	Workspace scriptsource.Workspace
	// Log is the build console. Nil discards output.
	Log io.Writer
}

// Outcome is the result of the last invocation of a step
type Outcome struct {
	InvocationID string
	Value        executors.Value
	Success      bool
	Err          error
}

// ActivityRequest represents the input to the system script activity
type ActivityRequest struct {
	Name      string                 `json:"name"`
	Plugin    string                 `json:"plugin"`
	Config    map[string]interface{} `json:"config"`
	Workspace string                 `json:"workspace"`
}

// ActivityResponse represents the output from the system script activity
type ActivityResponse struct {
	Name         string `json:"name"`
	InvocationID string `json:"invocation_id"`
	Success      bool   `json:"success"`
	Kind         string `json:"kind"`
	Result       string `json:"result,omitempty"`
	Log          string `json:"log,omitempty"`
}
