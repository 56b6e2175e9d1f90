package tool

import (
	"encoding/json"
	"time"
)

// Result contains the output of a tool execution.
type Result struct {
	// Output is the primary result data.
	Output json.RawMessage `json:"output"`

	// Duration is how long the execution took.
	Duration time.Duration `json:"duration"`

	// IsError marks the output as a structured error payload.
	IsError bool `json:"is_error,omitempty"`
}

// NewResult creates a successful result with the given output.
func NewResult(output json.RawMessage) Result {
	return Result{Output: output}
}

// NewJSONResult marshals v into a successful result.
func NewJSONResult(v any) Result {
	output, _ := json.Marshal(v)
	return Result{Output: output}
}

// NewErrorResult creates a result carrying a structured error payload.
// Tool-level failures are reported in-band so callers never see a raw
// transport exception.
func NewErrorResult(code, message string) Result {
	output, _ := json.Marshal(map[string]any{
		"error":   true,
		"code":    code,
		"message": message,
	})
	return Result{Output: output, IsError: true}
}

// OutputString returns the output as a string for convenience.
func (r Result) OutputString() string {
	return string(r.Output)
}
