package tool

// Annotations describe tool behavior to clients and middleware.
type Annotations struct {
	// ReadOnly indicates the tool performs no writes against the platform.
	ReadOnly bool `json:"read_only"`

	// Idempotent indicates repeated calls with the same input are safe.
	Idempotent bool `json:"idempotent"`

	// Tags categorize the tool for discovery.
	Tags []string `json:"tags,omitempty"`
}

// CanRetry reports whether the tool is safe to retry on failure.
func (a Annotations) CanRetry() bool {
	return a.Idempotent || a.ReadOnly
}
