package tool

// Registry holds registered tools for lookup by the server.
// The in-memory implementation lives in infrastructure.
type Registry interface {
	// Register adds a tool, rejecting duplicate names.
	Register(tool Tool) error

	// Get looks a tool up by name.
	Get(name string) (Tool, bool)

	// List returns every registered tool.
	List() []Tool

	// Names returns every registered tool name.
	Names() []string
}
