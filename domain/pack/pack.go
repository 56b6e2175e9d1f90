// Package pack groups related tools for registration as a unit.
package pack

import (
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// Pack bundles tools that ship and register together.
type Pack struct {
	// Name identifies the pack.
	Name string

	// Description summarizes the pack for clients.
	Description string

	// Version is the pack's semantic version.
	Version string

	// Tools are the pack's members in registration order.
	Tools []tool.Tool

	// Metadata carries free-form pack details.
	Metadata map[string]string
}

// ToolNames lists the member tool names in order.
func (p *Pack) ToolNames() []string {
	names := make([]string, len(p.Tools))
	for i, t := range p.Tools {
		names[i] = t.Name()
	}
	return names
}

// GetTool finds a member tool by name.
func (p *Pack) GetTool(name string) (tool.Tool, bool) {
	for _, t := range p.Tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// RegisterAll adds every member tool to the registry, stopping at
// the first failure.
func (p *Pack) RegisterAll(reg tool.Registry) error {
	for _, t := range p.Tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Builder assembles a pack fluently.
type Builder struct {
	pack *Pack
}

// NewBuilder starts a builder for a pack with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		pack: &Pack{
			Name:     name,
			Tools:    make([]tool.Tool, 0),
			Metadata: make(map[string]string),
		},
	}
}

// WithDescription sets the client-facing summary.
func (b *Builder) WithDescription(desc string) *Builder {
	b.pack.Description = desc
	return b
}

// WithVersion sets the semantic version.
func (b *Builder) WithVersion(version string) *Builder {
	b.pack.Version = version
	return b
}

// AddTools appends member tools.
func (b *Builder) AddTools(tools ...tool.Tool) *Builder {
	b.pack.Tools = append(b.pack.Tools, tools...)
	return b
}

// WithMetadata records a free-form detail.
func (b *Builder) WithMetadata(key, value string) *Builder {
	b.pack.Metadata[key] = value
	return b
}

// Build finishes the pack.
func (b *Builder) Build() *Pack {
	return b.pack
}
