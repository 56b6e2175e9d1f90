// Package tool defines the callable-tool abstraction exposed over MCP.
package tool

import (
	"context"
	"encoding/json"
)

// Tool is a callable capability exposed to MCP clients.
type Tool interface {
	// Name is the stable identifier clients call the tool by.
	Name() string

	// Description tells clients what the tool does.
	Description() string

	// InputSchema describes the expected input.
	InputSchema() Schema

	// Annotations describe read-only and retry behavior.
	Annotations() Annotations

	// Execute runs the tool against raw JSON input.
	Execute(ctx context.Context, input json.RawMessage) (Result, error)
}

// Handler executes a tool call.
type Handler func(ctx context.Context, input json.RawMessage) (Result, error)

// Definition is the concrete Tool built by Builder.
type Definition struct {
	name        string
	description string
	inputSchema Schema
	annotations Annotations
	handler     Handler
}

// Name returns the tool's identifier.
func (d *Definition) Name() string {
	return d.name
}

// Description returns the client-facing description.
func (d *Definition) Description() string {
	return d.description
}

// InputSchema returns the declared input schema.
func (d *Definition) InputSchema() Schema {
	return d.inputSchema
}

// Annotations returns the behavioral annotations.
func (d *Definition) Annotations() Annotations {
	return d.annotations
}

// Execute invokes the handler.
func (d *Definition) Execute(ctx context.Context, input json.RawMessage) (Result, error) {
	if d.handler == nil {
		return Result{}, ErrNoHandler
	}
	return d.handler(ctx, input)
}

// Builder assembles a tool definition fluently.
type Builder struct {
	def *Definition
}

// NewBuilder starts a builder for a tool with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		def: &Definition{name: name},
	}
}

// WithDescription sets the client-facing description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.def.description = desc
	return b
}

// WithInputSchema declares the input schema.
func (b *Builder) WithInputSchema(schema Schema) *Builder {
	b.def.inputSchema = schema
	return b
}

// ReadOnly marks the tool as performing no platform writes.
func (b *Builder) ReadOnly() *Builder {
	b.def.annotations.ReadOnly = true
	return b
}

// Idempotent marks repeated calls with the same input as safe.
func (b *Builder) Idempotent() *Builder {
	b.def.annotations.Idempotent = true
	return b
}

// WithTags attaches discovery tags.
func (b *Builder) WithTags(tags ...string) *Builder {
	b.def.annotations.Tags = append(b.def.annotations.Tags, tags...)
	return b
}

// WithHandler sets the execution handler.
func (b *Builder) WithHandler(handler Handler) *Builder {
	b.def.handler = handler
	return b
}

// Build finishes the definition, rejecting unnamed or handlerless tools.
func (b *Builder) Build() (Tool, error) {
	if b.def.name == "" {
		return nil, ErrEmptyName
	}
	if b.def.handler == nil {
		return nil, ErrNoHandler
	}
	return b.def, nil
}

// MustBuild is Build for tools wired at startup; it panics on error.
func (b *Builder) MustBuild() Tool {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
