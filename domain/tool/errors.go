package tool

import "errors"

var (
	// ErrEmptyName reports a tool built without a name.
	ErrEmptyName = errors.New("tool name cannot be empty")

	// ErrNoHandler reports a tool built without a handler.
	ErrNoHandler = errors.New("tool has no handler")

	// ErrToolNotFound reports a lookup for an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolExists reports a name collision on registration.
	ErrToolExists = errors.New("tool already exists")
)
