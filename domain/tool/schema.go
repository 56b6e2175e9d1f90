package tool

import (
	"encoding/json"
	"errors"
)

// Schema carries a JSON Schema describing a tool's input or output.
type Schema struct {
	raw json.RawMessage
}

// NewSchema wraps raw JSON Schema text.
func NewSchema(raw json.RawMessage) Schema {
	return Schema{raw: raw}
}

// EmptySchema accepts any input.
func EmptySchema() Schema {
	return Schema{raw: json.RawMessage(`{}`)}
}

// ObjectSchema builds an object schema from property schemas and the
// list of required property names.
func ObjectSchema(properties map[string]json.RawMessage, required []string) Schema {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	raw, _ := json.Marshal(schema)
	return Schema{raw: raw}
}

// Raw exposes the underlying JSON.
func (s Schema) Raw() json.RawMessage {
	return s.raw
}

// IsEmpty reports whether the schema constrains nothing.
func (s Schema) IsEmpty() bool {
	return len(s.raw) == 0 || string(s.raw) == "{}" || string(s.raw) == "null"
}

// Validate checks data against the schema. An empty schema accepts
// anything well-formed.
func (s Schema) Validate(data json.RawMessage) error {
	if s.IsEmpty() {
		return nil
	}
	if !json.Valid(data) {
		return errors.New("invalid JSON")
	}
	return nil
}

func (s Schema) MarshalJSON() ([]byte, error) {
	if s.raw == nil {
		return []byte("{}"), nil
	}
	return s.raw, nil
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	s.raw = data
	return nil
}
