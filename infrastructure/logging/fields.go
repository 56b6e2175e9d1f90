package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for server and analytics logging.

// ToolName adds a tool name field.
func ToolName(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// Device adds a device display name field, skipping empty names.
func Device(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		if name == "" {
			return e
		}
		return e.Str("device", name)
	}
}

// DeviceID adds a numeric device id field, skipping unset ids.
func DeviceID(id int) Field {
	return func(e *bolt.Event) *bolt.Event {
		if id <= 0 {
			return e
		}
		return e.Int("device_id", id)
	}
}

// Datapoints adds a requested-datapoints field.
func Datapoints(csv string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("datapoints", csv)
	}
}

// SampleCount adds a metric sample count field.
func SampleCount(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("samples", n)
	}
}

// AlertCount adds an alert count field.
func AlertCount(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("alerts", n)
	}
}

// Endpoint adds a portal API endpoint field.
func Endpoint(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("endpoint", path)
	}
}

// StatusCode adds an HTTP status code field.
func StatusCode(code int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("status", code)
	}
}

// Attempt adds a retry attempt field.
func Attempt(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("attempt", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
