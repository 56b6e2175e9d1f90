// Package analytics holds the error taxonomy shared by every analysis
// component.
package analytics

import "errors"

// Error categories for analysis operations.
var (
	// ErrInvalidInput indicates malformed arguments to a primitive,
	// such as mismatched series lengths or too few points.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData indicates input that is valid but too sparse
	// to compute a meaningful result.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUpstream indicates a failure from a fetch collaborator.
	ErrUpstream = errors.New("upstream failure")

	// ErrValidation indicates a request-shape violation caught before
	// any fetch is attempted.
	ErrValidation = errors.New("validation error")
)

// Code maps an error to the stable code reported in error payloads.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInsufficientData):
		return "INSUFFICIENT_DATA"
	case errors.Is(err, ErrUpstream):
		return "UPSTREAM_FAILURE"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
