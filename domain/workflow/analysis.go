// Package workflow tracks long-running analysis requests across tool
// calls so clients can start an analysis, poll it, and fetch the result
// later.
package workflow

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an analysis request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrAnalysisNotFound is returned when an analysis id is unknown or has
// expired.
var ErrAnalysisNotFound = errors.New("analysis not found")

// Analysis is one tracked analysis request.
type Analysis struct {
	// ID is the unique identifier handed back to the caller.
	ID string `json:"id"`

	// Kind names the analysis that was requested.
	Kind string `json:"kind"`

	// Params echoes the request parameters for later inspection.
	Params json.RawMessage `json:"params,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Result holds the analysis output once completed.
	Result json.RawMessage `json:"result,omitempty"`

	// Error holds the failure message once failed.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the request was accepted.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when execution began.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt is when execution completed or failed.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewAnalysis creates a pending analysis request with a fresh id.
func NewAnalysis(kind string, params json.RawMessage) *Analysis {
	return &Analysis{
		ID:        uuid.New().String(),
		Kind:      kind,
		Params:    params,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Start marks the analysis as running.
func (a *Analysis) Start() {
	now := time.Now().UTC()
	a.Status = StatusRunning
	a.StartedAt = &now
}

// Complete records the result and marks the analysis completed.
func (a *Analysis) Complete(result json.RawMessage) {
	now := time.Now().UTC()
	a.Status = StatusCompleted
	a.Result = result
	a.FinishedAt = &now
}

// Fail records the failure and marks the analysis failed.
func (a *Analysis) Fail(err error) {
	now := time.Now().UTC()
	a.Status = StatusFailed
	a.Error = err.Error()
	a.FinishedAt = &now
}

// Store persists analysis requests for the lifetime of a session.
// Put records a snapshot; implementations copy so concurrent readers
// never observe a partial update.
type Store interface {
	Put(a *Analysis)
	Get(id string) (*Analysis, error)
	Recent(limit int) []*Analysis
}
