// Package alert defines the alert record model and the fetch collaborator
// consumed by the analytics components.
package alert

import "context"

// Severity levels as reported by the monitoring platform.
const (
	SeverityInfo     = 1
	SeverityWarning  = 2
	SeverityError    = 3
	SeverityCritical = 4
)

// SeverityNames maps platform severity integers to names.
var SeverityNames = map[int]string{
	SeverityCritical: "critical",
	SeverityError:    "error",
	SeverityWarning:  "warning",
	SeverityInfo:     "info",
}

// SeverityLevels maps severity names to platform integers.
var SeverityLevels = map[string]int{
	"critical": SeverityCritical,
	"error":    SeverityError,
	"warning":  SeverityWarning,
	"info":     SeverityInfo,
}

// Alert is an immutable snapshot of a platform alert. EndEpoch of 0 means
// the alert is still open.
type Alert struct {
	ID         string `json:"id"`
	Severity   int    `json:"severity"`
	Device     string `json:"device"`
	Datasource string `json:"datasource"`
	Datapoint  string `json:"datapoint"`
	StartEpoch int64  `json:"start_epoch"`
	EndEpoch   int64  `json:"end_epoch"`
	Cleared    bool   `json:"cleared"`
}

// Filter expresses an alert query against the platform.
type Filter struct {
	// StartEpoch restricts results to alerts starting at or after this time.
	StartEpoch int64

	// MinSeverity restricts results to alerts at or above this severity.
	// Zero means no severity filter.
	MinSeverity int

	// ExactSeverity restricts results to exactly this severity.
	// Zero means no exact filter.
	ExactSeverity int

	// Device is an optional device-name substring filter.
	Device string

	// DeviceID is an optional numeric device filter. Zero means unset.
	DeviceID int

	// GroupID is an optional device-group filter. Zero means unset.
	GroupID int

	// OpenOnly restricts results to uncleared alerts.
	OpenOnly bool
}

// Fetcher is the external collaborator that retrieves alerts. The
// analytics core only consumes the resulting list.
type Fetcher interface {
	// FetchAlerts returns up to limit alerts matching the filter.
	FetchAlerts(ctx context.Context, filter Filter, limit int) ([]Alert, error)
}
