// Package analytics provides the alert and metric analytics tool pack.
// Every tool is read-only against the platform and reports failures
// in-band as structured JSON, never as a transport error.
package analytics

import (
	"time"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/baseline"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
	"github.com/pulsemon/pulsemon-mcp/domain/pack"
	"github.com/pulsemon/pulsemon-mcp/domain/workflow"
)

// Tool defaults. Windows follow the platform's retention sweet spots:
// short for correlation, a week for forecasting, 30 days for
// availability.
const (
	DefaultCorrelationHours  = 4
	DefaultStatisticsHours   = 24
	DefaultAnomalyHours      = 24
	DefaultMatrixHours       = 24
	DefaultTrendHours        = 24
	DefaultNoiseHours        = 24
	DefaultForecastHours     = 168
	DefaultSeasonalityHours  = 168
	DefaultAvailabilityHours = 720
	DefaultHealthHours       = 4
	DefaultBaselineHours     = 24
	DefaultCompareHours      = 1

	DefaultAnomalyThreshold = 2.0
	DefaultSensitivity      = 1.0
	DefaultAlertLimit       = 500
	DefaultStatisticsLimit  = 1000
	DefaultAnalysisLimit    = 20
)

// PackConfig configures the analytics pack.
type PackConfig struct {
	// Alerts fetches alert windows from the platform.
	Alerts alert.Fetcher

	// Metrics loads cleaned per-datapoint series.
	Metrics *metric.Loader

	// Baselines stores session-scoped baselines.
	Baselines baseline.Store

	// Analyses stores tracked analysis requests.
	Analyses workflow.Store

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// New creates the analytics pack with the given configuration.
func New(cfg PackConfig) *pack.Pack {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	runner := newAnalysisRunner(cfg)

	return pack.NewBuilder("analytics").
		WithDescription("Alert correlation, anomaly detection, forecasting, and scoring for monitored infrastructure").
		WithVersion("1.0.0").
		AddTools(
			correlateAlertsTool(cfg),
			alertStatisticsTool(cfg),
			metricAnomaliesTool(cfg),
			correlateMetricsTool(cfg),
			forecastMetricTool(cfg),
			changePointsTool(cfg),
			classifyTrendTool(cfg),
			seasonalityTool(cfg),
			alertNoiseTool(cfg),
			availabilityTool(cfg),
			deviceHealthTool(cfg),
			saveBaselineTool(cfg),
			compareBaselineTool(cfg),
			runAnalysisTool(cfg, runner),
			getAnalysisTool(cfg),
			listAnalysesTool(cfg),
		).
		Build()
}
