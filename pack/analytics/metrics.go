package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/correlate"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// metricAnomaliesTool creates the get_metric_anomalies tool.
func metricAnomaliesTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("get_metric_anomalies").
		WithDescription("Flag metric samples whose z-score exceeds a threshold").
		ReadOnly().
		WithTags("metrics", "anomalies").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				Datapoints string  `json:"datapoints"`
				HoursBack  int     `json:"hours_back"`
				Threshold  float64 `json:"threshold"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultAnomalyHours)
			threshold := orDefaultF(req.Threshold, DefaultAnomalyThreshold)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			anomalies := []correlate.Anomaly{}
			sampleCounts := make(map[string]int, len(series))
			for _, dp := range sortedSeriesNames(series) {
				anomalies = append(anomalies, correlate.DetectAnomalies(dp, series[dp], threshold)...)
				sampleCounts[dp] = len(series[dp].Values)
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back":    hours,
				"threshold":     threshold,
				"sample_counts": sampleCounts,
				"anomaly_count": len(anomalies),
				"anomalies":     anomalies,
			}), nil
		}).
		MustBuild()
}

// correlateMetricsTool creates the correlate_metrics tool. The source
// count is validated before any fetch happens.
func correlateMetricsTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("correlate_metrics").
		WithDescription("Build a Pearson correlation matrix across metric sources").
		ReadOnly().
		WithTags("metrics", "correlation").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				Sources []struct {
					locatorInput
					Datapoint string `json:"datapoint"`
				} `json:"sources"`
				HoursBack int `json:"hours_back"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			if err := correlate.ValidateSourceCount(len(req.Sources)); err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultMatrixHours)

			seriesList := make([][]float64, 0, len(req.Sources))
			labels := make([]string, 0, len(req.Sources))
			for _, src := range req.Sources {
				loc, err := src.locator()
				if err != nil {
					return fail(err), nil
				}
				series, err := cfg.Metrics.FetchSeries(ctx, loc, src.Datapoint, hours)
				if err != nil {
					return fail(err), nil
				}
				s, ok := series[src.Datapoint]
				if !ok {
					s = firstSeries(series)
				}
				seriesList = append(seriesList, s.Values)
				labels = append(labels, fmt.Sprintf("%d:%s", loc.InstanceID, src.Datapoint))
			}

			result, err := correlate.BuildMatrix(seriesList, labels)
			if err != nil {
				return fail(err), nil
			}
			if result.Strong == nil {
				result.Strong = []correlate.StrongCorrelation{}
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back": hours,
				"labels":     labels,
				"matrix":     result,
			}), nil
		}).
		MustBuild()
}
