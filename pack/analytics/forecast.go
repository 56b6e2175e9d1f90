package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/forecast"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// forecastMetricTool creates the forecast_metric tool.
func forecastMetricTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("forecast_metric").
		WithDescription("Fit a linear trend per datapoint and predict threshold breaches").
		ReadOnly().
		WithTags("metrics", "forecasting").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				Threshold  *float64 `json:"threshold"`
				Datapoints string   `json:"datapoints"`
				HoursBack  int      `json:"hours_back"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			if req.Threshold == nil {
				return fail(fmt.Errorf("threshold is required: %w", analytics.ErrValidation)), nil
			}
			hours := orDefault(req.HoursBack, DefaultForecastHours)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			forecasts := make(map[string]forecast.Forecast)
			var skipped []string
			for _, dp := range sortedSeriesNames(series) {
				s := series[dp]
				if len(s.Values) < 2 {
					skipped = append(skipped, dp)
					continue
				}
				fc, err := forecast.ForecastBreach(s, *req.Threshold)
				if err != nil {
					return fail(err), nil
				}
				forecasts[dp] = fc
			}
			if len(forecasts) == 0 {
				return fail(fmt.Errorf("no datapoint has enough samples to forecast: %w", analytics.ErrInsufficientData)), nil
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back": hours,
				"threshold":  *req.Threshold,
				"forecasts":  forecasts,
				"skipped":    skipped,
			}), nil
		}).
		MustBuild()
}

// changePointsTool creates the detect_change_points tool.
func changePointsTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("detect_change_points").
		WithDescription("Detect sustained mean shifts in metric series with CUSUM").
		ReadOnly().
		WithTags("metrics", "change-detection").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				Datapoints  string  `json:"datapoints"`
				HoursBack   int     `json:"hours_back"`
				Sensitivity float64 `json:"sensitivity"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultTrendHours)
			sensitivity := orDefaultF(req.Sensitivity, DefaultSensitivity)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			points := make(map[string][]forecast.ChangePoint, len(series))
			total := 0
			for _, dp := range sortedSeriesNames(series) {
				cps := forecast.DetectChangePoints(series[dp], sensitivity)
				if cps == nil {
					cps = []forecast.ChangePoint{}
				}
				points[dp] = cps
				total += len(cps)
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back":    hours,
				"sensitivity":   sensitivity,
				"total_changes": total,
				"change_points": points,
			}), nil
		}).
		MustBuild()
}

// classifyTrendTool creates the classify_trend tool.
func classifyTrendTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("classify_trend").
		WithDescription("Classify metric behavior as stable, trending, cyclic, or volatile").
		ReadOnly().
		WithTags("metrics", "trend").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				Datapoints string `json:"datapoints"`
				HoursBack  int    `json:"hours_back"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultTrendHours)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			trends := make(map[string]forecast.TrendClassification)
			var skipped []string
			for _, dp := range sortedSeriesNames(series) {
				s := series[dp]
				if len(s.Values) < 2 {
					skipped = append(skipped, dp)
					continue
				}
				tc, err := forecast.ClassifyTrend(s)
				if err != nil {
					return fail(err), nil
				}
				trends[dp] = tc
			}
			if len(trends) == 0 {
				return fail(fmt.Errorf("no datapoint has enough samples to classify: %w", analytics.ErrInsufficientData)), nil
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back": hours,
				"trends":     trends,
				"skipped":    skipped,
			}), nil
		}).
		MustBuild()
}

// seasonalityTool creates the detect_seasonality tool.
func seasonalityTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("detect_seasonality").
		WithDescription("Probe metric series for hourly through weekly cycles").
		ReadOnly().
		WithTags("metrics", "seasonality").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				Datapoints string `json:"datapoints"`
				HoursBack  int    `json:"hours_back"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultSeasonalityHours)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			seasonality := make(map[string]forecast.Seasonality, len(series))
			for _, dp := range sortedSeriesNames(series) {
				seasonality[dp] = forecast.DetectSeasonality(series[dp])
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back":  hours,
				"seasonality": seasonality,
			}), nil
		}).
		MustBuild()
}
