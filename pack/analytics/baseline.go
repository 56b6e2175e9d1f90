package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/baseline"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// saveBaselineTool creates the save_baseline tool.
func saveBaselineTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("save_baseline").
		WithDescription("Snapshot per-datapoint statistics from a historical window under a name").
		ReadOnly().
		WithTags("metrics", "baseline").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				BaselineName string `json:"baseline_name"`
				Datapoints   string `json:"datapoints"`
				HoursBack    int    `json:"hours_back"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			if req.BaselineName == "" {
				return fail(fmt.Errorf("baseline_name is required: %w", analytics.ErrValidation)), nil
			}
			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultBaselineHours)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			b, err := baseline.Compute(req.BaselineName, series, hours, cfg.Now())
			if err != nil {
				return fail(err), nil
			}
			b.Locator = loc

			if err := cfg.Baselines.Save(req.BaselineName, b); err != nil {
				return fail(err), nil
			}

			return tool.NewJSONResult(map[string]any{
				"saved":    true,
				"baseline": b,
			}), nil
		}).
		MustBuild()
}

// compareBaselineTool creates the compare_to_baseline tool. The instance
// defaults to the one the baseline was saved from; any locator field in
// the request overrides it.
func compareBaselineTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("compare_to_baseline").
		WithDescription("Compare current metric behavior against a saved baseline").
		ReadOnly().
		WithTags("metrics", "baseline").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				BaselineName string `json:"baseline_name"`
				Datapoints   string `json:"datapoints"`
				HoursBack    int    `json:"hours_back"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			if req.BaselineName == "" {
				return fail(fmt.Errorf("baseline_name is required: %w", analytics.ErrValidation)), nil
			}
			b, ok := cfg.Baselines.Load(req.BaselineName)
			if !ok {
				return fail(fmt.Errorf("baseline %q not found: %w", req.BaselineName, analytics.ErrValidation)), nil
			}

			loc := b.Locator
			if req.DeviceID > 0 {
				loc.DeviceID = req.DeviceID
			}
			if req.DeviceDatasourceID > 0 {
				loc.DeviceDatasourceID = req.DeviceDatasourceID
			}
			if req.InstanceID > 0 {
				loc.InstanceID = req.InstanceID
			}
			if loc.DeviceID <= 0 || loc.DeviceDatasourceID <= 0 || loc.InstanceID <= 0 {
				return fail(fmt.Errorf("baseline carries no instance, pass device_id, device_datasource_id, and instance_id: %w", analytics.ErrValidation)), nil
			}
			hours := orDefault(req.HoursBack, DefaultCompareHours)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			comparisons := baseline.Compare(b, series)
			if comparisons == nil {
				comparisons = []baseline.DatapointComparison{}
			}

			return tool.NewJSONResult(map[string]any{
				"baseline_name":  req.BaselineName,
				"baseline_saved": b.CreatedAt,
				"hours_back":     hours,
				"comparisons":    comparisons,
			}), nil
		}).
		MustBuild()
}
