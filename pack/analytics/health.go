package analytics

import (
	"context"
	"encoding/json"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/scoring"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// deviceHealthTool creates the score_device_health tool.
func deviceHealthTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("score_device_health").
		WithDescription("Score device health from weighted z-scores of its latest samples").
		ReadOnly().
		WithTags("metrics", "scoring", "health").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				locatorInput
				Datapoints string             `json:"datapoints"`
				HoursBack  int                `json:"hours_back"`
				Weights    map[string]float64 `json:"weights"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			loc, err := req.locator()
			if err != nil {
				return fail(err), nil
			}
			hours := orDefault(req.HoursBack, DefaultHealthHours)

			series, err := cfg.Metrics.FetchSeries(ctx, loc, req.Datapoints, hours)
			if err != nil {
				return fail(err), nil
			}

			health := scoring.ScoreHealth(series, req.Weights)

			return tool.NewJSONResult(map[string]any{
				"hours_back": hours,
				"health":     health,
			}), nil
		}).
		MustBuild()
}
