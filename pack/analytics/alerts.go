package analytics

import (
	"context"
	"encoding/json"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/correlate"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/scoring"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// correlateAlertsTool creates the correlate_alerts tool.
func correlateAlertsTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("correlate_alerts").
		WithDescription("Group active alerts into device, datasource, and temporal clusters").
		ReadOnly().
		WithTags("alerts", "correlation").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				HoursBack int    `json:"hours_back"`
				Device    string `json:"device"`
				GroupID   int    `json:"group_id"`
				Severity  string `json:"severity"`
				Limit     int    `json:"limit"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			hours := orDefault(req.HoursBack, DefaultCorrelationHours)
			limit := orDefault(req.Limit, DefaultAlertLimit)

			minSeverity, err := severityLevel(req.Severity)
			if err != nil {
				return fail(err), nil
			}

			filter := alert.Filter{
				StartEpoch:  cfg.Now().Unix() - int64(hours)*3600,
				MinSeverity: minSeverity,
				Device:      req.Device,
				GroupID:     req.GroupID,
				OpenOnly:    true,
			}
			alerts, err := cfg.Alerts.FetchAlerts(ctx, filter, limit)
			if err != nil {
				return fail(err), nil
			}

			clusters := correlate.ClusterAll(alerts)
			if clusters == nil {
				clusters = []correlate.Cluster{}
			}

			return tool.NewJSONResult(map[string]any{
				"hours_back":    hours,
				"total_alerts":  len(alerts),
				"cluster_count": len(clusters),
				"clusters":      clusters,
			}), nil
		}).
		MustBuild()
}

// alertStatisticsTool creates the get_alert_statistics tool.
func alertStatisticsTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("get_alert_statistics").
		WithDescription("Aggregate alert counts by severity, device, datasource, and time bucket").
		ReadOnly().
		WithTags("alerts", "statistics").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				HoursBack       int    `json:"hours_back"`
				Device          string `json:"device"`
				GroupID         int    `json:"group_id"`
				BucketSizeHours int    `json:"bucket_size_hours"`
				Limit           int    `json:"limit"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			hours := orDefault(req.HoursBack, DefaultStatisticsHours)
			bucketSize := orDefault(req.BucketSizeHours, 1)
			limit := orDefault(req.Limit, DefaultStatisticsLimit)
			now := cfg.Now().Unix()

			filter := alert.Filter{
				StartEpoch: now - int64(hours)*3600,
				Device:     req.Device,
				GroupID:    req.GroupID,
			}
			alerts, err := cfg.Alerts.FetchAlerts(ctx, filter, limit)
			if err != nil {
				return fail(err), nil
			}

			statistics := correlate.Aggregate(alerts, hours, bucketSize, now)

			return tool.NewJSONResult(map[string]any{
				"hours_back": hours,
				"statistics": statistics,
			}), nil
		}).
		MustBuild()
}

// alertNoiseTool creates the score_alert_noise tool. Cleared alerts are
// included in the fetch; flap detection needs them.
func alertNoiseTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("score_alert_noise").
		WithDescription("Score alert noisiness from entropy, flapping, and repeat patterns").
		ReadOnly().
		WithTags("alerts", "scoring", "noise").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				HoursBack int    `json:"hours_back"`
				Device    string `json:"device"`
				GroupID   int    `json:"group_id"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			hours := orDefault(req.HoursBack, DefaultNoiseHours)

			filter := alert.Filter{
				StartEpoch: cfg.Now().Unix() - int64(hours)*3600,
				Device:     req.Device,
				GroupID:    req.GroupID,
			}
			alerts, err := cfg.Alerts.FetchAlerts(ctx, filter, DefaultStatisticsLimit)
			if err != nil {
				return fail(err), nil
			}

			score := scoring.ScoreNoise(alerts)

			return tool.NewJSONResult(map[string]any{
				"hours_back": hours,
				"noise":      score,
			}), nil
		}).
		MustBuild()
}

// availabilityTool creates the calculate_availability tool.
func availabilityTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("calculate_availability").
		WithDescription("Compute per-device availability, downtime, and MTTR from alert history").
		ReadOnly().
		WithTags("alerts", "availability", "sla").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				DeviceID          int    `json:"device_id"`
				GroupID           int    `json:"group_id"`
				HoursBack         int    `json:"hours_back"`
				SeverityThreshold string `json:"severity_threshold"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			hours := orDefault(req.HoursBack, DefaultAvailabilityHours)
			threshold := req.SeverityThreshold
			if threshold == "" {
				threshold = "error"
			}
			minSeverity, err := severityLevel(threshold)
			if err != nil {
				return fail(err), nil
			}

			now := cfg.Now().Unix()
			filter := alert.Filter{
				StartEpoch:  now - int64(hours)*3600,
				MinSeverity: minSeverity,
				DeviceID:    req.DeviceID,
				GroupID:     req.GroupID,
			}
			alerts, err := cfg.Alerts.FetchAlerts(ctx, filter, DefaultStatisticsLimit)
			if err != nil {
				return fail(err), nil
			}

			report := scoring.ComputeAvailability(alerts, hours, now)

			return tool.NewJSONResult(map[string]any{
				"severity_threshold": threshold,
				"availability":       report,
			}), nil
		}).
		MustBuild()
}
