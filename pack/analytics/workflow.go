package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/correlate"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
	"github.com/pulsemon/pulsemon-mcp/domain/workflow"
)

// Analysis kinds runnable through run_analysis.
const (
	KindAlertCorrelation = "alert_correlation"
	KindTopTalkers       = "top_talkers"
)

// newAnalysisRunner builds the workflow runner with the multi-step
// analysis kinds. The kinds call the analysis components directly
// rather than re-entering the tool surface.
func newAnalysisRunner(cfg PackConfig) *workflow.Runner {
	runner := workflow.NewRunner(cfg.Analyses)
	runner.RegisterKind(KindAlertCorrelation, alertCorrelationAnalysis(cfg))
	runner.RegisterKind(KindTopTalkers, topTalkersAnalysis(cfg))
	return runner
}

// alertCorrelationAnalysis clusters an alert window and aggregates its
// statistics in one pass.
func alertCorrelationAnalysis(cfg PackConfig) workflow.Func {
	return func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var args struct {
			HoursBack int    `json:"hours_back"`
			Device    string `json:"device"`
			GroupID   int    `json:"group_id"`
		}
		if err := decode(params, &args); err != nil {
			return nil, err
		}
		hours := orDefault(args.HoursBack, DefaultCorrelationHours)
		now := cfg.Now().Unix()

		filter := alert.Filter{
			StartEpoch: now - int64(hours)*3600,
			Device:     args.Device,
			GroupID:    args.GroupID,
			OpenOnly:   true,
		}
		alerts, err := cfg.Alerts.FetchAlerts(ctx, filter, DefaultAlertLimit)
		if err != nil {
			return nil, err
		}

		clusters := correlate.ClusterAll(alerts)
		if clusters == nil {
			clusters = []correlate.Cluster{}
		}
		statistics := correlate.Aggregate(alerts, hours, 1, now)

		return json.Marshal(map[string]any{
			"hours_back":   hours,
			"total_alerts": len(alerts),
			"clusters":     clusters,
			"statistics":   statistics,
		})
	}
}

// topTalkersAnalysis reports the devices and datasources producing the
// most alerts in a window.
func topTalkersAnalysis(cfg PackConfig) workflow.Func {
	return func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var args struct {
			HoursBack int `json:"hours_back"`
			GroupID   int `json:"group_id"`
		}
		if err := decode(params, &args); err != nil {
			return nil, err
		}
		hours := orDefault(args.HoursBack, DefaultStatisticsHours)
		now := cfg.Now().Unix()

		filter := alert.Filter{
			StartEpoch: now - int64(hours)*3600,
			GroupID:    args.GroupID,
		}
		alerts, err := cfg.Alerts.FetchAlerts(ctx, filter, DefaultStatisticsLimit)
		if err != nil {
			return nil, err
		}

		statistics := correlate.Aggregate(alerts, hours, 1, now)

		return json.Marshal(map[string]any{
			"hours_back":    hours,
			"total_alerts":  statistics.Total,
			"by_device":     statistics.ByDevice,
			"by_datasource": statistics.ByDatasource,
			"by_severity":   statistics.BySeverity,
		})
	}
}

// runAnalysisTool creates the run_analysis tool.
func runAnalysisTool(cfg PackConfig, runner *workflow.Runner) tool.Tool {
	return tool.NewBuilder("run_analysis").
		WithDescription("Start a multi-step analysis and return its id for polling").
		ReadOnly().
		WithTags("workflow", "analysis").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				Workflow  string          `json:"workflow"`
				Arguments json.RawMessage `json:"arguments"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}

			a, err := runner.Run(context.WithoutCancel(ctx), req.Workflow, req.Arguments)
			if err != nil {
				if errors.Is(err, workflow.ErrAnalysisNotFound) {
					return fail(fmt.Errorf("unknown workflow %q, available: %v: %w",
						req.Workflow, runner.Kinds(), analytics.ErrValidation)), nil
				}
				return fail(err), nil
			}

			return tool.NewJSONResult(a), nil
		}).
		MustBuild()
}

// getAnalysisTool creates the get_analysis tool.
func getAnalysisTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("get_analysis").
		WithDescription("Fetch the status and result of a started analysis").
		ReadOnly().
		WithTags("workflow", "analysis").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				AnalysisID string `json:"analysis_id"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}
			if req.AnalysisID == "" {
				return fail(fmt.Errorf("analysis_id is required: %w", analytics.ErrValidation)), nil
			}

			a, err := cfg.Analyses.Get(req.AnalysisID)
			if err != nil {
				return fail(fmt.Errorf("analysis %q not found: %w", req.AnalysisID, analytics.ErrValidation)), nil
			}

			return tool.NewJSONResult(a), nil
		}).
		MustBuild()
}

// listAnalysesTool creates the list_analyses tool.
func listAnalysesTool(cfg PackConfig) tool.Tool {
	return tool.NewBuilder("list_analyses").
		WithDescription("List recent analyses, newest first").
		ReadOnly().
		WithTags("workflow", "analysis").
		WithHandler(func(ctx context.Context, input json.RawMessage) (tool.Result, error) {
			var req struct {
				Limit int `json:"limit"`
			}
			if err := decode(input, &req); err != nil {
				return fail(err), nil
			}
			limit := orDefault(req.Limit, DefaultAnalysisLimit)

			analyses := cfg.Analyses.Recent(limit)
			if analyses == nil {
				analyses = []*workflow.Analysis{}
			}

			return tool.NewJSONResult(map[string]any{
				"count":    len(analyses),
				"analyses": analyses,
			}), nil
		}).
		MustBuild()
}
