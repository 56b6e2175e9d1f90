package analytics

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
	"github.com/pulsemon/pulsemon-mcp/domain/tool"
)

// fail maps a domain error onto the in-band error payload.
func fail(err error) tool.Result {
	return tool.NewErrorResult(analytics.Code(err), err.Error())
}

// decode unmarshals tool input, treating empty input as an empty
// object so every parameter keeps its default.
func decode(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("invalid tool input: %w", analytics.ErrInvalidInput)
	}
	return nil
}

// locatorInput is the shared instance addressing block for metric
// tools.
type locatorInput struct {
	DeviceID           int `json:"device_id"`
	DeviceDatasourceID int `json:"device_datasource_id"`
	InstanceID         int `json:"instance_id"`
}

// locator validates the addressing block and converts it to a domain
// locator.
func (l locatorInput) locator() (metric.Locator, error) {
	if l.DeviceID <= 0 || l.DeviceDatasourceID <= 0 || l.InstanceID <= 0 {
		return metric.Locator{}, fmt.Errorf(
			"device_id, device_datasource_id, and instance_id are required: %w",
			analytics.ErrInvalidInput)
	}
	return metric.Locator{
		DeviceID:           l.DeviceID,
		DeviceDatasourceID: l.DeviceDatasourceID,
		InstanceID:         l.InstanceID,
	}, nil
}

// severityLevel resolves a severity name to its platform level. An
// empty name resolves to zero (no filter).
func severityLevel(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	level, ok := alert.SeverityLevels[name]
	if !ok {
		return 0, fmt.Errorf("unknown severity %q: %w", name, analytics.ErrInvalidInput)
	}
	return level, nil
}

// sortedSeriesNames returns the datapoint names of a series map in
// stable order.
func sortedSeriesNames(series map[string]metric.Series) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// firstSeries returns the first series of the map in stable name
// order, or an empty series when the map is empty. Used when a
// requested datapoint name does not match the platform's column header
// exactly.
func firstSeries(series map[string]metric.Series) metric.Series {
	names := sortedSeriesNames(series)
	if len(names) == 0 {
		return metric.Series{}
	}
	return series[names[0]]
}

// orDefault returns fallback when v is zero.
func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// orDefaultF returns fallback when v is zero.
func orDefaultF(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
