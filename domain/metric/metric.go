// Package metric defines the metric-series model, the fetch collaborator,
// and the loader that normalizes raw platform data into per-datapoint
// series.
package metric

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
)

// NoDataSentinel is the magic string the platform emits for samples with
// no collected value.
const NoDataSentinel = "No Data"

// millisecondFloor is the magnitude above which a timestamp is assumed to
// be epoch milliseconds rather than seconds. Epoch seconds will not cross
// 1e12 until the year 33658.
const millisecondFloor = 1e12

// Locator identifies one monitored instance on the platform.
type Locator struct {
	DeviceID           int `json:"device_id"`
	DeviceDatasourceID int `json:"device_datasource_id"`
	InstanceID         int `json:"instance_id"`
}

// Table is the raw rectangular fetch result: rows are samples, columns
// are datapoints, with a parallel timestamp array of ambiguous unit.
type Table struct {
	// Datapoints is the column header row.
	Datapoints []string

	// Rows holds one sample per row; a cell is either a float64 or the
	// no-data sentinel string.
	Rows [][]any

	// Timestamps parallels Rows; units may be epoch seconds or epoch
	// milliseconds.
	Timestamps []int64
}

// Series is a cleaned per-datapoint value sequence. Values and Timestamps
// always have equal length; timestamps are epoch seconds.
type Series struct {
	Values     []float64 `json:"values"`
	Timestamps []int64   `json:"timestamps"`
}

// Fetcher is the external collaborator that retrieves raw metric tables.
type Fetcher interface {
	// FetchInstanceData returns the value table for an instance from
	// startEpoch onward. Datapoints is an optional comma-separated
	// allow-list.
	FetchInstanceData(ctx context.Context, loc Locator, datapoints string, startEpoch int64) (Table, error)
}

// Loader fetches and normalizes metric series. It is the single place
// where sentinel filtering and timestamp-unit detection happen.
type Loader struct {
	fetcher Fetcher

	// now is swappable for tests.
	now func() time.Time
}

// NewLoader creates a loader over the given fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher, now: time.Now}
}

// WithNow overrides the loader's clock. Intended for tests.
func (l *Loader) WithNow(now func() time.Time) *Loader {
	l.now = now
	return l
}

// FetchSeries retrieves the last hoursBack hours of data for an instance
// and transposes it into per-datapoint series. Sentinel cells are dropped
// together with their timestamps, independently per column. An empty
// table yields an empty map.
func (l *Loader) FetchSeries(ctx context.Context, loc Locator, datapoints string, hoursBack int) (map[string]Series, error) {
	startEpoch := l.now().Unix() - int64(hoursBack)*3600

	table, err := l.fetcher.FetchInstanceData(ctx, loc, datapoints, startEpoch)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch instance data: %v", analytics.ErrUpstream, err)
	}

	timestamps := NormalizeTimestamps(table.Timestamps)

	series := make(map[string]Series, len(table.Datapoints))
	for dpIdx, dpName := range table.Datapoints {
		var values []float64
		var ts []int64
		for i, row := range table.Rows {
			if dpIdx >= len(row) {
				continue
			}
			v, ok := numericCell(row[dpIdx])
			if !ok {
				continue
			}
			if i < len(timestamps) {
				values = append(values, v)
				ts = append(ts, timestamps[i])
			}
		}
		series[dpName] = Series{Values: values, Timestamps: ts}
	}

	return series, nil
}

// NormalizeTimestamps converts a raw timestamp array to epoch seconds,
// detecting millisecond input by magnitude.
func NormalizeTimestamps(raw []int64) []int64 {
	out := make([]int64, len(raw))
	for i, t := range raw {
		if float64(t) > millisecondFloor {
			out[i] = t / 1000
		} else {
			out[i] = t
		}
	}
	return out
}

// numericCell extracts a usable float from a raw table cell. The no-data
// sentinel, nulls, NaNs, and non-numeric cells are rejected.
func numericCell(cell any) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		if v != v { // NaN
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		// Covers NoDataSentinel and any other non-numeric marker.
		return 0, false
	default:
		return 0, false
	}
}
