// Package baseline captures per-datapoint statistical baselines and
// compares later samples against them.
package baseline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// Deviation bands for Compare, in percent of the baseline mean.
const (
	NormalDeviationPercent   = 20.0
	ElevatedDeviationPercent = 50.0
)

// Comparison statuses.
const (
	StatusNormal    = "normal"
	StatusElevated  = "elevated"
	StatusReduced   = "reduced"
	StatusAnomalous = "anomalous"
)

// DatapointBaseline is the stored summary for one datapoint.
type DatapointBaseline struct {
	Mean        float64 `json:"mean"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	StdDev      float64 `json:"std_dev"`
	SampleCount int     `json:"sample_count"`
}

// Baseline is the full snapshot saved under a caller-chosen name.
type Baseline struct {
	Name        string                       `json:"name"`
	Locator     metric.Locator               `json:"locator"`
	CreatedAt   time.Time                    `json:"created_at"`
	WindowHours int                          `json:"window_hours"`
	Datapoints  map[string]DatapointBaseline `json:"datapoints"`
}

// Store persists baselines for the lifetime of a session.
type Store interface {
	Save(name string, b Baseline) error
	Load(name string) (Baseline, bool)
	Delete(name string) bool
	Names() []string
}

// Compute summarizes each series into a DatapointBaseline. Series with
// fewer than 2 samples are skipped; an entirely empty result is an
// ErrInsufficientData.
func Compute(name string, series map[string]metric.Series, windowHours int, now time.Time) (Baseline, error) {
	points := make(map[string]DatapointBaseline)
	for dp, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		minV, maxV := s.Values[0], s.Values[0]
		for _, v := range s.Values[1:] {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		points[dp] = DatapointBaseline{
			Mean:        stats.Round(stats.Mean(s.Values), 4),
			Min:         stats.Round(minV, 4),
			Max:         stats.Round(maxV, 4),
			StdDev:      stats.Round(stats.SampleStdDev(s.Values), 4),
			SampleCount: len(s.Values),
		}
	}
	if len(points) == 0 {
		return Baseline{}, fmt.Errorf("no datapoint has enough samples to baseline: %w", analytics.ErrInsufficientData)
	}
	return Baseline{
		Name:        name,
		CreatedAt:   now.UTC(),
		WindowHours: windowHours,
		Datapoints:  points,
	}, nil
}

// DatapointComparison reports how one datapoint's current mean sits
// against its baseline.
type DatapointComparison struct {
	Datapoint        string  `json:"datapoint"`
	BaselineMean     float64 `json:"baseline_mean"`
	CurrentMean      float64 `json:"current_mean"`
	DeviationPercent float64 `json:"deviation_percent"`
	Status           string  `json:"status"`
}

// Compare evaluates current series against a stored baseline. Deviation
// is the percent difference of the current mean from the baseline mean.
// A zero baseline mean with a nonzero current mean is always anomalous,
// since no finite percent deviation describes it. Datapoints missing on
// either side are skipped.
func Compare(b Baseline, current map[string]metric.Series) []DatapointComparison {
	var out []DatapointComparison
	for _, dp := range sortedSeriesKeys(current) {
		base, ok := b.Datapoints[dp]
		if !ok {
			continue
		}
		s := current[dp]
		if len(s.Values) == 0 {
			continue
		}
		currentMean := stats.Mean(s.Values)

		var deviation float64
		var status string
		if base.Mean == 0 {
			if currentMean == 0 {
				status = StatusNormal
			} else {
				status = StatusAnomalous
			}
		} else {
			deviation = (currentMean - base.Mean) / math.Abs(base.Mean) * 100
			switch {
			case math.Abs(deviation) <= NormalDeviationPercent:
				status = StatusNormal
			case math.Abs(deviation) <= ElevatedDeviationPercent && deviation > 0:
				status = StatusElevated
			case math.Abs(deviation) <= ElevatedDeviationPercent:
				status = StatusReduced
			default:
				status = StatusAnomalous
			}
		}
		out = append(out, DatapointComparison{
			Datapoint:        dp,
			BaselineMean:     base.Mean,
			CurrentMean:      stats.Round(currentMean, 4),
			DeviationPercent: stats.Round(deviation, 2),
			Status:           status,
		})
	}
	return out
}

func sortedSeriesKeys(series map[string]metric.Series) []string {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
