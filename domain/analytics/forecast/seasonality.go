package forecast

import (
	"fmt"
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// canonicalPeriodHours are the candidate cycle lengths probed for
// seasonality: hourly, 4-hourly, half-day, daily, and weekly.
var canonicalPeriodHours = []int{1, 4, 12, 24, 168}

// seasonalAutocorrCutoff is the autocorrelation above which the dominant
// period counts as a real seasonal pattern.
const seasonalAutocorrCutoff = 0.5

// defaultSampleInterval is assumed when the series carries too few
// timestamps to estimate one.
const defaultSampleInterval = 300.0

// Seasonality is the per-datapoint periodicity report.
type Seasonality struct {
	IsSeasonal         bool               `json:"is_seasonal"`
	DominantPeriod     string             `json:"dominant_period,omitempty"`
	MaxAutocorrelation float64            `json:"max_autocorrelation"`
	Correlations       map[string]float64 `json:"correlations"`
	PeakHours          []int              `json:"peak_hours"`
	SampleCount        int                `json:"sample_count"`
}

// DetectSeasonality probes the canonical periods, skipping any whose
// implied lag is below 1 or at least half the series length, and declares
// the series seasonal when the best autocorrelation clears the cutoff.
// Peak hours are the hour-of-day bins whose mean exceeds the overall mean.
func DetectSeasonality(series metric.Series) Seasonality {
	values := series.Values
	timestamps := series.Timestamps

	avgInterval := defaultSampleInterval
	if len(timestamps) >= 2 {
		avgInterval = float64(timestamps[len(timestamps)-1]-timestamps[0]) / float64(len(timestamps)-1)
	}

	correlations := make(map[string]float64)
	for _, ph := range canonicalPeriodHours {
		if avgInterval <= 0 {
			continue
		}
		lag := int(float64(ph) * 3600 / avgInterval)
		if lag < 1 || lag >= len(values)/2 {
			continue
		}
		correlations[fmt.Sprintf("%dh", ph)] = stats.Round(stats.Autocorrelation(values, lag), 4)
	}

	result := Seasonality{
		Correlations: correlations,
		PeakHours:    peakHours(values, timestamps),
		SampleCount:  len(values),
	}

	// Probe in canonical order so equal correlations resolve to the
	// shortest period.
	for _, ph := range canonicalPeriodHours {
		period := fmt.Sprintf("%dh", ph)
		ac, ok := correlations[period]
		if !ok {
			continue
		}
		if result.DominantPeriod == "" || ac > result.MaxAutocorrelation {
			result.DominantPeriod = period
			result.MaxAutocorrelation = ac
		}
	}
	result.IsSeasonal = result.DominantPeriod != "" && result.MaxAutocorrelation > seasonalAutocorrCutoff

	return result
}

// peakHours bins values by hour-of-day and returns the hours whose mean
// exceeds the overall mean, ascending.
func peakHours(values []float64, timestamps []int64) []int {
	if len(values) == 0 {
		return nil
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, v := range values {
		if i >= len(timestamps) {
			break
		}
		hour := int((timestamps[i] % 86400) / 3600)
		sums[hour] += v
		counts[hour]++
	}

	overall := stats.Mean(values)
	var peaks []int
	for hour, sum := range sums {
		if sum/float64(counts[hour]) > overall {
			peaks = append(peaks, hour)
		}
	}
	sort.Ints(peaks)
	return peaks
}
