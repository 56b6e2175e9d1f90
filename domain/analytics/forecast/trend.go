package forecast

import (
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// Classification labels the behavior of a series.
type Classification string

const (
	ClassStable     Classification = "stable"
	ClassIncreasing Classification = "increasing"
	ClassDecreasing Classification = "decreasing"
	ClassCyclic     Classification = "cyclic"
	ClassVolatile   Classification = "volatile"
)

// Thresholds for the classification cascade.
const (
	volatileCVThreshold    = 0.5
	cyclicAutocorrCutoff   = 0.7
	trendRSquaredThreshold = 0.5
)

// TrendClassification is the per-datapoint classification with its
// supporting metrics.
type TrendClassification struct {
	Classification     Classification `json:"classification"`
	Confidence         float64        `json:"confidence"`
	SlopePerHour       float64        `json:"slope_per_hour"`
	VolatilityIndex    float64        `json:"volatility_index"`
	Autocorrelation24h float64        `json:"autocorrelation_24h"`
	RSquared           float64        `json:"r_squared"`
	SampleCount        int            `json:"sample_count"`
}

// ClassifyTrend runs the fixed-priority decision cascade: volatile by
// coefficient of variation, then cyclic by daily autocorrelation, then
// increasing/decreasing by regression fit, else stable. The 24h lag is
// derived from the observed average sample interval, never assumed.
func ClassifyTrend(series metric.Series) (TrendClassification, error) {
	values := series.Values
	timestamps := series.Timestamps

	cv := stats.CoefficientOfVariation(values)

	t0 := timestamps[0]
	xHours := make([]float64, len(timestamps))
	for i, ts := range timestamps {
		xHours[i] = float64(ts-t0) / 3600.0
	}
	fit, err := stats.LinearRegression(xHours, values)
	if err != nil {
		return TrendClassification{}, err
	}

	lag24 := lagForPeriod(timestamps, 86400)
	autocorr := stats.Autocorrelation(values, lag24)

	var class Classification
	var confidence float64
	absAC := autocorr
	if absAC < 0 {
		absAC = -absAC
	}

	switch {
	case cv > volatileCVThreshold:
		class = ClassVolatile
		confidence = cv
		if confidence > 1 {
			confidence = 1
		}
	case absAC > cyclicAutocorrCutoff:
		class = ClassCyclic
		confidence = absAC
	case fit.RSquared > trendRSquaredThreshold && fit.Slope > 0:
		class = ClassIncreasing
		confidence = fit.RSquared
	case fit.RSquared > trendRSquaredThreshold && fit.Slope < 0:
		class = ClassDecreasing
		confidence = fit.RSquared
	default:
		class = ClassStable
		confidence = 1 - cv
		if confidence < 0 {
			confidence = 0
		}
	}

	return TrendClassification{
		Classification:     class,
		Confidence:         stats.Round(confidence, 4),
		SlopePerHour:       stats.Round(fit.Slope, 6),
		VolatilityIndex:    stats.Round(cv, 4),
		Autocorrelation24h: stats.Round(autocorr, 4),
		RSquared:           stats.Round(fit.RSquared, 4),
		SampleCount:        len(values),
	}, nil
}

// lagForPeriod converts a period in seconds into a sample lag using the
// average observed interval. Falls back to 1 when intervals are unusable.
func lagForPeriod(timestamps []int64, periodSeconds float64) int {
	if len(timestamps) < 2 {
		return 1
	}
	avgInterval := float64(timestamps[len(timestamps)-1]-timestamps[0]) / float64(len(timestamps)-1)
	if avgInterval <= 0 {
		return 1
	}
	lag := int(periodSeconds / avgInterval)
	if lag < 1 {
		lag = 1
	}
	return lag
}
