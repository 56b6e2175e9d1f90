// Package forecast derives forward-looking signals from metric series:
// threshold-breach forecasts, CUSUM regime shifts, trend classification,
// and seasonality detection.
package forecast

import (
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// Trend labels the direction of a fitted series.
type Trend string

const (
	TrendStable     Trend = "stable"
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// slopeEpsilon is the magnitude below which a fitted slope counts as flat.
const slopeEpsilon = 1e-10

// Forecast is the per-datapoint regression result. Breach fields are nil
// when the fitted line never crosses the threshold in the future.
type Forecast struct {
	CurrentValue         float64  `json:"current_value"`
	Threshold            float64  `json:"threshold"`
	Trend                Trend    `json:"trend"`
	SlopePerHour         float64  `json:"slope_per_hour"`
	Intercept            float64  `json:"intercept"`
	RSquared             float64  `json:"r_squared"`
	DaysUntilBreach      *float64 `json:"days_until_breach"`
	PredictedBreachEpoch *int64   `json:"predicted_breach_epoch"`
	SampleCount          int      `json:"sample_count"`
}

// ForecastBreach fits a linear trend against hours since the first sample
// and, when the slope is nonzero, solves for the hour at which the line
// crosses threshold. A crossing is reported only when it lies strictly
// ahead of the last observed sample; a threshold already behind the trend
// yields no forecast rather than a negative answer.
func ForecastBreach(series metric.Series, threshold float64) (Forecast, error) {
	values := series.Values
	timestamps := series.Timestamps

	t0 := timestamps[0]
	xHours := make([]float64, len(timestamps))
	for i, ts := range timestamps {
		xHours[i] = float64(ts-t0) / 3600.0
	}

	fit, err := stats.LinearRegression(xHours, values)
	if err != nil {
		return Forecast{}, err
	}

	trend := TrendStable
	if fit.Slope > slopeEpsilon {
		trend = TrendIncreasing
	} else if fit.Slope < -slopeEpsilon {
		trend = TrendDecreasing
	}

	fc := Forecast{
		CurrentValue: stats.Round(values[len(values)-1], 4),
		Threshold:    threshold,
		Trend:        trend,
		SlopePerHour: stats.Round(fit.Slope, 6),
		Intercept:    stats.Round(fit.Intercept, 4),
		RSquared:     stats.Round(fit.RSquared, 4),
		SampleCount:  len(values),
	}

	if fit.Slope != 0 {
		hoursToBreach := (threshold - fit.Intercept) / fit.Slope
		currentHours := xHours[len(xHours)-1]
		remaining := hoursToBreach - currentHours

		if remaining > 0 {
			days := stats.Round(remaining/24.0, 2)
			epoch := timestamps[len(timestamps)-1] + int64(remaining*3600)
			fc.DaysUntilBreach = &days
			fc.PredictedBreachEpoch = &epoch
		}
	}

	return fc, nil
}

// ChangePoint is a detected regime shift mapped back to its timestamp.
type ChangePoint struct {
	Timestamp int64                 `json:"timestamp"`
	Direction stats.ChangeDirection `json:"direction"`
	Magnitude float64               `json:"magnitude"`
	Index     int                   `json:"index"`
}

// DetectChangePoints runs CUSUM over a series and maps each reported
// index to the original timestamps.
func DetectChangePoints(series metric.Series, sensitivity float64) []ChangePoint {
	raw := stats.CUSUM(series.Values, nil, sensitivity)
	points := make([]ChangePoint, 0, len(raw))
	for _, cp := range raw {
		var ts int64
		if cp.Index < len(series.Timestamps) {
			ts = series.Timestamps[cp.Index]
		}
		points = append(points, ChangePoint{
			Timestamp: ts,
			Direction: cp.Direction,
			Magnitude: cp.Magnitude,
			Index:     cp.Index,
		})
	}
	return points
}
