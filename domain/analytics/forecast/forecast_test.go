package forecast_test

import (
	"math"
	"testing"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/forecast"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// hourlySeries builds a series with one sample per hour starting at base.
func hourlySeries(base int64, values []float64) metric.Series {
	ts := make([]int64, len(values))
	for i := range values {
		ts[i] = base + int64(i)*3600
	}
	return metric.Series{Values: values, Timestamps: ts}
}

func TestForecastBreach(t *testing.T) {
	t.Parallel()

	base := int64(1700000000)

	t.Run("rising line predicts future breach", func(t *testing.T) {
		t.Parallel()
		// 1 unit per hour starting at 10; threshold 100 is 90 hours
		// from t0, 85 hours past the last of 6 samples.
		s := hourlySeries(base, []float64{10, 11, 12, 13, 14, 15})
		fc, err := forecast.ForecastBreach(s, 100)
		if err != nil {
			t.Fatalf("ForecastBreach() error = %v", err)
		}
		if fc.Trend != forecast.TrendIncreasing {
			t.Errorf("trend = %s, want increasing", fc.Trend)
		}
		if fc.DaysUntilBreach == nil {
			t.Fatal("DaysUntilBreach = nil, want a forecast")
		}
		wantDays := 85.0 / 24.0
		if math.Abs(*fc.DaysUntilBreach-stats.Round(wantDays, 2)) > 1e-9 {
			t.Errorf("DaysUntilBreach = %v, want %v", *fc.DaysUntilBreach, stats.Round(wantDays, 2))
		}
		if fc.PredictedBreachEpoch == nil {
			t.Fatal("PredictedBreachEpoch = nil")
		}
		wantEpoch := s.Timestamps[len(s.Timestamps)-1] + int64(85*3600)
		if *fc.PredictedBreachEpoch != wantEpoch {
			t.Errorf("PredictedBreachEpoch = %d, want %d", *fc.PredictedBreachEpoch, wantEpoch)
		}
	})

	t.Run("threshold behind the trend yields no forecast", func(t *testing.T) {
		t.Parallel()
		// Rising series, threshold below every value: the crossing is
		// in the past.
		s := hourlySeries(base, []float64{50, 51, 52, 53})
		fc, err := forecast.ForecastBreach(s, 10)
		if err != nil {
			t.Fatalf("ForecastBreach() error = %v", err)
		}
		if fc.DaysUntilBreach != nil || fc.PredictedBreachEpoch != nil {
			t.Errorf("forecast = %+v, want no breach fields", fc)
		}
	})

	t.Run("flat series is stable with no forecast", func(t *testing.T) {
		t.Parallel()
		s := hourlySeries(base, []float64{7, 7, 7, 7, 7})
		fc, err := forecast.ForecastBreach(s, 100)
		if err != nil {
			t.Fatalf("ForecastBreach() error = %v", err)
		}
		if fc.Trend != forecast.TrendStable {
			t.Errorf("trend = %s, want stable", fc.Trend)
		}
		if fc.DaysUntilBreach != nil {
			t.Errorf("DaysUntilBreach = %v, want nil", *fc.DaysUntilBreach)
		}
	})

	t.Run("decreasing trend toward lower threshold", func(t *testing.T) {
		t.Parallel()
		s := hourlySeries(base, []float64{100, 98, 96, 94})
		fc, err := forecast.ForecastBreach(s, 80)
		if err != nil {
			t.Fatalf("ForecastBreach() error = %v", err)
		}
		if fc.Trend != forecast.TrendDecreasing {
			t.Errorf("trend = %s, want decreasing", fc.Trend)
		}
		if fc.DaysUntilBreach == nil {
			t.Error("DaysUntilBreach = nil, want forecast of downward crossing")
		}
	})
}

func TestDetectChangePoints(t *testing.T) {
	t.Parallel()

	values := []float64{10, 10, 10, 10, 10, 30, 30, 30, 30, 30}
	s := hourlySeries(1700000000, values)

	points := forecast.DetectChangePoints(s, 1.0)
	if len(points) == 0 {
		t.Fatal("no change points on a step series")
	}
	for _, p := range points {
		if p.Index < 0 || p.Index >= len(values) {
			t.Errorf("index %d out of range", p.Index)
		}
		if p.Timestamp != s.Timestamps[p.Index] {
			t.Errorf("timestamp %d not mapped from index %d", p.Timestamp, p.Index)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	t.Parallel()

	base := int64(1700000000)

	t.Run("volatile wins the cascade", func(t *testing.T) {
		t.Parallel()
		s := hourlySeries(base, []float64{1, 100, 2, 95, 3, 110, 1, 90})
		got, err := forecast.ClassifyTrend(s)
		if err != nil {
			t.Fatalf("ClassifyTrend() error = %v", err)
		}
		if got.Classification != forecast.ClassVolatile {
			t.Errorf("classification = %s, want volatile (cv=%v)", got.Classification, got.VolatilityIndex)
		}
		if got.Confidence > 1 {
			t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
		}
	})

	t.Run("steady ramp is increasing", func(t *testing.T) {
		t.Parallel()
		values := make([]float64, 24)
		for i := range values {
			values[i] = 100 + float64(i)
		}
		got, err := forecast.ClassifyTrend(hourlySeries(base, values))
		if err != nil {
			t.Fatalf("ClassifyTrend() error = %v", err)
		}
		if got.Classification != forecast.ClassIncreasing {
			t.Errorf("classification = %s, want increasing", got.Classification)
		}
	})

	t.Run("steady decline is decreasing", func(t *testing.T) {
		t.Parallel()
		values := make([]float64, 24)
		for i := range values {
			values[i] = 200 - float64(i)
		}
		got, err := forecast.ClassifyTrend(hourlySeries(base, values))
		if err != nil {
			t.Fatalf("ClassifyTrend() error = %v", err)
		}
		if got.Classification != forecast.ClassDecreasing {
			t.Errorf("classification = %s, want decreasing", got.Classification)
		}
	})

	t.Run("flat noise is stable", func(t *testing.T) {
		t.Parallel()
		s := hourlySeries(base, []float64{50, 50.5, 49.5, 50.2, 49.8, 50.1, 49.9, 50})
		got, err := forecast.ClassifyTrend(s)
		if err != nil {
			t.Fatalf("ClassifyTrend() error = %v", err)
		}
		if got.Classification != forecast.ClassStable {
			t.Errorf("classification = %s, want stable", got.Classification)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("confidence = %v, want within [0,1]", got.Confidence)
		}
	})

	t.Run("daily sine is cyclic", func(t *testing.T) {
		t.Parallel()
		// 5-minute samples over 3 days, 24h period, small amplitude
		// around a high mean so cv stays low.
		n := 3 * 24 * 12
		values := make([]float64, n)
		ts := make([]int64, n)
		for i := range values {
			ts[i] = base + int64(i)*300
			values[i] = 100 + 10*math.Sin(2*math.Pi*float64(i)/(24*12))
		}
		got, err := forecast.ClassifyTrend(metric.Series{Values: values, Timestamps: ts})
		if err != nil {
			t.Fatalf("ClassifyTrend() error = %v", err)
		}
		if got.Classification != forecast.ClassCyclic {
			t.Errorf("classification = %s (ac24=%v), want cyclic", got.Classification, got.Autocorrelation24h)
		}
	})
}

func TestDetectSeasonality(t *testing.T) {
	t.Parallel()

	base := int64(1700000000)

	t.Run("daily cycle detected", func(t *testing.T) {
		t.Parallel()
		// Hourly samples over 2 weeks with a clean 24h cycle.
		n := 14 * 24
		values := make([]float64, n)
		ts := make([]int64, n)
		for i := range values {
			ts[i] = base + int64(i)*3600
			values[i] = 100 + 20*math.Sin(2*math.Pi*float64(i)/24)
		}
		got := forecast.DetectSeasonality(metric.Series{Values: values, Timestamps: ts})
		if !got.IsSeasonal {
			t.Fatalf("IsSeasonal = false, correlations = %v", got.Correlations)
		}
		if got.DominantPeriod != "24h" {
			t.Errorf("DominantPeriod = %s, want 24h", got.DominantPeriod)
		}
	})

	t.Run("random walkless flat series is not seasonal", func(t *testing.T) {
		t.Parallel()
		values := []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5}
		ts := make([]int64, len(values))
		for i := range ts {
			ts[i] = base + int64(i)*3600
		}
		got := forecast.DetectSeasonality(metric.Series{Values: values, Timestamps: ts})
		if got.IsSeasonal {
			t.Error("constant series reported seasonal")
		}
	})

	t.Run("short series skips all periods", func(t *testing.T) {
		t.Parallel()
		s := hourlySeries(base, []float64{1, 2, 3, 4})
		got := forecast.DetectSeasonality(s)
		if got.IsSeasonal {
			t.Error("4-point series reported seasonal")
		}
		if len(got.Correlations) != 1 {
			// Only the 1h lag (lag=1 < len/2=2) survives the skip rule.
			t.Errorf("correlations = %v, want only 1h", got.Correlations)
		}
	})

	t.Run("peak hours exceed overall mean", func(t *testing.T) {
		t.Parallel()
		// Day split into a quiet half and a busy half; timestamps start
		// at midnight UTC.
		base := int64(1700006400) - (int64(1700006400) % 86400)
		var values []float64
		var ts []int64
		for day := 0; day < 2; day++ {
			for hour := 0; hour < 24; hour++ {
				v := 10.0
				if hour >= 9 && hour < 17 {
					v = 90.0
				}
				values = append(values, v)
				ts = append(ts, base+int64(day)*86400+int64(hour)*3600)
			}
		}
		got := forecast.DetectSeasonality(metric.Series{Values: values, Timestamps: ts})
		want := []int{9, 10, 11, 12, 13, 14, 15, 16}
		if len(got.PeakHours) != len(want) {
			t.Fatalf("PeakHours = %v, want %v", got.PeakHours, want)
		}
		for i, h := range want {
			if got.PeakHours[i] != h {
				t.Fatalf("PeakHours = %v, want %v", got.PeakHours, want)
			}
		}
	})
}
