package scoring

import (
	"testing"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

func TestScoreNoiseEmptyWindow(t *testing.T) {
	t.Parallel()

	got := ScoreNoise(nil)
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if got.TotalAlerts != 0 {
		t.Errorf("TotalAlerts = %d, want 0", got.TotalAlerts)
	}
	if len(got.Recommendations) == 0 {
		t.Error("expected at least one recommendation for empty window")
	}
}

func TestScoreNoiseBounds(t *testing.T) {
	t.Parallel()

	// Every alert the same combo, each re-firing right after the previous
	// clears. Raw score would blow past 100 and must be capped.
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", Datasource: "CPU", Datapoint: "usage", StartEpoch: 0, EndEpoch: 60, Cleared: true},
		{ID: "a2", Device: "web-01", Datasource: "CPU", Datapoint: "usage", StartEpoch: 120, EndEpoch: 180, Cleared: true},
		{ID: "a3", Device: "web-01", Datasource: "CPU", Datapoint: "usage", StartEpoch: 240, EndEpoch: 300, Cleared: true},
		{ID: "a4", Device: "web-01", Datasource: "CPU", Datapoint: "usage", StartEpoch: 360, EndEpoch: 0},
	}
	got := ScoreNoise(alerts)
	if got.Score < 0 || got.Score > 100 {
		t.Fatalf("Score = %d, want within [0, 100]", got.Score)
	}
	if got.Score != 100 {
		t.Errorf("Score = %d, want capped at 100", got.Score)
	}
	if got.FlapCount != 3 {
		t.Errorf("FlapCount = %d, want 3", got.FlapCount)
	}
	if len(got.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

func TestScoreNoiseFlapDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		alerts []alert.Alert
		want   int
	}{
		{
			name: "refire within window after clear",
			alerts: []alert.Alert{
				{ID: "a1", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1000, EndEpoch: 1100, Cleared: true},
				{ID: "a2", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1200, EndEpoch: 0},
			},
			want: 1,
		},
		{
			name: "gap beyond window is not a flap",
			alerts: []alert.Alert{
				{ID: "a1", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1000, EndEpoch: 1100, Cleared: true},
				{ID: "a2", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1100 + FlapWindowSeconds, EndEpoch: 0},
			},
			want: 0,
		},
		{
			name: "open predecessor never flaps",
			alerts: []alert.Alert{
				{ID: "a1", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1000, EndEpoch: 0},
				{ID: "a2", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1200, EndEpoch: 0},
			},
			want: 0,
		},
		{
			name: "different datapoints do not pair",
			alerts: []alert.Alert{
				{ID: "a1", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 1000, EndEpoch: 1100, Cleared: true},
				{ID: "a2", Device: "db-01", Datasource: "Disk", Datapoint: "latency", StartEpoch: 1200, EndEpoch: 0},
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScoreNoise(tt.alerts)
			if got.FlapCount != tt.want {
				t.Errorf("FlapCount = %d, want %d", got.FlapCount, tt.want)
			}
		})
	}
}

func TestScoreNoiseQuietWindow(t *testing.T) {
	t.Parallel()

	// Distinct one-off alerts spread across combos: no flaps, no repeats.
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", Datasource: "CPU", Datapoint: "usage", StartEpoch: 0, EndEpoch: 100, Cleared: true},
		{ID: "a2", Device: "web-02", Datasource: "Memory", Datapoint: "used", StartEpoch: 5000, EndEpoch: 5100, Cleared: true},
		{ID: "a3", Device: "db-01", Datasource: "Disk", Datapoint: "iops", StartEpoch: 10000, EndEpoch: 0},
	}
	got := ScoreNoise(alerts)
	if got.FlapCount != 0 {
		t.Errorf("FlapCount = %d, want 0", got.FlapCount)
	}
	if got.RepeatRatio != 0 {
		t.Errorf("RepeatRatio = %v, want 0", got.RepeatRatio)
	}
	// Only entropy contributes, so the score stays at or below 40.
	if got.Score > 40 {
		t.Errorf("Score = %d, want <= 40 for a quiet window", got.Score)
	}
	if len(got.Recommendations) != 1 {
		t.Fatalf("Recommendations = %v, want single acceptable-levels note", got.Recommendations)
	}
}

func TestComputeAvailabilityNoAlerts(t *testing.T) {
	t.Parallel()

	got := ComputeAvailability(nil, 24, 200000)
	if got.AvailabilityPercent != 100 {
		t.Errorf("AvailabilityPercent = %v, want 100", got.AvailabilityPercent)
	}
	if got.IncidentCount != 0 || got.MTTRMinutes != 0 {
		t.Errorf("IncidentCount = %d, MTTRMinutes = %v, want both 0", got.IncidentCount, got.MTTRMinutes)
	}
}

func TestComputeAvailabilityOverlapMerge(t *testing.T) {
	t.Parallel()

	const now = int64(10000)
	// Window is [6400, 10000). Two overlapping alerts on web-01 merge to
	// [7000, 8200): 1200s down out of 3600s.
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", StartEpoch: 7000, EndEpoch: 7600, Cleared: true},
		{ID: "a2", Device: "web-01", StartEpoch: 7300, EndEpoch: 8200, Cleared: true},
	}
	got := ComputeAvailability(alerts, 1, now)
	if got.IncidentCount != 1 {
		t.Fatalf("IncidentCount = %d, want 1 after merge", got.IncidentCount)
	}
	if got.TotalDowntimeMinutes != 20 {
		t.Errorf("TotalDowntimeMinutes = %v, want 20", got.TotalDowntimeMinutes)
	}
	if got.AvailabilityPercent != 66.667 {
		t.Errorf("AvailabilityPercent = %v, want 66.667", got.AvailabilityPercent)
	}
	if got.MTTRMinutes != 20 {
		t.Errorf("MTTRMinutes = %v, want 20", got.MTTRMinutes)
	}
}

func TestComputeAvailabilityTouchingIntervalsMerge(t *testing.T) {
	t.Parallel()

	const now = int64(10000)
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", StartEpoch: 7000, EndEpoch: 7600, Cleared: true},
		{ID: "a2", Device: "web-01", StartEpoch: 7600, EndEpoch: 8000, Cleared: true},
	}
	got := ComputeAvailability(alerts, 1, now)
	if got.IncidentCount != 1 {
		t.Errorf("IncidentCount = %d, want 1 for touching intervals", got.IncidentCount)
	}
}

func TestComputeAvailabilityOpenAlertRunsToNow(t *testing.T) {
	t.Parallel()

	const now = int64(10000)
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", StartEpoch: 9400, EndEpoch: 0},
	}
	got := ComputeAvailability(alerts, 1, now)
	// 600s of a 3600s window.
	if got.TotalDowntimeMinutes != 10 {
		t.Errorf("TotalDowntimeMinutes = %v, want 10", got.TotalDowntimeMinutes)
	}
}

func TestComputeAvailabilityAggregateIsMinimum(t *testing.T) {
	t.Parallel()

	const now = int64(10000)
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", StartEpoch: 7000, EndEpoch: 8200, Cleared: true},
		{ID: "a2", Device: "web-02", StartEpoch: 9000, EndEpoch: 9360, Cleared: true},
	}
	got := ComputeAvailability(alerts, 1, now)
	if len(got.Devices) != 2 {
		t.Fatalf("Devices = %d, want 2", len(got.Devices))
	}
	if got.AvailabilityPercent != 66.667 {
		t.Errorf("AvailabilityPercent = %v, want worst device 66.667", got.AvailabilityPercent)
	}
	if got.MTTRMinutes != 13 {
		t.Errorf("MTTRMinutes = %v, want 13 (mean of 20 and 6)", got.MTTRMinutes)
	}
}

func TestComputeAvailabilityAlertOutsideWindow(t *testing.T) {
	t.Parallel()

	const now = int64(10000)
	alerts := []alert.Alert{
		{ID: "a1", Device: "web-01", StartEpoch: 1000, EndEpoch: 2000, Cleared: true},
	}
	got := ComputeAvailability(alerts, 1, now)
	if got.AvailabilityPercent != 100 {
		t.Errorf("AvailabilityPercent = %v, want 100 for pre-window alert", got.AvailabilityPercent)
	}
	if got.IncidentCount != 0 {
		t.Errorf("IncidentCount = %d, want 0", got.IncidentCount)
	}
}

func TestScoreHealthNoData(t *testing.T) {
	t.Parallel()

	got := ScoreHealth(nil, nil)
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if got.Status != StatusUnknown {
		t.Errorf("Status = %q, want %q", got.Status, StatusUnknown)
	}
}

func TestScoreHealthConstantSeries(t *testing.T) {
	t.Parallel()

	series := map[string]metric.Series{
		"cpu": {Values: []float64{50, 50, 50, 50}, Timestamps: []int64{0, 60, 120, 180}},
	}
	got := ScoreHealth(series, nil)
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100 for zero-variance series", got.Score)
	}
	if got.Status != StatusHealthy {
		t.Errorf("Status = %q, want %q", got.Status, StatusHealthy)
	}
	if got.Datapoints[0].ZScore != 0 {
		t.Errorf("ZScore = %v, want 0", got.Datapoints[0].ZScore)
	}
}

func TestScoreHealthDeviantLatest(t *testing.T) {
	t.Parallel()

	series := map[string]metric.Series{
		"cpu": {Values: []float64{10, 10, 10, 10, 40}, Timestamps: []int64{0, 60, 120, 180, 240}},
	}
	got := ScoreHealth(series, nil)
	// z = (40-16)/13.4164 = 1.7889, score = round(100 - 26.83) = 73.
	if got.Score != 73 {
		t.Errorf("Score = %d, want 73", got.Score)
	}
	if got.Status != StatusDegraded {
		t.Errorf("Status = %q, want %q", got.Status, StatusDegraded)
	}
}

func TestScoreHealthAllZeroWeights(t *testing.T) {
	t.Parallel()

	series := map[string]metric.Series{
		"cpu": {Values: []float64{10, 10, 10, 10, 40}, Timestamps: []int64{0, 60, 120, 180, 240}},
	}
	got := ScoreHealth(series, map[string]float64{"cpu": 0})
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100 when every weight is zero", got.Score)
	}
	if got.Status != StatusHealthy {
		t.Errorf("Status = %q, want %q", got.Status, StatusHealthy)
	}
	if len(got.Datapoints) != 1 {
		t.Fatalf("Datapoints = %d, want 1", len(got.Datapoints))
	}
}

func TestScoreHealthCriticalBand(t *testing.T) {
	t.Parallel()

	values := make([]float64, 21)
	for i := range values {
		values[i] = 10
	}
	values[20] = 100
	series := map[string]metric.Series{
		"latency": {Values: values},
	}
	got := ScoreHealth(series, nil)
	if got.Status != StatusCritical {
		t.Errorf("Status = %q (score %d), want %q", got.Status, got.Score, StatusCritical)
	}
	if got.Score < 0 || got.Score > 100 {
		t.Errorf("Score = %d, want within [0, 100]", got.Score)
	}
}

func TestScoreHealthWeights(t *testing.T) {
	t.Parallel()

	series := map[string]metric.Series{
		"flat":  {Values: []float64{5, 5, 5, 5, 5}},
		"spiky": {Values: []float64{10, 10, 10, 10, 40}},
	}
	unweighted := ScoreHealth(series, nil)
	weighted := ScoreHealth(series, map[string]float64{"spiky": 3})
	if weighted.Score >= unweighted.Score {
		t.Errorf("weighting the deviant datapoint should drop the score: weighted %d, unweighted %d",
			weighted.Score, unweighted.Score)
	}
	if len(weighted.Datapoints) != 2 {
		t.Fatalf("Datapoints = %d, want 2", len(weighted.Datapoints))
	}
}
