package correlate_test

import (
	"errors"
	"testing"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/correlate"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

func mkAlert(id, device, ds string, start int64) alert.Alert {
	return alert.Alert{
		ID:         id,
		Severity:   alert.SeverityError,
		Device:     device,
		Datasource: ds,
		Datapoint:  ds + "Usage",
		StartEpoch: start,
	}
}

func TestClusteringScenario(t *testing.T) {
	t.Parallel()

	// Two alerts on device A inside one temporal window, a third on B
	// two hours later sharing the CPU datasource with the first.
	alerts := []alert.Alert{
		mkAlert("1", "A", "CPU", 0),
		mkAlert("2", "A", "Mem", 60),
		mkAlert("3", "B", "CPU", 7200),
	}

	device := correlate.ClusterByDevice(alerts)
	if len(device) != 1 {
		t.Fatalf("device clusters = %d, want 1", len(device))
	}
	if device[0].Key != "A" || device[0].Count != 2 {
		t.Errorf("device cluster = %+v, want key A count 2", device[0])
	}

	ds := correlate.ClusterByDatasource(alerts)
	if len(ds) != 1 {
		t.Fatalf("datasource clusters = %d, want 1", len(ds))
	}
	if ds[0].Key != "CPU" || ds[0].Count != 2 {
		t.Errorf("datasource cluster = %+v, want key CPU count 2", ds[0])
	}
	if len(ds[0].Devices) != 2 || ds[0].Devices[0] != "A" || ds[0].Devices[1] != "B" {
		t.Errorf("datasource devices = %v, want [A B]", ds[0].Devices)
	}

	temporal := correlate.ClusterByTime(alerts)
	if len(temporal) != 1 {
		t.Fatalf("temporal clusters = %d, want 1", len(temporal))
	}
	if temporal[0].Count != 2 || temporal[0].FirstAlertTime != 0 || temporal[0].LastAlertTime != 60 {
		t.Errorf("temporal cluster = %+v", temporal[0])
	}
}

func TestClusterByTimeChainedWindow(t *testing.T) {
	t.Parallel()

	// Each alert is 250s after the previous one; the chain spans 1000s,
	// far past a single 300s window, but gaps never exceed it.
	alerts := []alert.Alert{
		mkAlert("1", "A", "CPU", 0),
		mkAlert("2", "B", "CPU", 250),
		mkAlert("3", "C", "CPU", 500),
		mkAlert("4", "D", "CPU", 750),
		mkAlert("5", "E", "CPU", 1000),
	}

	clusters := correlate.ClusterByTime(alerts)
	if len(clusters) != 1 {
		t.Fatalf("chained sweep produced %d clusters, want 1", len(clusters))
	}
	if clusters[0].Count != 5 {
		t.Errorf("cluster count = %d, want 5", clusters[0].Count)
	}
}

func TestClusterByTimeFlushesFinalGroup(t *testing.T) {
	t.Parallel()

	alerts := []alert.Alert{
		mkAlert("1", "A", "CPU", 0),
		mkAlert("2", "B", "CPU", 5000),
		mkAlert("3", "C", "CPU", 5100),
	}

	clusters := correlate.ClusterByTime(alerts)
	if len(clusters) != 1 {
		t.Fatalf("clusters = %d, want 1 (final group flushed)", len(clusters))
	}
	if clusters[0].FirstAlertTime != 5000 {
		t.Errorf("flushed group start = %d, want 5000", clusters[0].FirstAlertTime)
	}
	if clusters[0].Key != "window_5000" {
		t.Errorf("key = %q, want window_5000", clusters[0].Key)
	}
}

func TestClusterOrdering(t *testing.T) {
	t.Parallel()

	var alerts []alert.Alert
	for i := 0; i < 5; i++ {
		alerts = append(alerts, mkAlert("a", "big", "CPU", int64(i)))
	}
	for i := 0; i < 2; i++ {
		alerts = append(alerts, mkAlert("b", "small", "Mem", int64(i)))
	}

	clusters := correlate.ClusterByDevice(alerts)
	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
	if clusters[0].Key != "big" || clusters[1].Key != "small" {
		t.Errorf("ordering = [%s %s], want descending count", clusters[0].Key, clusters[1].Key)
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()

	st := correlate.Aggregate(nil, 24, 1, 1700000000)
	if st.Total != 0 {
		t.Errorf("Total = %d, want 0", st.Total)
	}
	if len(st.TimeBuckets) != 24 {
		t.Errorf("buckets = %d, want 24", len(st.TimeBuckets))
	}
	for name, count := range st.BySeverity {
		if count != 0 {
			t.Errorf("severity %s = %d, want 0", name, count)
		}
	}
}

func TestAggregateBuckets(t *testing.T) {
	t.Parallel()

	now := int64(1700000000)
	start := now - 4*3600

	alerts := []alert.Alert{
		mkAlert("1", "A", "CPU", start),        // first bucket, inclusive lower bound
		mkAlert("2", "A", "CPU", start+3599),   // still first bucket
		mkAlert("3", "B", "Mem", start+3600),   // second bucket, exclusive upper bound
		mkAlert("4", "B", "Mem", start+4*3600), // past the window end
	}

	st := correlate.Aggregate(alerts, 4, 1, now)
	if len(st.TimeBuckets) != 4 {
		t.Fatalf("buckets = %d, want 4", len(st.TimeBuckets))
	}
	if st.TimeBuckets[0].Count != 2 {
		t.Errorf("bucket 0 = %d, want 2", st.TimeBuckets[0].Count)
	}
	if st.TimeBuckets[1].Count != 1 {
		t.Errorf("bucket 1 = %d, want 1", st.TimeBuckets[1].Count)
	}
	if st.TimeBuckets[3].Count != 0 {
		t.Errorf("bucket 3 = %d, want 0 (window end is exclusive)", st.TimeBuckets[3].Count)
	}
	if st.BySeverity["error"] != 4 {
		t.Errorf("error count = %d, want 4", st.BySeverity["error"])
	}
}

func TestAggregateCeilBucketCount(t *testing.T) {
	t.Parallel()

	st := correlate.Aggregate(nil, 25, 4, 1700000000)
	if len(st.TimeBuckets) != 7 {
		t.Errorf("buckets = %d, want ceil(25/4) = 7", len(st.TimeBuckets))
	}
}

func TestDetectAnomalies(t *testing.T) {
	t.Parallel()

	t.Run("constant series never anomalous", func(t *testing.T) {
		t.Parallel()
		s := metric.Series{
			Values:     []float64{5, 5, 5, 5, 5},
			Timestamps: []int64{0, 60, 120, 180, 240},
		}
		if got := correlate.DetectAnomalies("cpu", s, 0.0001); got != nil {
			t.Errorf("constant series anomalies = %v, want none", got)
		}
	})

	t.Run("single point skipped", func(t *testing.T) {
		t.Parallel()
		s := metric.Series{Values: []float64{99}, Timestamps: []int64{0}}
		if got := correlate.DetectAnomalies("cpu", s, 2.0); got != nil {
			t.Errorf("single point anomalies = %v, want none", got)
		}
	})

	t.Run("spike flagged with statistics", func(t *testing.T) {
		t.Parallel()
		values := []float64{50, 50, 50, 50, 50, 50, 50, 50, 50, 200}
		ts := make([]int64, len(values))
		for i := range ts {
			ts[i] = int64(i * 300)
		}
		got := correlate.DetectAnomalies("cpu", metric.Series{Values: values, Timestamps: ts}, 2.0)
		if len(got) != 1 {
			t.Fatalf("anomalies = %v, want exactly the spike", got)
		}
		a := got[0]
		if a.Value != 200 || a.Timestamp != 9*300 || a.Datapoint != "cpu" {
			t.Errorf("anomaly = %+v", a)
		}
		if a.ZScore <= 2.0 {
			t.Errorf("z-score = %v, want > threshold", a.ZScore)
		}
	})
}

func TestValidateSourceCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: 1, wantErr: true},
		{n: 2}, {n: 10},
		{n: 11, wantErr: true},
	}
	for _, tt := range tests {
		err := correlate.ValidateSourceCount(tt.n)
		if tt.wantErr && !errors.Is(err, analytics.ErrValidation) {
			t.Errorf("ValidateSourceCount(%d) = %v, want ErrValidation", tt.n, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ValidateSourceCount(%d) = %v, want nil", tt.n, err)
		}
	}
}

func TestBuildMatrix(t *testing.T) {
	t.Parallel()

	t.Run("perfectly related pair", func(t *testing.T) {
		t.Parallel()
		a := []float64{10, 15, 20, 25, 30}
		b := []float64{20, 30, 40, 50, 60}

		res, err := correlate.BuildMatrix([][]float64{a, b}, []string{"cpu@1", "cpu@2"})
		if err != nil {
			t.Fatalf("BuildMatrix() error = %v", err)
		}
		if res.Matrix[0][0] != 1.0 || res.Matrix[1][1] != 1.0 {
			t.Errorf("diagonal = %v", res.Matrix)
		}
		if res.Matrix[0][1] != 1.0 {
			t.Errorf("off-diagonal = %v, want 1.0", res.Matrix[0][1])
		}
		if len(res.Strong) != 1 || res.Strong[0].Relationship != "strong_positive" {
			t.Errorf("strong = %+v, want one strong_positive pair", res.Strong)
		}
	})

	t.Run("inverse pair is strong_negative", func(t *testing.T) {
		t.Parallel()
		a := []float64{10, 15, 20, 25, 30}
		b := []float64{100, 95, 90, 85, 80}

		res, err := correlate.BuildMatrix([][]float64{a, b}, []string{"up", "down"})
		if err != nil {
			t.Fatalf("BuildMatrix() error = %v", err)
		}
		if res.Matrix[0][1] != -1.0 {
			t.Errorf("off-diagonal = %v, want -1.0", res.Matrix[0][1])
		}
		if len(res.Strong) != 1 || res.Strong[0].Relationship != "strong_negative" {
			t.Errorf("strong = %+v", res.Strong)
		}
	})

	t.Run("positional truncation to shortest", func(t *testing.T) {
		t.Parallel()
		a := []float64{1, 2, 3, 4, 5, 6, 7, 8}
		b := []float64{2, 4, 6}

		res, err := correlate.BuildMatrix([][]float64{a, b}, []string{"a", "b"})
		if err != nil {
			t.Fatalf("BuildMatrix() error = %v", err)
		}
		if res.CommonSamples != 3 {
			t.Errorf("CommonSamples = %d, want 3", res.CommonSamples)
		}
	})

	t.Run("insufficient overlap", func(t *testing.T) {
		t.Parallel()
		_, err := correlate.BuildMatrix([][]float64{{1, 2, 3}, {4}}, []string{"a", "b"})
		if !errors.Is(err, analytics.ErrInsufficientData) {
			t.Errorf("error = %v, want ErrInsufficientData", err)
		}
	})
}
