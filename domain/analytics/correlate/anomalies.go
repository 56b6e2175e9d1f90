package correlate

import (
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// DefaultAnomalyThreshold is the z-score above which a sample is flagged.
const DefaultAnomalyThreshold = 2.0

// Anomaly is a self-contained record of one flagged sample.
type Anomaly struct {
	Datapoint string  `json:"datapoint"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	ZScore    float64 `json:"z_score"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
}

// DetectAnomalies flags every sample whose absolute z-score against the
// series' own mean exceeds threshold. Series with fewer than 2 points or
// zero spread produce no anomalies; a constant series is never anomalous.
func DetectAnomalies(datapoint string, series metric.Series, threshold float64) []Anomaly {
	if len(series.Values) < 2 {
		return nil
	}

	mean := stats.Mean(series.Values)
	stddev := stats.SampleStdDev(series.Values)
	if stddev == 0 {
		return nil
	}

	var anomalies []Anomaly
	for i, v := range series.Values {
		z := v - mean
		if z < 0 {
			z = -z
		}
		z /= stddev
		if z > threshold {
			anomalies = append(anomalies, Anomaly{
				Datapoint: datapoint,
				Value:     v,
				Timestamp: series.Timestamps[i],
				ZScore:    stats.Round(z, 2),
				Mean:      stats.Round(mean, 2),
				StdDev:    stats.Round(stddev, 2),
			})
		}
	}
	return anomalies
}
