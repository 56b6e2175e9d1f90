package scoring

import (
	"math"
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
)

// Health status bands.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusCritical = "critical"
	StatusUnknown  = "unknown"
)

// DatapointHealth reports how far a datapoint's latest value sits from
// its own recent history.
type DatapointHealth struct {
	Datapoint   string  `json:"datapoint"`
	LatestValue float64 `json:"latest_value"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	ZScore      float64 `json:"z_score"`
	Weight      float64 `json:"weight"`
}

// HealthScore is the composite 0-100 health report for one device.
type HealthScore struct {
	Score          int               `json:"health_score"`
	Status         string            `json:"status"`
	AnomalousCount int               `json:"anomalous_datapoints"`
	Datapoints     []DatapointHealth `json:"datapoints"`
}

// ScoreHealth compares each datapoint's latest sample against the mean
// and standard deviation of its window, weights the absolute z-scores,
// and maps the weighted average onto 0-100. Datapoints absent from the
// weight map get weight 1. A device with no usable series scores 100
// with status unknown.
func ScoreHealth(series map[string]metric.Series, weights map[string]float64) HealthScore {
	var points []DatapointHealth
	weightedSum := 0.0
	weightTotal := 0.0
	anomalous := 0

	for _, name := range sortedKeys(series) {
		s := series[name]
		if len(s.Values) < 2 {
			continue
		}
		latest := s.Values[len(s.Values)-1]
		mean := stats.Mean(s.Values)
		stddev := stats.SampleStdDev(s.Values)
		z := 0.0
		if stddev > 0 {
			z = math.Abs((latest - mean) / stddev)
		}
		weight := 1.0
		if w, ok := weights[name]; ok {
			weight = w
		}
		points = append(points, DatapointHealth{
			Datapoint:   name,
			LatestValue: stats.Round(latest, 2),
			Mean:        stats.Round(mean, 2),
			StdDev:      stats.Round(stddev, 2),
			ZScore:      stats.Round(z, 2),
			Weight:      weight,
		})
		weightedSum += z * weight
		weightTotal += weight
		if z > 2 {
			anomalous++
		}
	}

	if len(points) == 0 {
		return HealthScore{Score: 100, Status: StatusUnknown, Datapoints: []DatapointHealth{}}
	}

	avgZ := 0.0
	if weightTotal > 0 {
		avgZ = weightedSum / weightTotal
	}
	score := int(math.Round(100 - avgZ*15))
	if score < 0 {
		score = 0
	}
	return HealthScore{
		Score:          score,
		Status:         statusForScore(score),
		AnomalousCount: anomalous,
		Datapoints:     points,
	}
}

func statusForScore(score int) string {
	switch {
	case score >= 80:
		return StatusHealthy
	case score >= 50:
		return StatusDegraded
	default:
		return StatusCritical
	}
}

func sortedKeys(series map[string]metric.Series) []string {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
