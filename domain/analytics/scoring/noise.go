// Package scoring derives alert-noise scores, SLA-style availability, and
// composite device health from alert and metric windows.
package scoring

import (
	"math"
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
)

// FlapWindowSeconds is the maximum gap between an alert clearing and the
// same device/datapoint re-firing for the pair to count as a flap.
const FlapWindowSeconds = 1800

// FlapEvent records one detected clear-and-refire pair.
type FlapEvent struct {
	Key        string `json:"key"`
	GapSeconds int64  `json:"gap_seconds"`
	AlertID    string `json:"alert_id"`
}

// NoiseScore is the 0-100 noisiness report for an alert window.
type NoiseScore struct {
	Score             int         `json:"noise_score"`
	Entropy           float64     `json:"entropy"`
	NormalizedEntropy float64     `json:"normalized_entropy"`
	TotalAlerts       int         `json:"total_alerts"`
	FlapCount         int         `json:"flap_count"`
	FlappingAlerts    []FlapEvent `json:"flapping_alerts"`
	RepeatRatio       float64     `json:"repeat_ratio"`
	TopNoisyDevices   []NameCount `json:"top_noisy_devices"`
	TopNoisySources   []NameCount `json:"top_noisy_datasources"`
	Recommendations   []string    `json:"recommendations"`
}

// NameCount pairs a name with its alert count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ScoreNoise combines normalized Shannon entropy of the
// datasource/datapoint frequency distribution, flap detection, and the
// repeat ratio into one 0-100 score. An empty window scores 0 with an
// explanatory recommendation; there is always at least one
// recommendation.
func ScoreNoise(alerts []alert.Alert) NoiseScore {
	if len(alerts) == 0 {
		return NoiseScore{
			FlappingAlerts:  []FlapEvent{},
			TopNoisyDevices: []NameCount{},
			TopNoisySources: []NameCount{},
			Recommendations: []string{"No alerts in the time window."},
		}
	}

	comboCounts := make(map[string]int)
	deviceCounts := make(map[string]int)
	dsCounts := make(map[string]int)
	for _, a := range alerts {
		comboCounts[a.Datasource+":"+a.Datapoint]++
		deviceCounts[a.Device]++
		dsCounts[a.Datasource]++
	}

	total := 0
	for _, c := range comboCounts {
		total += c
	}
	probabilities := make([]float64, 0, len(comboCounts))
	for _, c := range comboCounts {
		probabilities = append(probabilities, float64(c)/float64(total))
	}
	entropy := stats.ShannonEntropy(probabilities)

	maxEntropy := 1.0
	if len(comboCounts) > 1 {
		maxEntropy = math.Log2(float64(len(comboCounts)))
	}
	normalizedEntropy := 0.0
	if maxEntropy > 0 {
		normalizedEntropy = entropy / maxEntropy
	}

	flapCount, flapping := detectFlaps(alerts)

	repeatCount := 0
	for _, c := range comboCounts {
		if c >= 3 {
			repeatCount++
		}
	}
	repeatRatio := float64(repeatCount) / float64(len(comboCounts))
	flapRatio := float64(flapCount) / float64(len(alerts))

	score := int(math.Round(normalizedEntropy*40 + flapRatio*100*30 + repeatRatio*100*30))
	if score > 100 {
		score = 100
	}

	var recommendations []string
	if flapCount > 0 {
		recommendations = append(recommendations,
			"Flapping alerts detected. Consider adding alert delay or hysteresis.")
	}
	if repeatRatio > 0.5 {
		recommendations = append(recommendations,
			"High repeat ratio. Review alert thresholds and consider consolidation rules.")
	}
	if score > 70 {
		recommendations = append(recommendations,
			"Very high noise level. Review top noisy devices and datasources for tuning opportunities.")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Alert noise levels are acceptable.")
	}

	return NoiseScore{
		Score:             score,
		Entropy:           stats.Round(entropy, 4),
		NormalizedEntropy: stats.Round(normalizedEntropy, 4),
		TotalAlerts:       len(alerts),
		FlapCount:         flapCount,
		FlappingAlerts:    flapping,
		RepeatRatio:       stats.Round(repeatRatio, 4),
		TopNoisyDevices:   topNames(deviceCounts, 5),
		TopNoisySources:   topNames(dsCounts, 5),
		Recommendations:   recommendations,
	}
}

// detectFlaps scans each device/datapoint key in start order, flagging a
// flap whenever an alert re-fires within FlapWindowSeconds of the prior
// alert clearing. Still-open predecessors never flap.
func detectFlaps(alerts []alert.Alert) (int, []FlapEvent) {
	byKey := make(map[string][]alert.Alert)
	var keys []string
	for _, a := range alerts {
		key := a.Device + ":" + a.Datapoint
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], a)
	}
	sort.Strings(keys)

	count := 0
	events := []FlapEvent{}
	for _, key := range keys {
		group := byKey[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].StartEpoch < group[j].StartEpoch
		})
		for i := 1; i < len(group); i++ {
			prevEnd := group[i-1].EndEpoch
			currStart := group[i].StartEpoch
			if prevEnd > 0 && currStart-prevEnd < FlapWindowSeconds {
				count++
				if len(events) < 10 {
					events = append(events, FlapEvent{
						Key:        key,
						GapSeconds: currStart - prevEnd,
						AlertID:    group[i].ID,
					})
				}
			}
		}
	}
	return count, events
}

func topNames(counts map[string]int, limit int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
