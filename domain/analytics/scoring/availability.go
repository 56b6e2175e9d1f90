package scoring

import (
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
	"github.com/pulsemon/pulsemon-mcp/domain/analytics/stats"
)

// DeviceAvailability is the per-device uptime summary for a window.
type DeviceAvailability struct {
	Device              string  `json:"device"`
	AvailabilityPercent float64 `json:"availability_percent"`
	DowntimeMinutes     float64 `json:"downtime_minutes"`
	IncidentCount       int     `json:"incident_count"`
	MTTRMinutes         float64 `json:"mttr_minutes"`
}

// AvailabilityReport aggregates per-device availability across a window.
// The aggregate percentage is the minimum across devices so that one bad
// device cannot hide behind healthy peers.
type AvailabilityReport struct {
	WindowHours          int                  `json:"window_hours"`
	AvailabilityPercent  float64              `json:"availability_percent"`
	TotalDowntimeMinutes float64              `json:"total_downtime_minutes"`
	IncidentCount        int                  `json:"incident_count"`
	MTTRMinutes          float64              `json:"mttr_minutes"`
	Devices              []DeviceAvailability `json:"devices"`
}

type interval struct {
	start int64
	end   int64
}

// ComputeAvailability treats each alert's [StartEpoch, EndEpoch) as
// downtime for its device, clipped to the window [nowEpoch-hours,
// nowEpoch). Open alerts (EndEpoch 0) run to now. Overlapping or touching
// intervals per device merge before downtime is summed, so concurrent
// alerts are not double counted. No alerts means 100% availability with
// zero incidents.
func ComputeAvailability(alerts []alert.Alert, hoursBack int, nowEpoch int64) AvailabilityReport {
	windowStart := nowEpoch - int64(hoursBack)*3600
	windowSeconds := float64(nowEpoch - windowStart)

	byDevice := make(map[string][]interval)
	for _, a := range alerts {
		start := a.StartEpoch
		end := a.EndEpoch
		if end == 0 {
			end = nowEpoch
		}
		if start < windowStart {
			start = windowStart
		}
		if end > nowEpoch {
			end = nowEpoch
		}
		if end <= start {
			continue
		}
		byDevice[a.Device] = append(byDevice[a.Device], interval{start: start, end: end})
	}

	devices := make([]DeviceAvailability, 0, len(byDevice))
	var allDurations []float64
	totalDowntime := 0.0
	totalIncidents := 0
	minAvailability := 100.0

	names := make([]string, 0, len(byDevice))
	for name := range byDevice {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		merged := mergeIntervals(byDevice[name])
		downtime := 0.0
		var durations []float64
		for _, iv := range merged {
			seconds := float64(iv.end - iv.start)
			downtime += seconds
			durations = append(durations, seconds/60)
		}
		availability := 100.0
		if windowSeconds > 0 {
			availability = (windowSeconds - downtime) / windowSeconds * 100
		}
		mttr := 0.0
		if len(durations) > 0 {
			mttr = stats.Mean(durations)
		}
		devices = append(devices, DeviceAvailability{
			Device:              name,
			AvailabilityPercent: stats.Round(availability, 3),
			DowntimeMinutes:     stats.Round(downtime/60, 2),
			IncidentCount:       len(merged),
			MTTRMinutes:         stats.Round(mttr, 2),
		})
		totalDowntime += downtime
		totalIncidents += len(merged)
		allDurations = append(allDurations, durations...)
		if availability < minAvailability {
			minAvailability = availability
		}
	}

	aggregateMTTR := 0.0
	if len(allDurations) > 0 {
		aggregateMTTR = stats.Mean(allDurations)
	}
	return AvailabilityReport{
		WindowHours:          hoursBack,
		AvailabilityPercent:  stats.Round(minAvailability, 3),
		TotalDowntimeMinutes: stats.Round(totalDowntime/60, 2),
		IncidentCount:        totalIncidents,
		MTTRMinutes:          stats.Round(aggregateMTTR, 2),
		Devices:              devices,
	}
}

// mergeIntervals sorts by start and folds overlapping or touching
// intervals into one.
func mergeIntervals(ivs []interval) []interval {
	if len(ivs) == 0 {
		return nil
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
	merged := []interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
