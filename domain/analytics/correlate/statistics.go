package correlate

import (
	"math"
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
)

// NameCount pairs a device or datasource name with its alert count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TimeBucket counts alerts whose start falls inside a fixed-width window.
type TimeBucket struct {
	BucketStart int64 `json:"bucket_start"`
	BucketEnd   int64 `json:"bucket_end"`
	Count       int   `json:"count"`
}

// Statistics is the aggregate view of an alert window.
type Statistics struct {
	Total        int            `json:"total"`
	BySeverity   map[string]int `json:"by_severity"`
	ByDevice     []NameCount    `json:"by_device"`
	ByDatasource []NameCount    `json:"by_datasource"`
	TimeBuckets  []TimeBucket   `json:"time_buckets"`
}

// Aggregate computes severity counts, top-10 device and datasource
// counts, and fixed-width time buckets over the window ending at
// nowEpoch. An empty alert set produces well-formed zero-valued results.
func Aggregate(alerts []alert.Alert, hoursBack, bucketSizeHours int, nowEpoch int64) Statistics {
	bySeverity := map[string]int{
		"critical": 0,
		"error":    0,
		"warning":  0,
		"info":     0,
	}
	deviceCounts := make(map[string]int)
	dsCounts := make(map[string]int)

	for _, a := range alerts {
		if name, ok := alert.SeverityNames[a.Severity]; ok {
			bySeverity[name]++
		}
		deviceCounts[a.Device]++
		dsCounts[a.Datasource]++
	}

	startEpoch := nowEpoch - int64(hoursBack)*3600
	bucketSeconds := int64(bucketSizeHours) * 3600
	numBuckets := int(math.Ceil(float64(hoursBack) / float64(bucketSizeHours)))
	if numBuckets < 1 {
		numBuckets = 1
	}

	buckets := make([]TimeBucket, numBuckets)
	for i := range buckets {
		bucketStart := startEpoch + int64(i)*bucketSeconds
		bucketEnd := bucketStart + bucketSeconds
		count := 0
		for _, a := range alerts {
			if a.StartEpoch >= bucketStart && a.StartEpoch < bucketEnd {
				count++
			}
		}
		buckets[i] = TimeBucket{BucketStart: bucketStart, BucketEnd: bucketEnd, Count: count}
	}

	return Statistics{
		Total:        len(alerts),
		BySeverity:   bySeverity,
		ByDevice:     topCounts(deviceCounts, 10),
		ByDatasource: topCounts(dsCounts, 10),
		TimeBuckets:  buckets,
	}
}

// topCounts orders a count map by descending count (name ascending on
// ties) and keeps the first limit entries.
func topCounts(counts map[string]int, limit int) []NameCount {
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
