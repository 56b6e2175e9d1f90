// Package correlate partitions raw alert sets into clusters, aggregates
// alert statistics, flags per-datapoint anomalies, and builds cross-metric
// correlation matrices.
package correlate

import (
	"fmt"
	"sort"

	"github.com/pulsemon/pulsemon-mcp/domain/alert"
)

// TemporalWindowSeconds is the chained proximity window for temporal
// clustering: an alert joins the current group when it starts within this
// many seconds of the previous alert in the group.
const TemporalWindowSeconds = 300

// ClusterType labels which dimension a cluster was formed on.
type ClusterType string

const (
	ClusterDevice     ClusterType = "device"
	ClusterDatasource ClusterType = "datasource"
	ClusterTemporal   ClusterType = "temporal"
)

// Cluster is a derived, read-only grouping of alerts. Clusters are
// recomputed from scratch on every call; there is no persisted cluster
// identity.
type Cluster struct {
	Type           ClusterType `json:"type"`
	Key            string      `json:"key"`
	Count          int         `json:"count"`
	Devices        []string    `json:"devices,omitempty"`
	AlertIDs       []string    `json:"alert_ids"`
	FirstAlertTime int64       `json:"first_alert_time"`
	LastAlertTime  int64       `json:"last_alert_time"`
}

// ClusterByDevice groups alerts by device name, emitting a cluster for
// every device with 2 or more alerts, ordered by descending count.
func ClusterByDevice(alerts []alert.Alert) []Cluster {
	byDevice := make(map[string][]alert.Alert)
	for _, a := range alerts {
		byDevice[a.Device] = append(byDevice[a.Device], a)
	}

	var clusters []Cluster
	for device, group := range byDevice {
		if len(group) < 2 {
			continue
		}
		first, last := epochRange(group)
		clusters = append(clusters, Cluster{
			Type:           ClusterDevice,
			Key:            device,
			Count:          len(group),
			AlertIDs:       alertIDs(group),
			FirstAlertTime: first,
			LastAlertTime:  last,
		})
	}

	sortClusters(clusters)
	return clusters
}

// ClusterByDatasource groups alerts by datasource name across devices,
// recording the distinct devices each datasource touched.
func ClusterByDatasource(alerts []alert.Alert) []Cluster {
	byDS := make(map[string][]alert.Alert)
	for _, a := range alerts {
		byDS[a.Datasource] = append(byDS[a.Datasource], a)
	}

	var clusters []Cluster
	for ds, group := range byDS {
		if len(group) < 2 {
			continue
		}
		seen := make(map[string]bool)
		var devices []string
		for _, a := range group {
			if !seen[a.Device] {
				seen[a.Device] = true
				devices = append(devices, a.Device)
			}
		}
		sort.Strings(devices)

		first, last := epochRange(group)
		clusters = append(clusters, Cluster{
			Type:           ClusterDatasource,
			Key:            ds,
			Count:          len(group),
			Devices:        devices,
			AlertIDs:       alertIDs(group),
			FirstAlertTime: first,
			LastAlertTime:  last,
		})
	}

	sortClusters(clusters)
	return clusters
}

// ClusterByTime sweeps alerts in start order, chaining an alert into the
// current group while it starts within TemporalWindowSeconds of the
// previous alert in the group. The gap is measured from the previous
// alert, not from the group's first alert, so a slow burst can extend a
// group well past one window.
func ClusterByTime(alerts []alert.Alert) []Cluster {
	if len(alerts) < 2 {
		return nil
	}

	sorted := make([]alert.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartEpoch < sorted[j].StartEpoch
	})

	var clusters []Cluster
	group := []alert.Alert{sorted[0]}

	flush := func() {
		if len(group) >= 2 {
			first, last := epochRange(group)
			clusters = append(clusters, Cluster{
				Type:           ClusterTemporal,
				Key:            fmt.Sprintf("window_%d", first),
				Count:          len(group),
				AlertIDs:       alertIDs(group),
				FirstAlertTime: first,
				LastAlertTime:  last,
			})
		}
	}

	for _, a := range sorted[1:] {
		prev := group[len(group)-1]
		if a.StartEpoch-prev.StartEpoch <= TemporalWindowSeconds {
			group = append(group, a)
			continue
		}
		flush()
		group = []alert.Alert{a}
	}
	flush()

	return clusters
}

// ClusterAll runs the three clustering passes independently over the same
// alert set. An alert can appear in clusters of every type.
func ClusterAll(alerts []alert.Alert) []Cluster {
	all := ClusterByDevice(alerts)
	all = append(all, ClusterByDatasource(alerts)...)
	all = append(all, ClusterByTime(alerts)...)
	return all
}

func alertIDs(alerts []alert.Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}

func epochRange(alerts []alert.Alert) (first, last int64) {
	first = alerts[0].StartEpoch
	last = alerts[0].StartEpoch
	for _, a := range alerts[1:] {
		if a.StartEpoch < first {
			first = a.StartEpoch
		}
		if a.StartEpoch > last {
			last = a.StartEpoch
		}
	}
	return first, last
}

// sortClusters orders by descending count, breaking ties by key for
// deterministic output.
func sortClusters(clusters []Cluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Key < clusters[j].Key
	})
}
