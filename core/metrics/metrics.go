// Package metrics defines the observability contracts of a simulation run.
// Sinks receive per-interval vehicle snapshots and departure outcomes; the
// concrete recorders live under infra/metrics.
package metrics

import (
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// SnapshotEvent is the per-interval state of the fleet.
type SnapshotEvent struct {
	Time     time.Time
	Vehicles []model.Vehicle
	Stations []model.Station
}

// MetricsSink records simulation output for downstream analysis.
type MetricsSink interface {
	// RecordSnapshot persists the vehicle SoC/status snapshot of one interval.
	RecordSnapshot(ev SnapshotEvent) error
	// RecordDeparture persists a departure outcome, on time or missed.
	RecordDeparture(rec model.DepartureRecord) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordSnapshot(SnapshotEvent) error          { return nil }
func (NopSink) RecordDeparture(model.DepartureRecord) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    int    `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
