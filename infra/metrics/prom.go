package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// PromSink exposes fleet state and departure outcomes as Prometheus metrics.
type PromSink struct {
	soc        *prometheus.GaugeVec
	status     *prometheus.GaugeVec
	departures *prometheus.CounterVec
	lateness   prometheus.Histogram
}

// NewPromSink registers depot metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	soc := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "depot_vehicle_soc",
		Help: "State of charge per vehicle",
	}, []string{"vehicle_id", "vehicle_type"})
	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "depot_vehicle_status",
		Help: "Number of vehicles per status",
	}, []string{"status"})
	departures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depot_departures_total",
		Help: "Departure outcomes by punctuality",
	}, []string{"on_time"})
	lateness := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "depot_departure_delay_minutes",
		Help:    "Delay between scheduled and actual departure",
		Buckets: []float64{0, 5, 15, 30, 60, 120, 240},
	})

	for _, c := range []prometheus.Collector{soc, status, departures, lateness} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{soc: soc, status: status, departures: departures, lateness: lateness}, nil
}

// RecordSnapshot updates the per-vehicle SoC gauges and status counts.
func (s *PromSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	counts := map[model.VehicleStatus]int{}
	for _, v := range ev.Vehicles {
		s.soc.WithLabelValues(strconv.Itoa(v.ID), v.Type).Set(v.SoC)
		counts[v.Status]++
	}
	for _, st := range []model.VehicleStatus{
		model.StatusParked, model.StatusCharging, model.StatusFinishedCharging,
		model.StatusDriving, model.StatusUnknown,
	} {
		s.status.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
	return nil
}

// RecordDeparture increments the outcome counter and observes the delay.
func (s *PromSink) RecordDeparture(rec model.DepartureRecord) error {
	s.departures.WithLabelValues(strconv.FormatBool(rec.OnTime)).Inc()
	s.lateness.Observe(rec.DepartureDelta().Minutes())
	return nil
}
