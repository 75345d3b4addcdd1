// Package app assembles the simulation from configuration: broker, metric
// sinks, optional MQTT bridge and the run or sweep entrypoints.
package app

import (
	"context"
	"fmt"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/config"
	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/sim"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/mqtt"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// Service holds everything a configured simulation run needs.
type Service struct {
	cfg  *config.Config
	bus  broker.Broker
	sink coremetrics.MetricsSink
	log  logger.Logger

	mqttClient *mqtt.Client
	influx     *metrics.InfluxSink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	cfg.Logging.Apply()
	log := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	svc := &Service{cfg: cfg, log: log}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			svc.influx = is
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		svc.sink = coremetrics.NopSink{}
	case 1:
		svc.sink = sinks[0]
	default:
		svc.sink = metrics.NewMultiSink(sinks...)
	}

	var bus broker.Broker = broker.NewMemory()
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttClient = client
		bus = mqtt.NewMirror(bus, client)
	}
	svc.bus = bus
	return svc, nil
}

// Run executes a single simulation over the configured horizon and logs
// the departure summary.
func (s *Service) Run(ctx context.Context) error {
	s.startPromServer(ctx)

	runner, err := sim.NewRunner(s.cfg.Sim, s.bus, s.sink, s.log)
	if err != nil {
		return err
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("run complete: departures=%d on_time=%d late=%d missed=%d mean_delay_min=%.1f",
		len(res.Departures), res.OnTime, res.Late, res.Missed, res.MeanDelayMinutes)
	return nil
}

// RunSweep executes the configured parameter grid, logs one summary line
// per grid point and returns the results for export.
func (s *Service) RunSweep(ctx context.Context, parallelism int) ([]sim.SweepResult, error) {
	s.startPromServer(ctx)

	results, err := sim.Sweep(ctx, s.cfg.Sim, s.cfg.Sweep, parallelism, s.log)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		total := r.Result.OnTime + r.Result.Late + r.Result.Missed
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(r.Result.OnTime) / float64(total)
		}
		s.log.Infof("l2=%d dcfc=%d vehicles=%d seed=%d on_time_pct=%.1f mean_delay_min=%.1f",
			r.L2Stations, r.DCFCStations, r.VehiclesPerType, r.Seed, pct, r.Result.MeanDelayMinutes)
	}
	return results, nil
}

func (s *Service) startPromServer(ctx context.Context) {
	if !s.cfg.Metrics.PrometheusEnabled {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqttClient != nil {
		s.mqttClient.Close()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	return nil
}
