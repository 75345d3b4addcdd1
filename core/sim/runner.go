// Package sim wires the demand generator, depot runtime and scheduler into
// a single simulation loop and reports departure outcomes. Sweep runs a
// grid of fleet and station configurations in parallel.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/demand"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/depot"
	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/scheduler"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// Params is everything one simulation run needs.
type Params struct {
	Depot     depot.Config     `json:"depot"`
	Scheduler scheduler.Config `json:"scheduler"`
	Demand    demand.Config    `json:"demand"`

	HorizonHours int       `json:"horizon_length_hours"`
	Start        time.Time `json:"start"`
}

func (p *Params) SetDefaults() {
	p.Depot.SetDefaults()
	p.Scheduler.SetDefaults()
	p.Demand.SetDefaults()
	if p.HorizonHours == 0 {
		p.HorizonHours = 24
	}
	if p.Start.IsZero() {
		p.Start = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	// one clock for all three components
	p.Demand.IntervalSeconds = p.Depot.IntervalSeconds
	p.Demand.Seed = p.Depot.Seed
}

func (p Params) Validate() error {
	if p.HorizonHours <= 0 {
		return fmt.Errorf("horizon_length_hours must be positive, got %d", p.HorizonHours)
	}
	return p.Depot.Validate()
}

// Result summarizes one run's departures.
type Result struct {
	Departures []model.DepartureRecord

	OnTime int
	Late   int
	Missed int

	MeanDelayMinutes float64
}

// Runner owns the three components of a single run and the shared clock.
type Runner struct {
	params Params
	demand *demand.Generator
	depot  *depot.Runtime
	sched  *scheduler.Scheduler
	log    logger.Logger
}

// NewRunner builds a run from its parameters. Each run gets its own
// in-memory broker so sweeps never share state.
func NewRunner(p Params, bus broker.Broker, sink coremetrics.MetricsSink, log logger.Logger) (*Runner, error) {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}

	gen, err := demand.New(p.Demand, bus, log)
	if err != nil {
		return nil, err
	}
	rt, err := depot.Build(p.Depot, bus, sink, log)
	if err != nil {
		return nil, err
	}
	sched, err := scheduler.New(p.Scheduler, bus, log)
	if err != nil {
		return nil, err
	}
	return &Runner{params: p, demand: gen, depot: rt, sched: sched, log: log}, nil
}

// Depot exposes the runtime for inspection after a run.
func (r *Runner) Depot() *depot.Runtime { return r.depot }

// Run executes the fixed-order interval loop over the whole horizon:
// demand, then depot, then scheduler, all at the same simulated instant.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	interval := r.params.Depot.Interval()
	n := int(time.Duration(r.params.HorizonHours) * time.Hour / interval)

	now := r.params.Start
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		if err := r.demand.RunInterval(now); err != nil {
			return Result{}, fmt.Errorf("demand interval %d: %w", i, err)
		}
		if err := r.depot.RunInterval(now); err != nil {
			return Result{}, fmt.Errorf("depot interval %d: %w", i, err)
		}
		if err := r.sched.RunInterval(now); err != nil {
			return Result{}, fmt.Errorf("scheduler interval %d: %w", i, err)
		}
		now = now.Add(interval)
	}

	return summarize(r.depot.Departures()), nil
}

func summarize(departures []model.DepartureRecord) Result {
	res := Result{Departures: departures}

	var delaySum time.Duration
	var delayed int
	for _, d := range departures {
		switch {
		case d.VehicleID == nil:
			res.Missed++
		case d.OnTime:
			res.OnTime++
		default:
			res.Late++
			delaySum += d.DepartureDelta()
			delayed++
		}
	}
	if delayed > 0 {
		res.MeanDelayMinutes = delaySum.Minutes() / float64(delayed)
	}
	return res
}
