package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/depot"
	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// Grid is the parameter space a sweep explores: the cross product of
// station counts, per-type vehicle counts and seeds, applied on top of a
// base Params.
type Grid struct {
	L2Stations    []int   `json:"l2_stations"`
	DCFCStations  []int   `json:"dcfc_stations"`
	VehicleCounts []int   `json:"vehicle_counts"`
	Seeds         []int64 `json:"seeds"`
}

func (g *Grid) SetDefaults() {
	if len(g.L2Stations) == 0 {
		g.L2Stations = []int{1}
	}
	if len(g.DCFCStations) == 0 {
		g.DCFCStations = []int{0}
	}
	if len(g.VehicleCounts) == 0 {
		g.VehicleCounts = []int{5}
	}
	if len(g.Seeds) == 0 {
		g.Seeds = []int64{1}
	}
}

// SweepResult pairs one grid point with its run outcome.
type SweepResult struct {
	L2Stations      int
	DCFCStations    int
	VehiclesPerType int
	Seed            int64

	Result Result
}

// Sweep runs every grid point, each with its own broker and runtime, with
// at most parallelism runs in flight. Results keep grid order.
func Sweep(ctx context.Context, base Params, grid Grid, parallelism int, log logger.Logger) ([]SweepResult, error) {
	grid.SetDefaults()
	base.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	var points []SweepResult
	for _, nl2 := range grid.L2Stations {
		for _, ndc := range grid.DCFCStations {
			for _, nveh := range grid.VehicleCounts {
				for _, seed := range grid.Seeds {
					points = append(points, SweepResult{
						L2Stations:      nl2,
						DCFCStations:    ndc,
						VehiclesPerType: nveh,
						Seed:            seed,
					})
				}
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	results := make([]SweepResult, len(points))
	for i, pt := range points {
		i, pt := i, pt
		g.Go(func() error {
			p := base
			p.Depot.NL2Stations = pt.L2Stations
			p.Depot.NDCFCStations = pt.DCFCStations
			p.Depot.Seed = pt.Seed
			p.Depot.Vehicles = make(map[string]depot.VehicleSpec, len(base.Depot.Vehicles))
			for typ, spec := range base.Depot.Vehicles {
				spec.Count = pt.VehiclesPerType
				p.Depot.Vehicles[typ] = spec
			}

			runner, err := NewRunner(p, broker.NewMemory(), coremetrics.NopSink{}, log)
			if err != nil {
				return fmt.Errorf("grid point %d: %w", i, err)
			}
			res, err := runner.Run(ctx)
			if err != nil {
				return fmt.Errorf("grid point %d: %w", i, err)
			}

			pt.Result = res
			results[i] = pt
			log.Infof("sweep point done: l2=%d dcfc=%d vehicles=%d seed=%d on_time=%d late=%d missed=%d",
				pt.L2Stations, pt.DCFCStations, pt.VehiclesPerType, pt.Seed,
				res.OnTime, res.Late, res.Missed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
