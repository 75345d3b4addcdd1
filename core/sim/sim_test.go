package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/depot"
	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

func smallDepot() Params {
	return Params{
		Depot: depot.Config{
			NL2Stations:   2,
			NDCFCStations: 1,
			Vehicles: map[string]depot.VehicleSpec{
				"sedan": {Count: 4, CapacityKWh: 60},
			},
			Seed: 42,
		},
		HorizonHours: 24,
	}
}

func TestRunProducesConsistentSummary(t *testing.T) {
	p := smallDepot()
	p.Demand.MeanReservationsPerDay = 30
	p.Demand.StdevReservationsPerDay = 1

	r, err := NewRunner(p, broker.NewMemory(), coremetrics.NopSink{}, nil)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(res.Departures), res.OnTime+res.Late+res.Missed)
	for _, d := range res.Departures {
		if d.VehicleID == nil {
			continue
		}
		assert.False(t, d.ActualDeparture.Before(d.ScheduledDeparture),
			"vehicles never leave before their slot")
	}

	// physics held for the whole horizon
	for _, v := range r.Depot().Fleet().Vehicles.All() {
		assert.GreaterOrEqual(t, v.SoC, 0.05)
		assert.LessOrEqual(t, v.SoC, 1.0)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewRunner(smallDepot(), broker.NewMemory(), coremetrics.NopSink{}, nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerSharesOneClockAcrossComponents(t *testing.T) {
	p := smallDepot()
	p.Depot.IntervalSeconds = 600
	p.SetDefaults()
	assert.Equal(t, 600, p.Demand.IntervalSeconds)
	assert.Equal(t, p.Depot.Seed, p.Demand.Seed)
}

func TestSweepCoversFullGrid(t *testing.T) {
	base := smallDepot()
	base.HorizonHours = 2 // keep the grid cheap

	grid := Grid{
		L2Stations:    []int{1, 2},
		DCFCStations:  []int{0, 1},
		VehicleCounts: []int{2},
		Seeds:         []int64{1, 2},
	}

	results, err := Sweep(context.Background(), base, grid, 4, nil)
	require.NoError(t, err)
	require.Len(t, results, 8)

	seen := map[[4]int64]bool{}
	for _, r := range results {
		key := [4]int64{int64(r.L2Stations), int64(r.DCFCStations), int64(r.VehiclesPerType), r.Seed}
		assert.False(t, seen[key], "each grid point runs once")
		seen[key] = true
	}
}

func TestSweepRunsAreIsolated(t *testing.T) {
	base := smallDepot()
	base.HorizonHours = 24
	base.Demand.MeanReservationsPerDay = 30
	base.Demand.StdevReservationsPerDay = 1

	grid := Grid{
		L2Stations:    []int{2},
		DCFCStations:  []int{1},
		VehicleCounts: []int{4},
		Seeds:         []int64{1, 2},
	}

	results, err := Sweep(context.Background(), base, grid, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		sum := r.Result.OnTime + r.Result.Late + r.Result.Missed
		assert.Equal(t, len(r.Result.Departures), sum)
	}
}

func TestSweepDefaultsFillEmptyGrid(t *testing.T) {
	var g Grid
	g.SetDefaults()
	assert.Equal(t, []int{1}, g.L2Stations)
	assert.Equal(t, []int{0}, g.DCFCStations)
	assert.Equal(t, []int{5}, g.VehicleCounts)
	assert.Equal(t, []int64{1}, g.Seeds)
}
