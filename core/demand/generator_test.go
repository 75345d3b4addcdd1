package demand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

func newTestGenerator(t *testing.T, cfg Config) (*Generator, *broker.Memory) {
	t.Helper()
	bus := broker.NewMemory()
	g, err := New(cfg, bus, nil)
	require.NoError(t, err)
	return g, bus
}

func publishFleet(t *testing.T, bus *broker.Memory, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, broker.PublishOne(bus, broker.TopicVehiclesDemand,
			model.Vehicle{ID: i, Type: "sedan", SoC: 0.8, CapacityKWh: 60, Status: model.StatusParked}))
	}
}

func TestMidnightBatchCoversNextDay(t *testing.T) {
	g, bus := newTestGenerator(t, Config{
		MeanReservationsPerDay:  200,
		StdevReservationsPerDay: 0.1,
		Seed:                    7,
	})
	publishFleet(t, bus, 10)

	midnight := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, g.RunInterval(midnight))

	out, err := broker.DrainAll[model.Reservation](bus, broker.TopicReservations)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	seen := map[string]bool{}
	for _, res := range out {
		assert.False(t, seen[res.ID], "reservation ids are unique")
		seen[res.ID] = true
		assert.Equal(t, "sedan", res.VehicleType)
		assert.Equal(t, model.ReservationCreated, res.Status)
		assert.True(t, res.Departure.After(midnight))
		assert.False(t, res.Departure.After(midnight.Add(24*time.Hour)))
		assert.True(t, res.Arrival.Sub(res.Departure) >= 2*time.Hour)
		if !res.WalkIn {
			assert.True(t, res.CreatedAt.Equal(midnight))
		}
	}
}

func TestNoFleetNoDemand(t *testing.T) {
	g, bus := newTestGenerator(t, Config{MeanReservationsPerDay: 200, StdevReservationsPerDay: 0.1})

	midnight := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, g.RunInterval(midnight))

	out, err := broker.DrainAll[model.Reservation](bus, broker.TopicReservations)
	require.NoError(t, err)
	assert.Empty(t, out, "demand tracks the fleet it can serve")
}

func TestWalkInsCarryLeadTime(t *testing.T) {
	g, bus := newTestGenerator(t, Config{
		MeanWalkInsPerDay:   50,
		StdevWalkInsPerDay:  0.1,
		MeanWalkInHourOfDay: 10.125,
		StdevWalkInHours:    0.01,
		Seed:                3,
	})
	publishFleet(t, bus, 5)

	now := time.Date(2022, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, g.RunInterval(now))

	out, err := broker.DrainAll[model.Reservation](bus, broker.TopicReservations)
	require.NoError(t, err)
	require.NotEmpty(t, out, "walk-in hour concentrated inside this interval")
	for _, res := range out {
		assert.True(t, res.WalkIn)
		assert.True(t, res.Departure.Equal(now.Add(15*time.Minute)))
		assert.True(t, res.CreatedAt.Equal(now))
	}
}

func TestTripDurationFlooredAndRounded(t *testing.T) {
	g, _ := newTestGenerator(t, Config{
		MeanReservationDurationHours:  2,
		StdevReservationDurationHours: 2,
		Seed:                          11,
	})

	for i := 0; i < 50; i++ {
		d := g.tripDuration()
		assert.GreaterOrEqual(t, d, 2*time.Hour)
		assert.Zero(t, d%g.cfg.Interval(), "durations land on interval boundaries")
	}
}
