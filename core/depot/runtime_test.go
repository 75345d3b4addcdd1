package depot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

func testConfig() Config {
	cfg := Config{
		IntervalSeconds: 900,
		NL2Stations:     1,
		L2MaxPowerKW:    12,
		Vehicles: map[string]VehicleSpec{
			"sedan": {Count: 2, CapacityKWh: 60},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func buildRuntime(t *testing.T, cfg Config) (*Runtime, *broker.Memory) {
	t.Helper()
	bus := broker.NewMemory()
	rt, err := Build(cfg, bus, nil, nil)
	require.NoError(t, err)
	return rt, bus
}

func start() time.Time {
	return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestBuildPlugsVehiclesPairwise(t *testing.T) {
	rt, _ := buildRuntime(t, testConfig())
	assert.Equal(t, 2, rt.Fleet().Vehicles.Len())
	assert.Equal(t, 1, rt.Fleet().Stations.Len())
	assert.True(t, rt.Fleet().Vehicles.Get(0).IsPluggedIn())
	assert.False(t, rt.Fleet().Vehicles.Get(1).IsPluggedIn())
}

func TestChargingAdvancesSoC(t *testing.T) {
	rt, _ := buildRuntime(t, testConfig())
	v := rt.Fleet().Vehicles.Get(0)
	v.SoC = 0.5
	v.RefreshStatus()
	require.Equal(t, model.StatusCharging, v.Status)

	require.NoError(t, rt.RunInterval(start()))
	// 12 kW for 15 minutes = 3 kWh on a 60 kWh pack
	assert.InDelta(t, 0.55, v.SoC, 1e-9)
}

func TestFreeReadyVehicleStampsLockout(t *testing.T) {
	rt, _ := buildRuntime(t, testConfig())
	v := rt.Fleet().Vehicles.Get(0)
	v.SoC = 1.0
	v.RefreshStatus()
	require.Equal(t, model.StatusFinishedCharging, v.Status)

	now := start()
	require.NoError(t, rt.RunInterval(now))
	assert.Equal(t, model.StatusParked, v.Status)
	s := rt.Fleet().Stations.Get(0)
	require.NotNil(t, s.LastUnpluggedAt)
	assert.False(t, s.Available(now.Add(10*time.Minute), 15*time.Minute))
}

func TestDepartureOnTime(t *testing.T) {
	cfg := testConfig()
	rt, bus := buildRuntime(t, cfg)
	now := start()
	dep := now.Add(time.Hour)

	vid := 1
	res := model.Reservation{
		ID: "r1", VehicleType: "sedan",
		Departure: dep, Arrival: dep.Add(4 * time.Hour),
		Status: model.ReservationCreated,
	}
	res.Assign(vid, now)
	require.NoError(t, broker.PublishOne(bus, broker.TopicAssignments, res))

	// before departure time nothing happens
	require.NoError(t, rt.RunInterval(now))
	assert.Equal(t, model.StatusParked, rt.Fleet().Vehicles.Get(vid).Status)

	// at departure time the ready vehicle leaves
	require.NoError(t, rt.RunInterval(dep))
	v := rt.Fleet().Vehicles.Get(vid)
	assert.Equal(t, model.StatusDriving, v.Status)
	assert.Equal(t, "r1", v.ActiveReservationID)
	assert.Nil(t, v.ConnectedStationID)

	recs := rt.Departures()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].OnTime)
	assert.Equal(t, vid, *recs[0].VehicleID)
}

func TestDepartureWaitsForSoC(t *testing.T) {
	rt, bus := buildRuntime(t, testConfig())
	now := start()

	vid := 1
	rt.Fleet().Vehicles.Get(vid).SoC = 0.3
	res := model.Reservation{
		ID: "r1", VehicleType: "sedan",
		Departure: now, Arrival: now.Add(4 * time.Hour),
		Status: model.ReservationCreated,
	}
	res.Assign(vid, now)
	require.NoError(t, broker.PublishOne(bus, broker.TopicAssignments, res))

	require.NoError(t, rt.RunInterval(now))
	assert.Equal(t, model.StatusParked, rt.Fleet().Vehicles.Get(vid).Status)
	assert.Empty(t, rt.Departures())

	// once charged, the vehicle departs late and the record says so
	rt.Fleet().Vehicles.Get(vid).SoC = 0.85
	late := now.Add(2 * time.Hour)
	require.NoError(t, rt.RunInterval(late))
	recs := rt.Departures()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].OnTime)
	assert.Equal(t, 2*time.Hour, recs[0].DepartureDelta())
}

func TestMissedDepartureWithoutVehicle(t *testing.T) {
	rt, bus := buildRuntime(t, testConfig())
	now := start()
	res := model.Reservation{
		ID: "r1", VehicleType: "sedan",
		Departure: now.Add(-time.Minute), Arrival: now.Add(4 * time.Hour),
		Status: model.ReservationCreated,
	}
	require.NoError(t, broker.PublishOne(bus, broker.TopicAssignments, res))

	require.NoError(t, rt.RunInterval(now))
	recs := rt.Departures()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].OnTime)
	assert.Nil(t, recs[0].VehicleID)

	// the miss is recorded once, not every interval
	require.NoError(t, rt.RunInterval(now.Add(15*time.Minute)))
	assert.Len(t, rt.Departures(), 1)
}

func TestSimultaneousDeparturesRecordedInIDOrder(t *testing.T) {
	rt, bus := buildRuntime(t, testConfig())
	now := start()
	dep := now.Add(time.Hour)

	for i, id := range []string{"a", "b"} {
		res := model.Reservation{
			ID: id, VehicleType: "sedan",
			Departure: dep, Arrival: dep.Add(4 * time.Hour),
			Status: model.ReservationCreated,
		}
		res.Assign(i, now)
		require.NoError(t, broker.PublishOne(bus, broker.TopicAssignments, res))
	}

	require.NoError(t, rt.RunInterval(dep))
	recs := rt.Departures()
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ReservationID)
	assert.Equal(t, "b", recs[1].ReservationID)
}

func TestMoveChargeInstructionPlugsVehicle(t *testing.T) {
	rt, bus := buildRuntime(t, testConfig())
	now := start()

	// free the plug first
	rt.Fleet().Unplug(0, now.Add(-time.Hour))
	rt.Fleet().Vehicles.Get(0).Status = model.StatusParked

	instr := *rt.Fleet().Vehicles.Get(1)
	station := 0
	instr.ConnectedStationID = &station
	instr.Status = model.StatusCharging
	require.NoError(t, broker.PublishOne(bus, broker.TopicMoveCharge, instr))

	require.NoError(t, rt.RunInterval(now))
	v := rt.Fleet().Vehicles.Get(1)
	require.NotNil(t, v.ConnectedStationID)
	assert.Equal(t, 0, *v.ConnectedStationID)
	assert.Equal(t, 1, *rt.Fleet().Stations.Get(0).ConnectedVehicleID)
}

func TestStaleInstructionDropped(t *testing.T) {
	rt, bus := buildRuntime(t, testConfig())
	now := start()

	// vehicle 0 occupies station 0; instructing vehicle 1 onto it must fail
	instr := *rt.Fleet().Vehicles.Get(1)
	station := 0
	instr.ConnectedStationID = &station
	instr.Status = model.StatusCharging
	require.NoError(t, broker.PublishOne(bus, broker.TopicMoveCharge, instr))

	require.NoError(t, rt.RunInterval(now))
	assert.Nil(t, rt.Fleet().Vehicles.Get(1).ConnectedStationID)
	assert.Equal(t, 0, *rt.Fleet().Stations.Get(0).ConnectedVehicleID)
}

func TestTripLifecycle(t *testing.T) {
	cfg := testConfig()
	rt, bus := buildRuntime(t, cfg)
	now := start()
	dep := now

	vid := 1
	res := model.Reservation{
		ID: "r1", VehicleType: "sedan",
		Departure: dep, Arrival: dep.Add(6 * time.Hour),
		Status: model.ReservationCreated,
	}
	res.Assign(vid, now)
	require.NoError(t, broker.PublishOne(bus, broker.TopicAssignments, res))

	require.NoError(t, rt.RunInterval(now))
	v := rt.Fleet().Vehicles.Get(vid)
	require.Equal(t, model.StatusDriving, v.Status)
	tr, ok := rt.trips[vid]
	require.True(t, ok)
	assert.False(t, tr.arrival.Before(now.Add(2*time.Hour)), "trip duration is floored at two hours")

	socBefore := v.SoC
	interval := cfg.Interval()
	var arrived bool
	for i := 1; i <= 12*4; i++ {
		tick := now.Add(time.Duration(i) * interval)
		require.NoError(t, rt.RunInterval(tick))
		if v.Status == model.StatusParked {
			arrived = true
			break
		}
		assert.GreaterOrEqual(t, v.SoC, cfg.MinSafetySoC)
	}
	require.True(t, arrived, "vehicle must return within the horizon")
	assert.Less(t, v.SoC, socBefore)
	assert.Empty(t, v.ActiveReservationID)

	// arrival publishes exactly one scan event
	scans, err := broker.DrainAll[model.Vehicle](bus, broker.TopicScans)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, vid, scans[0].ID)
	assert.Equal(t, model.StatusParked, scans[0].Status)
}

func TestPublishSnapshotEachInterval(t *testing.T) {
	rt, bus := buildRuntime(t, testConfig())
	require.NoError(t, rt.RunInterval(start()))

	vehicles, err := broker.DrainAll[model.Vehicle](bus, broker.TopicVehicles)
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)

	stations, err := broker.DrainAll[model.Station](bus, broker.TopicStations)
	require.NoError(t, err)
	assert.Len(t, stations, 1)

	demand, err := broker.DrainAll[model.Vehicle](bus, broker.TopicVehiclesDemand)
	require.NoError(t, err)
	assert.Len(t, demand, 2)
}

func TestSoCBoundsHold(t *testing.T) {
	cfg := testConfig()
	rt, _ := buildRuntime(t, cfg)
	v := rt.Fleet().Vehicles.Get(0)
	v.SoC = 0.99
	v.RefreshStatus()

	for i := 0; i < 8; i++ {
		require.NoError(t, rt.RunInterval(start().Add(time.Duration(i)*cfg.Interval())))
		for _, veh := range rt.Fleet().Vehicles.All() {
			assert.LessOrEqual(t, veh.SoC, 1.0)
			assert.GreaterOrEqual(t, veh.SoC, 0.0)
		}
	}
}
