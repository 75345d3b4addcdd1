package scenarios

import (
	"testing"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/depot"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/fleet"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/scheduler"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// RunScenario builds a depot from the scenario definition, feeds the
// reservations in and runs the runtime/scheduler loop for the configured
// number of intervals, then checks the departure tallies.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()

	var cfg depot.Config
	cfg.Vehicles = map[string]depot.VehicleSpec{}
	for _, v := range sc.Vehicles {
		spec := cfg.Vehicles[v.Type]
		spec.Count++
		spec.CapacityKWh = v.CapacityKWh
		cfg.Vehicles[v.Type] = spec
	}
	cfg.SetDefaults()

	vehicles := make([]model.Vehicle, len(sc.Vehicles))
	for i, v := range sc.Vehicles {
		vehicles[i] = v.ToModel()
	}
	stations := make([]model.Station, len(sc.Stations))
	for i, s := range sc.Stations {
		stations[i] = s.ToModel()
	}
	mgr := fleet.NewManager(fleet.NewVehicles(vehicles), fleet.NewStations(stations))

	bus := broker.NewMemory()
	rt := depot.New(cfg, mgr, bus, nil, nil)
	sched, err := scheduler.New(scheduler.Config{}, bus, nil)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	start := time.Date(2022, 1, 1, 6, 0, 0, 0, time.UTC)
	reservations := make([]model.Reservation, len(sc.Reservations))
	for i, r := range sc.Reservations {
		reservations[i] = r.ToModel(start)
	}
	if err := broker.PublishAll(bus, broker.TopicReservations, reservations); err != nil {
		t.Fatalf("publish reservations: %v", err)
	}

	now := start
	for i := 0; i < sc.Intervals; i++ {
		if err := rt.RunInterval(now); err != nil {
			t.Fatalf("runtime interval %d: %v", i, err)
		}
		if err := sched.RunInterval(now); err != nil {
			t.Fatalf("scheduler interval %d: %v", i, err)
		}
		now = now.Add(cfg.Interval())
	}

	var onTime, late, missed int
	for _, d := range rt.Departures() {
		switch {
		case d.VehicleID == nil:
			missed++
		case d.OnTime:
			onTime++
		default:
			late++
		}
	}
	if onTime != sc.Expected.OnTime {
		t.Errorf("on_time: got %d want %d", onTime, sc.Expected.OnTime)
	}
	if late != sc.Expected.Late {
		t.Errorf("late: got %d want %d", late, sc.Expected.Late)
	}
	if missed != sc.Expected.Missed {
		t.Errorf("missed: got %d want %d", missed, sc.Expected.Missed)
	}
}
