// Package depot simulates the physical side of the depot: charging,
// driving, departures and arrivals. It owns the authoritative vehicle and
// station state and exchanges snapshots with the scheduler over the broker.
package depot

import (
	"fmt"
	"sort"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/fleet"
	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// Runtime advances the depot's physical state one interval at a time. It
// consumes the scheduler's instructions from the previous interval and
// publishes the refreshed snapshot for the next one. Infeasible or stale
// instructions are dropped, never raised: the scheduler re-evaluates every
// interval and reissues anything that still applies.
type Runtime struct {
	cfg   Config
	fleet *fleet.Manager
	bus   broker.Broker
	log   logger.Logger
	sink  coremetrics.MetricsSink

	reservations map[string]model.Reservation
	trips        map[int]trip
	planner      *tripPlanner

	departures []model.DepartureRecord
}

// New builds the runtime around existing registries.
func New(cfg Config, mgr *fleet.Manager, bus broker.Broker, sink coremetrics.MetricsSink, log logger.Logger) *Runtime {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runtime{
		cfg:          cfg,
		fleet:        mgr,
		bus:          bus,
		log:          log,
		sink:         sink,
		reservations: make(map[string]model.Reservation),
		trips:        make(map[int]trip),
		planner:      newTripPlanner(cfg),
	}
}

// Build constructs the depot from configuration: stations per class, then
// vehicles per type, with vehicles plugged in pairwise so the run starts
// with the plugs busy.
func Build(cfg Config, bus broker.Broker, sink coremetrics.MetricsSink, log logger.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("depot config: %w", err)
	}

	stations := make([]model.Station, 0, cfg.NL2Stations+cfg.NDCFCStations)
	id := 0
	for i := 0; i < cfg.NL2Stations; i++ {
		stations = append(stations, model.Station{ID: id, Class: model.ClassL2, MaxPowerKW: cfg.L2MaxPowerKW})
		id++
	}
	for i := 0; i < cfg.NDCFCStations; i++ {
		stations = append(stations, model.Station{ID: id, Class: model.ClassDCFC, MaxPowerKW: cfg.DCFCMaxPowerKW})
		id++
	}

	var vehicles []model.Vehicle
	vid := 0
	for _, typ := range sortedTypes(cfg.Vehicles) {
		spec := cfg.Vehicles[typ]
		for i := 0; i < spec.Count; i++ {
			vehicles = append(vehicles, model.Vehicle{
				ID:          vid,
				Type:        typ,
				SoC:         cfg.InitialSoC,
				CapacityKWh: spec.CapacityKWh,
				Status:      model.StatusParked,
			})
			vid++
		}
	}

	mgr := fleet.NewManager(fleet.NewVehicles(vehicles), fleet.NewStations(stations))
	mgr.PlugInitial()
	return New(cfg, mgr, bus, sink, log), nil
}

func sortedTypes(specs map[string]VehicleSpec) []string {
	types := make([]string, 0, len(specs))
	for t := range specs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Fleet exposes the underlying registries, mainly for tests and the runner.
func (r *Runtime) Fleet() *fleet.Manager { return r.fleet }

// Departures returns every departure outcome recorded so far.
func (r *Runtime) Departures() []model.DepartureRecord { return r.departures }

// RunInterval advances the depot by one interval. Steps run in fixed order;
// reordering them breaks the single-writer discipline the scheduler relies
// on.
func (r *Runtime) RunInterval(now time.Time) error {
	instructions, err := r.ingest()
	if err != nil {
		return err
	}

	r.fleet.FreeReadyVehicles(now, r.cfg.ReadySoC)
	r.departVehicles(now)
	r.applyMoveCharge(instructions)
	r.trackNewTrips(now)
	r.decaySoC()
	r.detectArrivals(now)
	r.chargeVehicles()

	return r.publish(now)
}

// ingest drains the prior interval's instructions and assignments.
func (r *Runtime) ingest() (map[int]model.Vehicle, error) {
	instructions := make(map[int]model.Vehicle)
	if err := broker.DrainInto(r.bus, broker.TopicMoveCharge, instructions, vehicleKey); err != nil {
		return nil, err
	}
	if err := broker.DrainInto(r.bus, broker.TopicAssignments, r.reservations, reservationKey); err != nil {
		return nil, err
	}
	return instructions, nil
}

// departVehicles releases every assigned, ready vehicle whose departure
// time has come, and records the outcome. Reservations whose departure
// passes without any assigned vehicle are recorded as missed and dropped.
func (r *Runtime) departVehicles(now time.Time) {
	ids := make([]string, 0, len(r.reservations))
	for id := range r.reservations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res := r.reservations[id]
		if res.Status == model.ReservationComplete || res.Status == model.ReservationActive {
			continue
		}
		if now.Before(res.Departure) {
			continue
		}

		if !res.IsAssigned() {
			// vehicle_reassignment records arrive unassigned; a miss is only
			// final once the departure time has passed.
			r.recordDeparture(res, nil, now, false)
			delete(r.reservations, id)
			continue
		}

		v := r.fleet.Vehicles.Get(*res.AssignedVehicleID)
		if v == nil {
			r.recordDeparture(res, nil, now, false)
			delete(r.reservations, id)
			continue
		}
		if v.Status == model.StatusDriving || v.SoC < r.cfg.DepartureSoC {
			// not ready yet; retried next interval, departing late if needed
			continue
		}

		r.fleet.Unplug(v.ID, now)
		v.Status = model.StatusDriving
		v.ActiveReservationID = res.ID
		v.UpdatedAt = now
		res.Status = model.ReservationActive
		r.reservations[id] = res

		onTime := now.Sub(res.Departure) < r.cfg.Interval()
		r.recordDeparture(res, v, now, onTime)
		r.log.Debugw("vehicle departed", map[string]any{
			"vehicle_id":     v.ID,
			"reservation_id": res.ID,
			"on_time":        onTime,
		})
	}
}

func (r *Runtime) recordDeparture(res model.Reservation, v *model.Vehicle, now time.Time, onTime bool) {
	rec := model.DepartureRecord{
		ReservationID:      res.ID,
		ScheduledDeparture: res.Departure,
		ActualDeparture:    now,
		OnTime:             onTime,
	}
	if v != nil {
		id := v.ID
		soc := v.SoC
		rec.VehicleID = &id
		rec.SoC = &soc
	}
	r.departures = append(r.departures, rec)
	if err := r.sink.RecordDeparture(rec); err != nil {
		r.log.Warnf("record departure: %v", err)
	}
}

// applyMoveCharge plugs vehicles into their instructed stations. An
// instruction whose vehicle or station is no longer compatible is dropped.
func (r *Runtime) applyMoveCharge(instructions map[int]model.Vehicle) {
	for id, instr := range instructions {
		if instr.ConnectedStationID == nil {
			continue
		}
		v := r.fleet.Vehicles.Get(id)
		if v == nil {
			continue
		}
		if v.Status != model.StatusParked && v.Status != model.StatusCharging {
			continue
		}
		if !r.fleet.Plug(id, *instr.ConnectedStationID) {
			r.log.Debugf("dropped stale move/charge instruction veh=%d station=%d", id, *instr.ConnectedStationID)
		}
	}
}

// trackNewTrips samples trip metadata for vehicles that just started
// driving.
func (r *Runtime) trackNewTrips(now time.Time) {
	for _, v := range r.fleet.Vehicles.All() {
		if v.Status != model.StatusDriving {
			continue
		}
		if _, ok := r.trips[v.ID]; ok {
			continue
		}
		t := r.planner.plan(v, now)
		r.trips[v.ID] = t
		r.log.Debugw("trip planned", map[string]any{
			"vehicle_id": v.ID,
			"arrival":    t.arrival,
		})
	}
}

// decaySoC applies each driving vehicle's per-interval SoC decrement.
func (r *Runtime) decaySoC() {
	for id, t := range r.trips {
		if v := r.fleet.Vehicles.Get(id); v != nil {
			v.Discharge(t.socDecrement, r.cfg.MinSafetySoC)
		}
	}
}

// detectArrivals parks vehicles whose expected arrival time has passed,
// completes their reservations and publishes a scan event so the scheduler
// returns them to the assignable pool.
func (r *Runtime) detectArrivals(now time.Time) {
	for id, t := range r.trips {
		if now.Before(t.arrival) {
			continue
		}
		v := r.fleet.Vehicles.Get(id)
		if v == nil {
			delete(r.trips, id)
			continue
		}
		v.Status = model.StatusParked
		v.UpdatedAt = now
		if res, ok := r.reservations[v.ActiveReservationID]; ok {
			res.Status = model.ReservationComplete
			r.reservations[res.ID] = res
		}
		v.ActiveReservationID = ""
		delete(r.trips, id)

		if err := broker.PublishOne(r.bus, broker.TopicScans, *v); err != nil {
			r.log.Warnf("publish scan: %v", err)
		}
	}
}

// chargeVehicles adds energy to every plugged, charging vehicle using its
// station's power rating.
func (r *Runtime) chargeVehicles() {
	for _, v := range r.fleet.Vehicles.All() {
		if v.Status != model.StatusCharging || v.ConnectedStationID == nil {
			continue
		}
		s := r.fleet.Stations.Get(*v.ConnectedStationID)
		if s == nil {
			continue
		}
		v.Charge(r.cfg.Interval(), s.MaxPowerKW)
	}
}

// publish pushes the refreshed vehicle/station snapshot onto the broker and
// records it with the metrics sink.
func (r *Runtime) publish(now time.Time) error {
	vehicles := r.fleet.Vehicles.Snapshot()
	stations := r.fleet.Stations.Snapshot()

	if err := broker.PublishAll(r.bus, broker.TopicVehicles, vehicles); err != nil {
		return err
	}
	if err := broker.PublishAll(r.bus, broker.TopicVehiclesDemand, vehicles); err != nil {
		return err
	}
	if err := broker.PublishAll(r.bus, broker.TopicStations, stations); err != nil {
		return err
	}

	ev := coremetrics.SnapshotEvent{Time: now, Vehicles: vehicles, Stations: stations}
	if err := r.sink.RecordSnapshot(ev); err != nil {
		r.log.Warnf("record snapshot: %v", err)
	}
	return nil
}

func vehicleKey(v model.Vehicle) int            { return v.ID }
func reservationKey(r model.Reservation) string { return r.ID }
