// Package scheduler implements the greedy assignment heuristic: it matches
// vehicles to pending reservations and low vehicles to charging stations,
// honoring deadline feasibility, type compatibility and non-overlap of
// future commitments, while maintaining a walk-in ready pool.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/fleet"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

// Scheduler consumes the runtime's snapshots and produces reservation
// assignments and move/charge instructions. It owns only working copies of
// the fleet plus its own bookkeeping: walk-in pool membership and the past
// assignments index used for idempotence and overlap exclusion.
type Scheduler struct {
	cfg Config
	bus broker.Broker
	log logger.Logger

	vehicles     map[int]model.Vehicle
	stations     map[int]model.Station
	reservations map[string]model.Reservation

	walkInPool map[int]bool
	past       *assignmentIndex

	// per-interval outboxes, wiped after publishing
	assignments map[string]model.Reservation
	moveCharge  map[int]model.Vehicle
	claimed     map[int]bool
}

// New creates a Scheduler for the given broker.
func New(cfg Config, bus broker.Broker, log logger.Logger) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler config: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{
		cfg:          cfg,
		bus:          bus,
		log:          log,
		vehicles:     make(map[int]model.Vehicle),
		stations:     make(map[int]model.Station),
		reservations: make(map[string]model.Reservation),
		walkInPool:   make(map[int]bool),
		past:         newAssignmentIndex(),
	}, nil
}

// RunInterval computes one interval's assignments from the last-published
// snapshot and publishes them. Aside from the outgoing messages it mutates
// only the scheduler's own bookkeeping.
func (s *Scheduler) RunInterval(now time.Time) error {
	if err := s.poll(); err != nil {
		return err
	}
	s.assignments = make(map[string]model.Reservation)
	s.moveCharge = make(map[int]model.Vehicle)
	s.claimed = make(map[int]bool)

	s.dropExpiredReservations(now)
	s.replenishWalkInPool(now)
	s.assignReservations(now)
	s.assignStationsToReservations(now)
	s.assignStationsToWalkInPool(now)
	s.assignStationsToRemaining(now)

	return s.publish()
}

// poll drains the vehicle/station/reservation snapshots and arrival scans.
// Arrived vehicles are parked locally so they re-enter the assignable pool
// immediately.
func (s *Scheduler) poll() error {
	if err := broker.DrainInto(s.bus, broker.TopicVehicles, s.vehicles, func(v model.Vehicle) int { return v.ID }); err != nil {
		return err
	}
	if err := broker.DrainInto(s.bus, broker.TopicStations, s.stations, func(st model.Station) int { return st.ID }); err != nil {
		return err
	}
	if err := broker.DrainInto(s.bus, broker.TopicReservations, s.reservations, func(r model.Reservation) string { return r.ID }); err != nil {
		return err
	}
	scans, err := broker.DrainAll[model.Vehicle](s.bus, broker.TopicScans)
	if err != nil {
		return err
	}
	for _, v := range scans {
		v.Status = model.StatusParked
		v.ActiveReservationID = ""
		s.vehicles[v.ID] = v
	}
	return nil
}

func (s *Scheduler) dropExpiredReservations(now time.Time) {
	for id, res := range s.reservations {
		if res.Expired(now) {
			delete(s.reservations, id)
		}
	}
}

// replenishWalkInPool keeps the per-type ready pool at its configured
// floor, pulling the highest-SoC free candidates. Vehicles that drove off
// or took a commitment drop out of the pool first.
func (s *Scheduler) replenishWalkInPool(now time.Time) {
	for id := range s.walkInPool {
		v, ok := s.vehicles[id]
		if !ok || v.Status == model.StatusDriving || s.past.Committed(id, now) {
			delete(s.walkInPool, id)
		}
	}

	counts := make(map[string]int)
	for id := range s.walkInPool {
		counts[s.vehicles[id].Type]++
	}

	types := make([]string, 0, len(s.cfg.MinimumReadyPool))
	for t := range s.cfg.MinimumReadyPool {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, typ := range types {
		deficit := s.cfg.MinimumReadyPool[typ] - counts[typ]
		if deficit <= 0 {
			continue
		}
		candidates := fleet.SortBySoCDesc(s.vehiclePtrs(), typ)
		for _, v := range candidates {
			if deficit == 0 {
				break
			}
			if s.walkInPool[v.ID] || v.Status == model.StatusDriving || s.past.Committed(v.ID, now) {
				continue
			}
			s.walkInPool[v.ID] = true
			deficit--
		}
	}
}

// assignReservations runs the greedy matching independently per vehicle
// type: vehicles by descending SoC, reservations by ascending departure.
// A vehicle takes at most one new reservation per pass, so demand spreads
// across the fleet instead of piling onto the highest-SoC vehicle.
func (s *Scheduler) assignReservations(now time.Time) {
	for _, typ := range s.vehicleTypes() {
		candidates := fleet.SortBySoCDesc(s.vehiclePtrs(), typ)
		if len(candidates) == 0 {
			continue
		}
		pending := s.reservationsByDeparture(typ)
		used := make(map[int]bool)

		for _, res := range pending {
			prior, known := s.past.Lookup(res.ID)
			if known && !s.materiallyChanged(prior, res) {
				continue
			}

			excluded := s.past.OverlappingVehicles(res.Departure, res.Arrival, res.ID)
			var pick *model.Vehicle
			for _, v := range candidates {
				if excluded[v.ID] || used[v.ID] {
					continue
				}
				pick = v
				break
			}

			if pick != nil {
				used[pick.ID] = true
				res.Assign(pick.ID, now)
				s.assignments[res.ID] = res
				s.reservations[res.ID] = res
				s.past.Record(res)
				s.log.Debugw("reservation assigned", map[string]any{
					"reservation_id": res.ID,
					"vehicle_id":     pick.ID,
					"departure":      res.Departure,
				})
				continue
			}

			// No feasible vehicle. Only previously assigned reservations
			// need a clearing message so the runtime releases the vehicle;
			// a fresh failed match is simply retried next interval.
			if known && prior.vehicleID != nil {
				res.ClearAssignment()
				s.assignments[res.ID] = res
				s.reservations[res.ID] = res
				s.past.Record(res)
			}
		}
	}
}

// materiallyChanged reports whether the incoming reservation differs from
// the last communicated assignment. Unchanged vehicle id and departure
// time mean no message is needed.
func (s *Scheduler) materiallyChanged(prior pastAssignment, res model.Reservation) bool {
	if !prior.departure.Equal(res.Departure) {
		return true
	}
	if res.AssignedVehicleID == nil {
		// demand updates arrive unassigned; the held vehicle still counts
		return prior.vehicleID == nil
	}
	if prior.vehicleID == nil {
		return true
	}
	return *prior.vehicleID != *res.AssignedVehicleID
}

func (s *Scheduler) vehicleTypes() []string {
	seen := map[string]bool{}
	for _, v := range s.vehicles {
		seen[v.Type] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (s *Scheduler) vehiclePtrs() []*model.Vehicle {
	ids := make([]int, 0, len(s.vehicles))
	for id := range s.vehicles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*model.Vehicle, 0, len(ids))
	for _, id := range ids {
		v := s.vehicles[id]
		out = append(out, &v)
	}
	return out
}

func (s *Scheduler) reservationsByDeparture(vehicleType string) []model.Reservation {
	out := make([]model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if vehicleType == fleet.AnyType || r.VehicleType == vehicleType {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Departure.Equal(out[j].Departure) {
			return out[i].Departure.Before(out[j].Departure)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// publish ships the interval's decisions and wipes the outboxes.
func (s *Scheduler) publish() error {
	assignments := make([]model.Reservation, 0, len(s.assignments))
	for _, r := range s.reservations {
		if out, ok := s.assignments[r.ID]; ok {
			assignments = append(assignments, out)
		}
	}
	// clearing messages for reservations no longer in the working set
	for id, out := range s.assignments {
		if _, ok := s.reservations[id]; !ok {
			assignments = append(assignments, out)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	if err := broker.PublishAll(s.bus, broker.TopicAssignments, assignments); err != nil {
		return err
	}

	instructions := make([]model.Vehicle, 0, len(s.moveCharge))
	ids := make([]int, 0, len(s.moveCharge))
	for id := range s.moveCharge {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		instructions = append(instructions, s.moveCharge[id])
	}
	if err := broker.PublishAll(s.bus, broker.TopicMoveCharge, instructions); err != nil {
		return err
	}

	s.assignments = nil
	s.moveCharge = nil
	s.claimed = nil
	return nil
}
