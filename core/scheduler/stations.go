package scheduler

import (
	"sort"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/fleet"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// availableStation returns the first station of the class that is
// unoccupied, past its lockout and not claimed by an instruction issued
// earlier in this interval.
func (s *Scheduler) availableStation(class model.StationClass, now time.Time) *model.Station {
	ids := make([]int, 0, len(s.stations))
	for id := range s.stations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		st := s.stations[id]
		if st.Class != class || s.claimed[id] {
			continue
		}
		if st.Available(now, s.cfg.Lockout()) {
			return &st
		}
	}
	return nil
}

// preferL2 picks an L2 station when possible, falling back to DCFC.
func (s *Scheduler) preferL2(now time.Time) *model.Station {
	if st := s.availableStation(model.ClassL2, now); st != nil {
		return st
	}
	return s.availableStation(model.ClassDCFC, now)
}

// emitMoveCharge queues a move/charge instruction and claims the station so
// no later step in this interval double-books it. The local working copy is
// updated as if the plug already happened.
func (s *Scheduler) emitMoveCharge(v model.Vehicle, st *model.Station, now time.Time) {
	v.ConnectedStationID = &st.ID
	v.Status = model.StatusCharging
	v.UpdatedAt = now
	s.moveCharge[v.ID] = v
	s.claimed[st.ID] = true
	s.vehicles[v.ID] = v

	local := s.stations[st.ID]
	local.PlugIn(v.ID)
	s.stations[st.ID] = local
}

// assignStationsToReservations walks this interval's assignments in
// departure order and queues charging for any vehicle below the departure
// minimum: L2 when it can deliver the energy delta before the padded
// deadline, else DCFC, else nothing this interval; the deadline tightens
// and the decision is retried next tick.
func (s *Scheduler) assignStationsToReservations(now time.Time) {
	out := make([]model.Reservation, 0, len(s.assignments))
	for _, r := range s.assignments {
		if r.IsAssigned() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Departure.Equal(out[j].Departure) {
			return out[i].Departure.Before(out[j].Departure)
		}
		return out[i].ID < out[j].ID
	})

	for _, res := range out {
		v, ok := s.vehicles[*res.AssignedVehicleID]
		if !ok || v.SoC >= s.cfg.DepartureSoC {
			continue
		}
		if _, pending := s.moveCharge[v.ID]; pending {
			continue
		}

		l2Feasible := v.CanMeetDeadlineAtRate(now, res.Departure, s.cfg.Padding(), s.cfg.L2ChargingRateKW, s.cfg.DepartureSoC)
		if l2Feasible {
			if st := s.availableStation(model.ClassL2, now); st != nil {
				s.emitMoveCharge(v, st, now)
				continue
			}
		}
		if st := s.availableStation(model.ClassDCFC, now); st != nil {
			s.emitMoveCharge(v, st, now)
		}
	}
}

// assignStationsToWalkInPool charges the walk-in ready pool, highest SoC
// first so vehicles become ready soonest. L2 is preferred; the pool has no
// hard deadline.
func (s *Scheduler) assignStationsToWalkInPool(now time.Time) {
	ids := make([]int, 0, len(s.walkInPool))
	for id := range s.walkInPool {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	pool := make([]*model.Vehicle, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.vehicles[id]; ok {
			cp := v
			pool = append(pool, &cp)
		}
	}

	for _, v := range fleet.SortBySoCDesc(pool, fleet.AnyType) {
		if !s.wantsCharge(*v) {
			continue
		}
		st := s.preferL2(now)
		if st == nil {
			return
		}
		s.emitMoveCharge(*v, st, now)
	}
}

// assignStationsToRemaining fills leftover plugs with any other vehicle
// below the departure minimum.
func (s *Scheduler) assignStationsToRemaining(now time.Time) {
	for _, v := range fleet.SortBySoCDesc(s.vehiclePtrs(), fleet.AnyType) {
		if !s.wantsCharge(*v) {
			continue
		}
		st := s.preferL2(now)
		if st == nil {
			return
		}
		s.emitMoveCharge(*v, st, now)
	}
}

// wantsCharge filters vehicles that should receive a charging instruction:
// below the departure minimum, at the depot, not already charging and not
// already instructed this interval.
func (s *Scheduler) wantsCharge(v model.Vehicle) bool {
	if v.SoC >= s.cfg.DepartureSoC {
		return false
	}
	if v.Status == model.StatusCharging || v.Status == model.StatusDriving {
		return false
	}
	if _, pending := s.moveCharge[v.ID]; pending {
		return false
	}
	return true
}
