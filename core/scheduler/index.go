package scheduler

import (
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// window is a half-open [departure, arrival) commitment on a vehicle.
type window struct {
	departure time.Time
	arrival   time.Time
}

func (w window) overlaps(departure, arrival time.Time) bool {
	if departure.After(w.arrival) {
		return false
	}
	if arrival.Before(w.departure) {
		return false
	}
	return true
}

// pastAssignment is the last communicated decision for one reservation.
type pastAssignment struct {
	vehicleID *int
	departure time.Time
}

// assignmentIndex is the canonical record of every assignment the scheduler
// has communicated. It answers two questions: has this reservation changed
// since last time (idempotence), and which vehicles are committed to a
// window overlapping a candidate reservation (overlap exclusion). Windows
// are keyed by vehicle id so exclusion is a single lookup pass.
type assignmentIndex struct {
	byReservation map[string]pastAssignment
	byVehicle     map[int]map[string]window
}

func newAssignmentIndex() *assignmentIndex {
	return &assignmentIndex{
		byReservation: make(map[string]pastAssignment),
		byVehicle:     make(map[int]map[string]window),
	}
}

// Record stores the communicated decision for the reservation, replacing
// any prior window it held on any vehicle.
func (ix *assignmentIndex) Record(res model.Reservation) {
	if prior, ok := ix.byReservation[res.ID]; ok && prior.vehicleID != nil {
		if wins := ix.byVehicle[*prior.vehicleID]; wins != nil {
			delete(wins, res.ID)
			if len(wins) == 0 {
				delete(ix.byVehicle, *prior.vehicleID)
			}
		}
	}

	pa := pastAssignment{departure: res.Departure}
	if res.AssignedVehicleID != nil {
		id := *res.AssignedVehicleID
		pa.vehicleID = &id
		if ix.byVehicle[id] == nil {
			ix.byVehicle[id] = make(map[string]window)
		}
		ix.byVehicle[id][res.ID] = window{departure: res.Departure, arrival: res.Arrival}
	}
	ix.byReservation[res.ID] = pa
}

// Lookup returns the last communicated decision for the reservation.
func (ix *assignmentIndex) Lookup(resID string) (pastAssignment, bool) {
	pa, ok := ix.byReservation[resID]
	return pa, ok
}

// OverlappingVehicles returns the vehicles holding a commitment that
// overlaps [departure, arrival), ignoring the window held by excludeResID
// itself so a reservation never blocks its own vehicle.
func (ix *assignmentIndex) OverlappingVehicles(departure, arrival time.Time, excludeResID string) map[int]bool {
	out := make(map[int]bool)
	for vid, wins := range ix.byVehicle {
		for resID, w := range wins {
			if resID == excludeResID {
				continue
			}
			if w.overlaps(departure, arrival) {
				out[vid] = true
				break
			}
		}
	}
	return out
}

// Committed reports whether the vehicle holds any commitment ending after
// now.
func (ix *assignmentIndex) Committed(vehicleID int, now time.Time) bool {
	for _, w := range ix.byVehicle[vehicleID] {
		if w.arrival.After(now) {
			return true
		}
	}
	return false
}
