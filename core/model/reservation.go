package model

import "time"

// ReservationStatus tracks a reservation through its lifecycle.
type ReservationStatus string

const (
	ReservationCreated      ReservationStatus = "created"
	ReservationActive       ReservationStatus = "active"
	ReservationReassignment ReservationStatus = "vehicle_reassignment"
	ReservationComplete     ReservationStatus = "complete"
)

// Reservation is a scheduled departure (or short-lead walk-in) for a vehicle
// of a given type. Arrival is the estimated return time used for overlap
// checks against other reservations on the same vehicle.
type Reservation struct {
	ID                string            `json:"id"`
	VehicleType       string            `json:"vehicle_type"`
	Departure         time.Time         `json:"departure_timestamp"`
	Arrival           time.Time         `json:"arrival_timestamp"`
	CreatedAt         time.Time         `json:"created_at"`
	AssignedAt        *time.Time        `json:"assigned_at,omitempty"`
	AssignedVehicleID *int              `json:"assigned_vehicle_id,omitempty"`
	Status            ReservationStatus `json:"status"`
	WalkIn            bool              `json:"walk_in"`
}

// IsAssigned reports whether a vehicle is currently attached.
func (r *Reservation) IsAssigned() bool {
	return r.AssignedVehicleID != nil
}

// Expired reports whether the departure time has already passed.
func (r *Reservation) Expired(now time.Time) bool {
	return !r.Departure.After(now)
}

// Overlaps reports whether the [departure, arrival) window intersects this
// reservation's window. Two windows overlap unless one entirely precedes
// the other.
func (r *Reservation) Overlaps(departure, arrival time.Time) bool {
	if departure.After(r.Arrival) {
		return false
	}
	if arrival.Before(r.Departure) {
		return false
	}
	return true
}

// Assign attaches the vehicle and stamps the assignment time.
func (r *Reservation) Assign(vehicleID int, now time.Time) {
	id := vehicleID
	r.AssignedVehicleID = &id
	t := now
	r.AssignedAt = &t
}

// ClearAssignment detaches the vehicle and flags the reservation for
// reassignment so the runtime knows to release the previous vehicle.
func (r *Reservation) ClearAssignment() {
	r.AssignedVehicleID = nil
	r.Status = ReservationReassignment
}
