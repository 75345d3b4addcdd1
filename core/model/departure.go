package model

import "time"

// DepartureRecord captures the outcome of one scheduled departure, on time
// or missed. These records are the minimum observability output of a run.
type DepartureRecord struct {
	ReservationID      string    `json:"reservation_id"`
	VehicleID          *int      `json:"vehicle_id,omitempty"`
	ScheduledDeparture time.Time `json:"scheduled_departure"`
	ActualDeparture    time.Time `json:"actual_departure"`
	OnTime             bool      `json:"on_time"`
	SoC                *float64  `json:"state_of_charge,omitempty"` // last known SoC, nil when no vehicle was attached
}

// DepartureDelta returns how late the departure was. On-time departures
// report zero or negative deltas.
func (d DepartureRecord) DepartureDelta() time.Duration {
	return d.ActualDeparture.Sub(d.ScheduledDeparture)
}
