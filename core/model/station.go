package model

import "time"

// StationClass identifies the charging hardware class of a station.
type StationClass string

const (
	ClassL2   StationClass = "L2"
	ClassDCFC StationClass = "DCFC"
)

// Station is a single charging position. A station serves at most one
// vehicle at a time; ConnectedVehicleID mirrors the vehicle's
// ConnectedStationID.
type Station struct {
	ID                 int          `json:"id"`
	Class              StationClass `json:"class"`
	MaxPowerKW         float64      `json:"max_power_kw"`
	ConnectedVehicleID *int         `json:"connected_vehicle_id,omitempty"`
	LastUnpluggedAt    *time.Time   `json:"last_unplugged_at,omitempty"`
}

// IsOccupied reports whether a vehicle currently references this station.
func (s *Station) IsOccupied() bool {
	return s.ConnectedVehicleID != nil
}

// Available reports whether the station can accept a vehicle at now.
// A station that was unplugged recently stays unavailable for the lockout
// period, which models the time needed to move the prior vehicle off the
// plug.
func (s *Station) Available(now time.Time, lockout time.Duration) bool {
	if s.IsOccupied() {
		return false
	}
	if s.LastUnpluggedAt != nil && !now.After(s.LastUnpluggedAt.Add(lockout)) {
		return false
	}
	return true
}

// PlugIn records the vehicle occupying this station.
func (s *Station) PlugIn(vehicleID int) {
	id := vehicleID
	s.ConnectedVehicleID = &id
}

// Unplug clears the occupying vehicle and stamps the lockout timer.
func (s *Station) Unplug(now time.Time) {
	s.ConnectedVehicleID = nil
	t := now
	s.LastUnpluggedAt = &t
}
