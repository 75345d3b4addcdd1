package model

import (
	"time"
)

// VehicleStatus enumerates the physical states a vehicle can be in.
type VehicleStatus string

const (
	StatusParked           VehicleStatus = "parked"
	StatusCharging         VehicleStatus = "charging"
	StatusFinishedCharging VehicleStatus = "finished_charging"
	StatusDriving          VehicleStatus = "driving"
	StatusUnknown          VehicleStatus = "unknown"
)

// Vehicle represents a depot vehicle. ConnectedStationID is set iff the
// vehicle is plugged in (status charging or finished_charging); a driving
// vehicle never references a station.
type Vehicle struct {
	ID                  int           `json:"id"`
	Type                string        `json:"type"`
	SoC                 float64       `json:"state_of_charge"` // fraction of capacity in [0,1]
	CapacityKWh         float64       `json:"energy_capacity_kwh"`
	ConnectedStationID  *int          `json:"connected_station_id,omitempty"`
	Status              VehicleStatus `json:"status"`
	ActiveReservationID string        `json:"active_reservation_id,omitempty"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// IsPluggedIn reports whether the vehicle currently references a station.
func (v *Vehicle) IsPluggedIn() bool {
	return v.ConnectedStationID != nil
}

// PlugIn connects the vehicle to the given station and refreshes its status.
func (v *Vehicle) PlugIn(stationID int) {
	id := stationID
	v.ConnectedStationID = &id
	v.RefreshStatus()
}

// Unplug clears the station reference. The caller decides the follow-up
// status (parked or driving).
func (v *Vehicle) Unplug() {
	v.ConnectedStationID = nil
}

// Charge adds energy at powerKW for the given duration, capped at full
// capacity, and refreshes the status.
func (v *Vehicle) Charge(d time.Duration, powerKW float64) {
	if v.CapacityKWh <= 0 {
		return
	}
	chargedKWh := powerKW * d.Hours()
	currentKWh := v.SoC * v.CapacityKWh
	newKWh := currentKWh + chargedKWh
	if newKWh > v.CapacityKWh {
		newKWh = v.CapacityKWh
	}
	v.SoC = newKWh / v.CapacityKWh
	v.RefreshStatus()
}

// Discharge removes a SoC fraction, never dropping below floor.
func (v *Vehicle) Discharge(delta, floor float64) {
	v.SoC -= delta
	if v.SoC < floor {
		v.SoC = floor
	}
}

// RefreshStatus derives the charging-related status from the plug state and
// SoC. Parked/driving transitions are driven by the depot runtime, not here.
func (v *Vehicle) RefreshStatus() {
	if !v.IsPluggedIn() {
		return
	}
	if v.SoC < 1 {
		v.Status = StatusCharging
	} else {
		v.Status = StatusFinishedCharging
	}
}

// EnergyDeficitKWh returns the energy needed to lift the vehicle from its
// current SoC to targetSoC. Negative deficits are reported as zero.
func (v *Vehicle) EnergyDeficitKWh(targetSoC float64) float64 {
	delta := (targetSoC - v.SoC) * v.CapacityKWh
	if delta < 0 {
		return 0
	}
	return delta
}

// CanMeetDeadlineAtRate reports whether charging at chargingRateKW can lift
// the vehicle to targetSoC before deadline minus padding, starting at now.
func (v *Vehicle) CanMeetDeadlineAtRate(now, deadline time.Time, padding time.Duration, chargingRateKW, targetSoC float64) bool {
	final := deadline.Add(-padding)
	if !final.After(now) {
		return false
	}
	hours := final.Sub(now).Hours()
	return hours*chargingRateKW > v.EnergyDeficitKWh(targetSoC)
}
