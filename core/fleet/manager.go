package fleet

import (
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// Manager pairs the vehicle and station registries and keeps the two sides
// of a plug connection in agreement: a vehicle's ConnectedStationID and the
// station's ConnectedVehicleID always point at each other or are both clear.
type Manager struct {
	Vehicles *Vehicles
	Stations *Stations
}

// NewManager wraps the given registries.
func NewManager(vehicles *Vehicles, stations *Stations) *Manager {
	return &Manager{Vehicles: vehicles, Stations: stations}
}

// Plug connects the vehicle to the station on both sides. It refuses an
// occupied station or a missing entity.
func (m *Manager) Plug(vehicleID, stationID int) bool {
	v := m.Vehicles.Get(vehicleID)
	s := m.Stations.Get(stationID)
	if v == nil || s == nil || s.IsOccupied() {
		return false
	}
	if v.IsPluggedIn() && *v.ConnectedStationID != stationID {
		return false
	}
	v.PlugIn(stationID)
	s.PlugIn(vehicleID)
	return true
}

// Unplug disconnects the vehicle from whichever station references it and
// stamps the station's lockout timer.
func (m *Manager) Unplug(vehicleID int, now time.Time) {
	if s := m.Stations.ByVehicle(vehicleID); s != nil {
		s.Unplug(now)
	}
	if v := m.Vehicles.Get(vehicleID); v != nil {
		v.Unplug()
	}
}

// FreeReadyVehicles unplugs and parks every vehicle at or above readySoC
// that is still occupying a station, freeing the plug for the next vehicle.
func (m *Manager) FreeReadyVehicles(now time.Time, readySoC float64) {
	for _, v := range m.Vehicles.All() {
		if v.SoC >= readySoC && (v.Status == model.StatusCharging || v.Status == model.StatusFinishedCharging) {
			m.Unplug(v.ID, now)
			v.Status = model.StatusParked
		}
	}
}

// PlugInitial plugs vehicles into stations pairwise at depot build time so a
// run does not start with every plug idle.
func (m *Manager) PlugInitial() {
	stations := m.Stations.All()
	vehicles := m.Vehicles.All()
	n := len(stations)
	if len(vehicles) < n {
		n = len(vehicles)
	}
	for i := 0; i < n; i++ {
		m.Plug(vehicles[i].ID, stations[i].ID)
	}
}
