package fleet

import (
	"sort"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// Stations is the registry of charging stations keyed by id.
type Stations struct {
	byID map[int]*model.Station
}

// NewStations builds a registry from the given stations.
func NewStations(stations []model.Station) *Stations {
	r := &Stations{byID: make(map[int]*model.Station, len(stations))}
	for i := range stations {
		s := stations[i]
		r.byID[s.ID] = &s
	}
	return r
}

// Get returns the station with the given id, or nil.
func (r *Stations) Get(id int) *model.Station {
	return r.byID[id]
}

// Put inserts or overwrites a station by id.
func (r *Stations) Put(s model.Station) {
	cp := s
	r.byID[s.ID] = &cp
}

// Len returns the number of stations in the registry.
func (r *Stations) Len() int { return len(r.byID) }

// All returns every station, ordered by id for deterministic iteration.
func (r *Stations) All() []*model.Station {
	out := make([]*model.Station, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns value copies of every station, ordered by id.
func (r *Stations) Snapshot() []model.Station {
	all := r.All()
	out := make([]model.Station, 0, len(all))
	for _, s := range all {
		out = append(out, *s)
	}
	return out
}

// FirstAvailable returns the first station of the given class that is
// unoccupied, past its lockout window and not in the claimed set. It
// returns nil when no station qualifies.
func (r *Stations) FirstAvailable(class model.StationClass, now time.Time, lockout time.Duration, claimed map[int]bool) *model.Station {
	for _, s := range r.All() {
		if s.Class != class {
			continue
		}
		if claimed[s.ID] {
			continue
		}
		if s.Available(now, lockout) {
			return s
		}
	}
	return nil
}

// ByVehicle returns the station currently referencing the given vehicle,
// or nil.
func (r *Stations) ByVehicle(vehicleID int) *model.Station {
	for _, s := range r.byID {
		if s.ConnectedVehicleID != nil && *s.ConnectedVehicleID == vehicleID {
			return s
		}
	}
	return nil
}
