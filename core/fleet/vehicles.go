// Package fleet holds the owned vehicle and station registries plus the
// manager that keeps plug state between them consistent.
package fleet

import (
	"sort"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// Vehicles is the registry of depot vehicles keyed by id.
type Vehicles struct {
	byID map[int]*model.Vehicle
}

// NewVehicles builds a registry from the given vehicles.
func NewVehicles(vehicles []model.Vehicle) *Vehicles {
	r := &Vehicles{byID: make(map[int]*model.Vehicle, len(vehicles))}
	for i := range vehicles {
		v := vehicles[i]
		r.byID[v.ID] = &v
	}
	return r
}

// Get returns the vehicle with the given id, or nil.
func (r *Vehicles) Get(id int) *model.Vehicle {
	return r.byID[id]
}

// Put inserts or overwrites a vehicle by id.
func (r *Vehicles) Put(v model.Vehicle) {
	cp := v
	r.byID[v.ID] = &cp
}

// Len returns the number of vehicles in the registry.
func (r *Vehicles) Len() int { return len(r.byID) }

// All returns every vehicle, ordered by id for deterministic iteration.
func (r *Vehicles) All() []*model.Vehicle {
	out := make([]*model.Vehicle, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns value copies of every vehicle, ordered by id.
func (r *Vehicles) Snapshot() []model.Vehicle {
	all := r.All()
	out := make([]model.Vehicle, 0, len(all))
	for _, v := range all {
		out = append(out, *v)
	}
	return out
}

// Types returns the distinct vehicle types present, sorted.
func (r *Vehicles) Types() []string {
	seen := map[string]struct{}{}
	for _, v := range r.byID {
		seen[v.Type] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AnyType matches every vehicle type in sorting and filtering queries.
const AnyType = "any"

// SortedBySoCDesc returns the vehicles of the given type ordered by
// descending SoC, breaking ties by id so assignment stays deterministic.
// Pass AnyType to include every vehicle.
func (r *Vehicles) SortedBySoCDesc(vehicleType string) []*model.Vehicle {
	return SortBySoCDesc(r.All(), vehicleType)
}

// SortBySoCDesc orders the given vehicles by descending SoC, filtered by
// type unless AnyType is given.
func SortBySoCDesc(vehicles []*model.Vehicle, vehicleType string) []*model.Vehicle {
	out := make([]*model.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if vehicleType == AnyType || v.Type == vehicleType {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SoC != out[j].SoC {
			return out[i].SoC > out[j].SoC
		}
		return out[i].ID < out[j].ID
	})
	return out
}
