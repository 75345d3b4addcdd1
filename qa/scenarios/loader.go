// Package scenarios runs YAML-defined depot scenarios end to end through
// the runtime and the scheduler, asserting on departure outcomes.
package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

type VehicleDef struct {
	ID          int     `yaml:"id"`
	Type        string  `yaml:"type"`
	SoC         float64 `yaml:"soc"`
	CapacityKWh float64 `yaml:"kwh_capacity"`
}

func (v VehicleDef) ToModel() model.Vehicle {
	return model.Vehicle{
		ID:          v.ID,
		Type:        v.Type,
		SoC:         v.SoC,
		CapacityKWh: v.CapacityKWh,
		Status:      model.StatusParked,
	}
}

type StationDef struct {
	ID         int     `yaml:"id"`
	Class      string  `yaml:"class"`
	MaxPowerKW float64 `yaml:"max_power_kw"`
}

func (s StationDef) ToModel() model.Station {
	return model.Station{
		ID:         s.ID,
		Class:      model.StationClass(s.Class),
		MaxPowerKW: s.MaxPowerKW,
	}
}

type ReservationDef struct {
	ID               string  `yaml:"id"`
	VehicleType      string  `yaml:"vehicle_type"`
	DepartureMinutes int     `yaml:"departure_minutes"`
	DurationHours    float64 `yaml:"duration_hours"`
	WalkIn           bool    `yaml:"walk_in,omitempty"`
}

func (r ReservationDef) ToModel(start time.Time) model.Reservation {
	departure := start.Add(time.Duration(r.DepartureMinutes) * time.Minute)
	return model.Reservation{
		ID:          r.ID,
		VehicleType: r.VehicleType,
		Departure:   departure,
		Arrival:     departure.Add(time.Duration(r.DurationHours * float64(time.Hour))),
		CreatedAt:   start,
		Status:      model.ReservationCreated,
		WalkIn:      r.WalkIn,
	}
}

type Expected struct {
	OnTime int `yaml:"on_time"`
	Late   int `yaml:"late"`
	Missed int `yaml:"missed"`
}

type Scenario struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description,omitempty"`
	Intervals    int              `yaml:"intervals"`
	Vehicles     []VehicleDef     `yaml:"vehicles"`
	Stations     []StationDef     `yaml:"stations"`
	Reservations []ReservationDef `yaml:"reservations"`
	Expected     Expected         `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
