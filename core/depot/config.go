package depot

import (
	"fmt"
	"time"
)

// VehicleSpec describes one vehicle type in the depot configuration.
type VehicleSpec struct {
	Count       int     `json:"n"`
	CapacityKWh float64 `json:"kwh_capacity"`
}

// Config defines the physical depot and the simulation thresholds.
type Config struct {
	IntervalSeconds int `json:"interval_seconds"`

	NL2Stations    int     `json:"n_l2_stations"`
	NDCFCStations  int     `json:"n_dcfc_stations"`
	L2MaxPowerKW   float64 `json:"l2_max_power_kw"`
	DCFCMaxPowerKW float64 `json:"dcfc_max_power_kw"`

	Vehicles map[string]VehicleSpec `json:"vehicles"`

	InitialSoC   float64 `json:"initial_soc"`
	ReadySoC     float64 `json:"ready_soc"`     // vehicles at or above are unplugged and parked
	DepartureSoC float64 `json:"departure_soc"` // minimum SoC to depart on a reservation
	MinSafetySoC float64 `json:"min_safety_soc"`

	StationLockoutMinutes int `json:"station_lockout_minutes"`

	MeanTripDurationHours  float64 `json:"mean_trip_duration_hours"`
	StdevTripDurationHours float64 `json:"stdev_trip_duration_hours"`
	AvgSpeedMPH            float64 `json:"avg_speed_mph"`
	EfficiencyKWhPerMile   float64 `json:"efficiency_kwh_per_mile"`

	Seed int64 `json:"seed"`
}

// SetDefaults applies the documented threshold defaults.
func (c *Config) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 900
	}
	if c.L2MaxPowerKW == 0 {
		c.L2MaxPowerKW = 12
	}
	if c.DCFCMaxPowerKW == 0 {
		c.DCFCMaxPowerKW = 150
	}
	if c.InitialSoC == 0 {
		c.InitialSoC = 0.8
	}
	if c.ReadySoC == 0 {
		c.ReadySoC = 1.0
	}
	if c.DepartureSoC == 0 {
		c.DepartureSoC = 0.8
	}
	if c.MinSafetySoC == 0 {
		c.MinSafetySoC = 0.05
	}
	if c.StationLockoutMinutes == 0 {
		c.StationLockoutMinutes = 15
	}
	if c.MeanTripDurationHours == 0 {
		c.MeanTripDurationHours = 4
	}
	if c.StdevTripDurationHours == 0 {
		c.StdevTripDurationHours = 1
	}
	if c.AvgSpeedMPH == 0 {
		c.AvgSpeedMPH = 30
	}
	if c.EfficiencyKWhPerMile == 0 {
		c.EfficiencyKWhPerMile = 0.3
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if c.DepartureSoC <= 0 || c.DepartureSoC > 1 {
		return fmt.Errorf("departure_soc must be in (0,1]")
	}
	if c.ReadySoC < c.DepartureSoC {
		return fmt.Errorf("ready_soc must be at least departure_soc")
	}
	for typ, spec := range c.Vehicles {
		if spec.Count < 0 {
			return fmt.Errorf("vehicle type %s: negative count", typ)
		}
		if spec.Count > 0 && spec.CapacityKWh <= 0 {
			return fmt.Errorf("vehicle type %s: kwh_capacity must be positive", typ)
		}
	}
	return nil
}

// Interval returns the simulated time step.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Lockout returns the post-unplug station lockout window.
func (c Config) Lockout() time.Duration {
	return time.Duration(c.StationLockoutMinutes) * time.Minute
}
