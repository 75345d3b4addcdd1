package scheduler

import (
	"fmt"
	"time"
)

// Config defines the assignment heuristic's tunables.
type Config struct {
	// DepartureSoC is the minimum SoC a vehicle needs to serve a departure.
	DepartureSoC float64 `json:"departure_soc"`
	// L2ChargingRateKW is the rate assumed when testing whether a slow
	// station can meet a reservation's deadline.
	L2ChargingRateKW float64 `json:"l2_charging_rate_kw"`
	// DeadlinePaddingMinutes is subtracted from a reservation's departure
	// before the deadline feasibility check.
	DeadlinePaddingMinutes int `json:"deadline_padding_minutes"`
	// StationLockoutMinutes mirrors the depot's post-unplug lockout so the
	// scheduler never offers a station the runtime would refuse.
	StationLockoutMinutes int `json:"station_lockout_minutes"`
	// MinimumReadyPool is the walk-in ready pool floor per vehicle type.
	MinimumReadyPool map[string]int `json:"minimum_ready_vehicle_pool"`
}

// SetDefaults applies the documented defaults.
func (c *Config) SetDefaults() {
	if c.DepartureSoC == 0 {
		c.DepartureSoC = 0.8
	}
	if c.L2ChargingRateKW == 0 {
		c.L2ChargingRateKW = 12
	}
	if c.DeadlinePaddingMinutes == 0 {
		c.DeadlinePaddingMinutes = 15
	}
	if c.StationLockoutMinutes == 0 {
		c.StationLockoutMinutes = 15
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.DepartureSoC <= 0 || c.DepartureSoC > 1 {
		return fmt.Errorf("departure_soc must be in (0,1]")
	}
	if c.L2ChargingRateKW <= 0 {
		return fmt.Errorf("l2_charging_rate_kw must be positive")
	}
	return nil
}

// Padding returns the deadline safety padding.
func (c Config) Padding() time.Duration {
	return time.Duration(c.DeadlinePaddingMinutes) * time.Minute
}

// Lockout returns the station lockout window.
func (c Config) Lockout() time.Duration {
	return time.Duration(c.StationLockoutMinutes) * time.Minute
}
