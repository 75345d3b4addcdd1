package demand

import (
	"fmt"
	"time"
)

// Config drives the stochastic reservation and walk-in generator. Counts
// per day and departure hours are drawn from normal distributions.
type Config struct {
	IntervalSeconds int `json:"interval_seconds"`

	MeanReservationsPerDay  float64 `json:"mean_reservations_per_day"`
	StdevReservationsPerDay float64 `json:"stdev_reservations_per_day"`
	MeanDepartureHourOfDay  float64 `json:"mean_vehicle_departure_hour_of_day"`
	StdevDepartureHours     float64 `json:"stdev_vehicle_departure_hours"`

	MeanWalkInsPerDay   float64 `json:"mean_walk_ins_per_day"`
	StdevWalkInsPerDay  float64 `json:"stdev_walk_ins_per_day"`
	MeanWalkInHourOfDay float64 `json:"mean_walk_in_hour_of_day"`
	StdevWalkInHours    float64 `json:"stdev_walk_in_hours"`

	MeanReservationDurationHours  float64 `json:"mean_reservation_duration_hours"`
	StdevReservationDurationHours float64 `json:"stdev_reservation_hours"`

	WalkInLeadMinutes int   `json:"walk_in_lead_minutes"`
	Seed              int64 `json:"seed"`
}

func (c *Config) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 900
	}
	if c.MeanReservationsPerDay == 0 {
		c.MeanReservationsPerDay = 20
	}
	if c.StdevReservationsPerDay == 0 {
		c.StdevReservationsPerDay = 4
	}
	if c.MeanDepartureHourOfDay == 0 {
		c.MeanDepartureHourOfDay = 8
	}
	if c.StdevDepartureHours == 0 {
		c.StdevDepartureHours = 2
	}
	if c.MeanWalkInsPerDay == 0 {
		c.MeanWalkInsPerDay = 5
	}
	if c.StdevWalkInsPerDay == 0 {
		c.StdevWalkInsPerDay = 2
	}
	if c.MeanWalkInHourOfDay == 0 {
		c.MeanWalkInHourOfDay = 13
	}
	if c.StdevWalkInHours == 0 {
		c.StdevWalkInHours = 3
	}
	if c.MeanReservationDurationHours == 0 {
		c.MeanReservationDurationHours = 4
	}
	if c.StdevReservationDurationHours == 0 {
		c.StdevReservationDurationHours = 1
	}
	if c.WalkInLeadMinutes == 0 {
		c.WalkInLeadMinutes = 15
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

func (c Config) Validate() error {
	if c.IntervalSeconds < 60 || c.IntervalSeconds > 3600 {
		return fmt.Errorf("interval_seconds must be between 60 and 3600, got %d", c.IntervalSeconds)
	}
	if c.MeanReservationsPerDay < 0 || c.MeanWalkInsPerDay < 0 {
		return fmt.Errorf("event rates must be non-negative")
	}
	return nil
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c Config) WalkInLead() time.Duration {
	return time.Duration(c.WalkInLeadMinutes) * time.Minute
}
