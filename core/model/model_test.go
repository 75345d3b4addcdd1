package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVehicleChargeCapsAtCapacity(t *testing.T) {
	v := Vehicle{ID: 1, SoC: 0.9, CapacityKWh: 60}
	v.PlugIn(3)
	v.Charge(2*time.Hour, 150)
	assert.Equal(t, 1.0, v.SoC)
	assert.Equal(t, StatusFinishedCharging, v.Status)
}

func TestVehicleChargeUpdatesStatus(t *testing.T) {
	v := Vehicle{ID: 1, SoC: 0.2, CapacityKWh: 60}
	v.PlugIn(3)
	v.Charge(15*time.Minute, 12)
	assert.InDelta(t, 0.25, v.SoC, 1e-9)
	assert.Equal(t, StatusCharging, v.Status)
}

func TestVehicleDischargeFloor(t *testing.T) {
	v := Vehicle{ID: 1, SoC: 0.06, CapacityKWh: 60, Status: StatusDriving}
	v.Discharge(0.1, 0.05)
	assert.Equal(t, 0.05, v.SoC)
}

func TestCanMeetDeadlineAtRate(t *testing.T) {
	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	v := Vehicle{ID: 1, SoC: 0.2, CapacityKWh: 62.0 / 0.6} // 0.6 SoC delta over ~62 kWh

	// Plenty of time at L2.
	ok := v.CanMeetDeadlineAtRate(now, now.Add(3*time.Hour), 15*time.Minute, 12, 0.8)
	assert.True(t, ok)

	// Ten minutes out, the padding alone exhausts the window.
	ok = v.CanMeetDeadlineAtRate(now, now.Add(10*time.Minute), 15*time.Minute, 12, 0.8)
	assert.False(t, ok)
}

func TestStationLockout(t *testing.T) {
	now := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Station{ID: 1, Class: ClassL2, MaxPowerKW: 12}
	assert.True(t, s.Available(now, 15*time.Minute))

	s.PlugIn(7)
	assert.False(t, s.Available(now, 15*time.Minute))

	s.Unplug(now)
	assert.False(t, s.Available(now.Add(10*time.Minute), 15*time.Minute))
	assert.False(t, s.Available(now.Add(15*time.Minute), 15*time.Minute))
	assert.True(t, s.Available(now.Add(16*time.Minute), 15*time.Minute))
}

func TestReservationOverlap(t *testing.T) {
	base := time.Date(2022, 1, 1, 8, 0, 0, 0, time.UTC)
	r := Reservation{ID: "r1", Departure: base, Arrival: base.Add(4 * time.Hour)}

	assert.True(t, r.Overlaps(base.Add(2*time.Hour), base.Add(6*time.Hour)))
	assert.True(t, r.Overlaps(base.Add(-time.Hour), base.Add(time.Hour)))
	assert.False(t, r.Overlaps(base.Add(5*time.Hour), base.Add(7*time.Hour)))
	assert.False(t, r.Overlaps(base.Add(-3*time.Hour), base.Add(-2*time.Hour)))
}

func TestReservationExpired(t *testing.T) {
	now := time.Date(2022, 1, 1, 8, 0, 0, 0, time.UTC)
	r := Reservation{ID: "r1", Departure: now}
	assert.True(t, r.Expired(now))
	assert.False(t, r.Expired(now.Add(-time.Minute)))
}
