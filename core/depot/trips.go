package depot

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// minTripHours floors sampled trip durations; the normal distribution can
// otherwise return near-zero or negative values.
const minTripHours = 2.0

// trip tracks a vehicle that is out driving: when it is expected back and
// how much SoC it loses per interval so it lands on its arrival SoC exactly
// at arrival time.
type trip struct {
	vehicleID    int
	arrival      time.Time
	socDecrement float64
}

// tripPlanner samples trip durations and derives per-interval SoC decay.
type tripPlanner struct {
	duration distuv.Normal
	interval time.Duration
	speedMPH float64
	kwhMile  float64
	floorSoC float64
}

func newTripPlanner(cfg Config) *tripPlanner {
	return &tripPlanner{
		duration: distuv.Normal{
			Mu:    cfg.MeanTripDurationHours,
			Sigma: cfg.StdevTripDurationHours,
			Src:   rand.NewSource(uint64(cfg.Seed)),
		},
		interval: cfg.Interval(),
		speedMPH: cfg.AvgSpeedMPH,
		kwhMile:  cfg.EfficiencyKWhPerMile,
		floorSoC: cfg.MinSafetySoC,
	}
}

// plan samples a trip for the vehicle departing at now. The duration is
// rounded to whole intervals so the arrival check lands on a tick.
func (p *tripPlanner) plan(v *model.Vehicle, now time.Time) trip {
	hours := math.Max(minTripHours, p.duration.Rand())
	intervals := math.Round(hours / p.interval.Hours())
	if intervals < 1 {
		intervals = 1
	}
	dur := time.Duration(intervals) * p.interval

	miles := dur.Hours() * p.speedMPH
	energyKWh := miles * p.kwhMile
	arrivalSoC := v.SoC
	if v.CapacityKWh > 0 {
		arrivalSoC = v.SoC - energyKWh/v.CapacityKWh
	}
	if arrivalSoC < p.floorSoC {
		arrivalSoC = p.floorSoC
	}

	return trip{
		vehicleID:    v.ID,
		arrival:      now.Add(dur),
		socDecrement: (v.SoC - arrivalSoC) / intervals,
	}
}
