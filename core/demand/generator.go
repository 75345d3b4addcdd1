// Package demand generates stochastic reservation and walk-in load for the
// depot. Daily event counts and departure hours are sampled from normal
// distributions; each generated event becomes a reservation message.
package demand

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/internal/broker"
)

const minDurationHours = 2.0

// Generator emits reservations onto the broker. Reservations for the next
// day are batched at midnight; walk-ins fire in real time with a short
// lead. The generator watches the vehicle snapshot so it only emits demand
// for vehicle types the fleet can serve in the requested window.
type Generator struct {
	cfg Config
	bus broker.Broker
	log logger.Logger
	rng *rand.Rand

	perDay     distuv.Normal
	eventHour  distuv.Normal
	walkInDay  distuv.Normal
	walkInHour distuv.Normal
	duration   distuv.Normal

	vehicles map[int]model.Vehicle
	staged   map[string]model.Reservation
}

// New creates a Generator for the given broker.
func New(cfg Config, bus broker.Broker, log logger.Logger) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("demand config: %w", err)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	src := rand.NewSource(uint64(cfg.Seed))
	return &Generator{
		cfg:        cfg,
		bus:        bus,
		log:        log,
		rng:        rand.New(src),
		perDay:     distuv.Normal{Mu: cfg.MeanReservationsPerDay, Sigma: cfg.StdevReservationsPerDay, Src: src},
		eventHour:  distuv.Normal{Mu: cfg.MeanDepartureHourOfDay, Sigma: cfg.StdevDepartureHours, Src: src},
		walkInDay:  distuv.Normal{Mu: cfg.MeanWalkInsPerDay, Sigma: cfg.StdevWalkInsPerDay, Src: src},
		walkInHour: distuv.Normal{Mu: cfg.MeanWalkInHourOfDay, Sigma: cfg.StdevWalkInHours, Src: src},
		duration:   distuv.Normal{Mu: cfg.MeanReservationDurationHours, Sigma: cfg.StdevReservationDurationHours, Src: src},
		vehicles:   make(map[int]model.Vehicle),
		staged:     make(map[string]model.Reservation),
	}, nil
}

// RunInterval generates this interval's demand and publishes it. At
// midnight the whole next day of reservations is emitted in one batch;
// walk-ins are emitted as they occur with the configured lead time.
func (g *Generator) RunInterval(now time.Time) error {
	if err := broker.DrainInto(g.bus, broker.TopicVehiclesDemand, g.vehicles, func(v model.Vehicle) int { return v.ID }); err != nil {
		return err
	}

	if now.Hour() == 0 && now.Minute() == 0 && now.Second() == 0 {
		g.generateDayAhead(now)
	}

	nWalkIns := g.eventsInInterval(now, g.walkInDay, g.walkInHour)
	if nWalkIns > 0 {
		g.makeReservations(nWalkIns, now, now.Add(g.cfg.WalkInLead()), true)
	}

	if len(g.staged) == 0 {
		return nil
	}
	out := make([]model.Reservation, 0, len(g.staged))
	for _, res := range g.staged {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if err := broker.PublishAll(g.bus, broker.TopicReservations, out); err != nil {
		return err
	}
	g.staged = make(map[string]model.Reservation)
	return nil
}

// generateDayAhead walks the next 24 hours interval by interval and
// creates the reservations that fall into each one.
func (g *Generator) generateDayAhead(now time.Time) {
	interval := g.cfg.Interval()
	future := now
	for i := 0; i < int((24*time.Hour)/interval); i++ {
		future = future.Add(interval)
		n := g.eventsInInterval(future, g.perDay, g.eventHour)
		g.makeReservations(n, now, future, false)
	}
}

// eventsInInterval samples a day's event count, then samples that many
// departure hours and counts the ones landing inside the interval that
// starts at t.
func (g *Generator) eventsInInterval(t time.Time, perDay, hourOfDay distuv.Normal) int {
	n := int(perDay.Rand())
	if n <= 0 {
		return 0
	}

	from := float64(t.Hour()) + float64(t.Minute())/60
	to := from + float64(g.cfg.IntervalSeconds)/3600

	count := 0
	for i := 0; i < n; i++ {
		h := hourOfDay.Rand()
		if h < 0 {
			h = 0
		}
		if h > from && h < to {
			count++
		}
	}
	return count
}

func (g *Generator) makeReservations(n int, createdAt, departure time.Time, walkIn bool) {
	for i := 0; i < n; i++ {
		arrival := departure.Add(g.tripDuration())
		types := g.availableTypes(departure, arrival)
		if len(types) == 0 {
			continue
		}
		typ := types[g.rng.Intn(len(types))]

		res := model.Reservation{
			ID:          uuid.NewString(),
			VehicleType: typ,
			Departure:   departure,
			Arrival:     arrival,
			CreatedAt:   createdAt,
			Status:      model.ReservationCreated,
			WalkIn:      walkIn,
		}
		g.staged[res.ID] = res
		g.log.Debugw("reservation generated", map[string]any{
			"reservation_id": res.ID,
			"vehicle_type":   typ,
			"departure":      departure,
			"walk_in":        walkIn,
		})
	}
}

// tripDuration samples the reservation length, floored at two hours and
// rounded to whole intervals.
func (g *Generator) tripDuration() time.Duration {
	hours := g.duration.Rand()
	if hours < minDurationHours {
		hours = minDurationHours
	}
	interval := g.cfg.Interval()
	d := time.Duration(hours * float64(time.Hour))
	return d.Round(interval)
}

// availableTypes lists vehicle types with at least one vehicle not held by
// a staged reservation overlapping the candidate window. One type per
// free vehicle, so fleet composition weights the random choice.
func (g *Generator) availableTypes(departure, arrival time.Time) []string {
	held := make(map[int]bool)
	for _, res := range g.staged {
		if res.AssignedVehicleID != nil && res.Overlaps(departure, arrival) {
			held[*res.AssignedVehicleID] = true
		}
	}

	ids := make([]int, 0, len(g.vehicles))
	for id := range g.vehicles {
		if !held[id] {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	types := make([]string, 0, len(ids))
	for _, id := range ids {
		types = append(types, g.vehicles[id].Type)
	}
	return types
}
