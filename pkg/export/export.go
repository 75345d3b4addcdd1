// Package export writes simulation results in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/sim"
)

// WriteJSON writes the sweep results to w in JSON format.
func WriteJSON(w io.Writer, results []sim.SweepResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(results)
}

// WriteCSV writes one row per grid point with the departure summary.
func WriteCSV(w io.Writer, results []sim.SweepResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"l2_stations", "dcfc_stations", "vehicles_per_type", "seed",
		"on_time", "late", "missed", "on_time_pct", "mean_delay_minutes",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		total := r.Result.OnTime + r.Result.Late + r.Result.Missed
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(r.Result.OnTime) / float64(total)
		}
		rec := []string{
			strconv.Itoa(r.L2Stations),
			strconv.Itoa(r.DCFCStations),
			strconv.Itoa(r.VehiclesPerType),
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.Result.OnTime),
			strconv.Itoa(r.Result.Late),
			strconv.Itoa(r.Result.Missed),
			strconv.FormatFloat(pct, 'f', 1, 64),
			strconv.FormatFloat(r.Result.MeanDelayMinutes, 'f', 1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDeparturesCSV writes one row per departure record.
func WriteDeparturesCSV(w io.Writer, departures []model.DepartureRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"reservation_id", "vehicle_id", "scheduled_departure", "actual_departure", "on_time", "soc",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range departures {
		vid := ""
		if d.VehicleID != nil {
			vid = strconv.Itoa(*d.VehicleID)
		}
		actual := ""
		if !d.ActualDeparture.IsZero() {
			actual = d.ActualDeparture.Format(time.RFC3339)
		}
		soc := ""
		if d.SoC != nil {
			soc = strconv.FormatFloat(*d.SoC, 'f', 3, 64)
		}
		rec := []string{
			d.ReservationID,
			vid,
			d.ScheduledDeparture.Format(time.RFC3339),
			actual,
			strconv.FormatBool(d.OnTime),
			soc,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
