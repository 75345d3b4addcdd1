package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/sim"
)

func TestWriteCSV(t *testing.T) {
	results := []sim.SweepResult{
		{
			L2Stations: 3, DCFCStations: 1, VehiclesPerType: 10, Seed: 42,
			Result: sim.Result{OnTime: 8, Late: 1, Missed: 1, MeanDelayMinutes: 30},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "l2_stations", rows[0][0])
	assert.Equal(t, []string{"3", "1", "10", "42", "8", "1", "1", "80.0", "30.0"}, rows[1])
}

func TestWriteDeparturesCSV(t *testing.T) {
	vid := 7
	soc := 0.85
	sched := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)
	departures := []model.DepartureRecord{
		{
			ReservationID:      "res-1",
			VehicleID:          &vid,
			ScheduledDeparture: sched,
			ActualDeparture:    sched.Add(30 * time.Minute),
			OnTime:             false,
			SoC:                &soc,
		},
		{ReservationID: "res-2", ScheduledDeparture: sched},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDeparturesCSV(&buf, departures))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "7", rows[1][1])
	assert.Equal(t, "0.850", rows[1][5])
	assert.Equal(t, "", rows[2][1], "missed departures have no vehicle")
	assert.Equal(t, "", rows[2][3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []sim.SweepResult{{L2Stations: 2, Seed: 1}}))
	assert.Contains(t, buf.String(), `"L2Stations":2`)
}
