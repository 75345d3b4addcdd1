package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

func TestPromSinkRecordsSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	ev := coremetrics.SnapshotEvent{
		Time: time.Now(),
		Vehicles: []model.Vehicle{
			{ID: 1, Type: "sedan", SoC: 0.42, Status: model.StatusCharging},
			{ID: 2, Type: "suv", SoC: 0.9, Status: model.StatusParked},
		},
	}
	require.NoError(t, sink.RecordSnapshot(ev))

	assert.Equal(t, 0.42, testutil.ToFloat64(sink.soc.WithLabelValues("1", "sedan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.status.WithLabelValues("charging")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.status.WithLabelValues("parked")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.status.WithLabelValues("driving")))
}

func TestPromSinkRecordsDeparture(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	sched := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, sink.RecordDeparture(model.DepartureRecord{
		ReservationID:      "r1",
		ScheduledDeparture: sched,
		ActualDeparture:    sched.Add(30 * time.Minute),
		OnTime:             false,
	}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.departures.WithLabelValues("false")))
}

func TestMultiSinkFansOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	multi := NewMultiSink(coremetrics.NopSink{}, prom)

	require.NoError(t, multi.RecordDeparture(model.DepartureRecord{ReservationID: "r1", OnTime: true}))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.departures.WithLabelValues("true")))
}
