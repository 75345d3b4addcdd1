package metrics

import (
	"errors"

	coremetrics "github.com/johnhorn2/powerflex-station-assignment-heuristic/core/metrics"
	"github.com/johnhorn2/powerflex-station-assignment-heuristic/core/model"
)

// MultiSink fans events out to several sinks, collecting every error.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordSnapshot(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordDeparture(rec model.DepartureRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordDeparture(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
