// Package report records what a batch did: one timing record per flight, one
// summary per batch and, for sinks that want them, the derived events of
// every successful flight.
//
// Sinks are fire-and-forget. A sink that cannot write logs a warning and
// carries on; reporting never fails a batch.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/specialistvlad/flightderive/internal/signal"
)

// Status is the outcome of one flight.
type Status string

const (
	StatusOK   Status = "ok"
	StatusFail Status = "fail"
)

// Timing is the per-flight record.
type Timing struct {
	RunID     string
	Timestamp time.Time
	Stage     string
	Profile   string
	Path      string
	Elapsed   time.Duration
	Status    Status
	Error     string
}

// BatchSummary is the per-batch record.
type BatchSummary struct {
	RunID      string
	Timestamp  time.Time
	Stage      string
	Profile    string
	Comment    string
	Repository string
	InputDir   string
	OutputDir  string
	FileCount  int
	OK         int
	Fail       int
	Elapsed    time.Duration
	// Aborted is set when a failure stopped the batch early.
	Aborted bool
}

// FlightResults are the non-series products of a successful flight.
type FlightResults struct {
	RunID       string
	Profile     string
	Path        string
	OutputPath  string
	PointEvents []signal.Point
	Instants    []signal.Instant
	Phases      []signal.Section
	Approaches  []signal.Approach
	Attributes  []*signal.Signal
}

// Sink receives timing and batch records.
type Sink interface {
	RecordTiming(ctx context.Context, t Timing)
	RecordBatch(ctx context.Context, s BatchSummary)
}

// ResultSink is implemented by sinks that also store derived events.
type ResultSink interface {
	RecordResults(ctx context.Context, r FlightResults)
}

// Multi fans records out to several sinks.
type Multi []Sink

var (
	_ Sink       = Multi(nil)
	_ ResultSink = Multi(nil)
)

// RecordTiming implements Sink.
func (m Multi) RecordTiming(ctx context.Context, t Timing) {
	for _, s := range m {
		s.RecordTiming(ctx, t)
	}
}

// RecordBatch implements Sink.
func (m Multi) RecordBatch(ctx context.Context, s BatchSummary) {
	for _, sink := range m {
		sink.RecordBatch(ctx, s)
	}
}

// RecordResults forwards to every sink that implements ResultSink.
func (m Multi) RecordResults(ctx context.Context, r FlightResults) {
	for _, s := range m {
		if rs, ok := s.(ResultSink); ok {
			rs.RecordResults(ctx, r)
		}
	}
}

// Close closes every sink that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
