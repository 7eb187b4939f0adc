package report

import (
	"context"
	"sync"
)

// Recorder keeps every record in memory.
type Recorder struct {
	mu      sync.Mutex
	timings []Timing
	batches []BatchSummary
	results []FlightResults
}

var _ ResultSink = (*Recorder)(nil)

// RecordTiming implements Sink.
func (r *Recorder) RecordTiming(_ context.Context, t Timing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timings = append(r.timings, t)
}

// RecordBatch implements Sink.
func (r *Recorder) RecordBatch(_ context.Context, s BatchSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, s)
}

// RecordResults implements ResultSink.
func (r *Recorder) RecordResults(_ context.Context, res FlightResults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Timings returns a copy of the timing records.
func (r *Recorder) Timings() []Timing {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Timing(nil), r.timings...)
}

// Batches returns a copy of the batch summaries.
func (r *Recorder) Batches() []BatchSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BatchSummary(nil), r.batches...)
}

// Results returns a copy of the flight results.
func (r *Recorder) Results() []FlightResults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FlightResults(nil), r.results...)
}
