package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/report"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/specialistvlad/flightderive/internal/testutil"
)

// nodeModule is a catalog.Module built from literal descriptors.
type nodeModule struct {
	name  string
	nodes []catalog.NodeDescriptor
}

func (m nodeModule) Name() string { return m.name }

func (m nodeModule) Register(r *catalog.Registry) {
	for _, d := range m.nodes {
		r.RegisterNode(d)
	}
}

// memoryPrecomputed is an in-memory PrecomputedStore.
type memoryPrecomputed struct {
	mu   sync.Mutex
	data map[string]map[string]*signal.Signal
}

func newMemoryPrecomputed() *memoryPrecomputed {
	return &memoryPrecomputed{data: map[string]map[string]*signal.Signal{}}
}

func (m *memoryPrecomputed) Load(_ context.Context, key string) (map[string]*signal.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]*signal.Signal{}
	for k, v := range m.data[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryPrecomputed) Save(_ context.Context, key string, signals map[string]*signal.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = signals
	return nil
}

// altitudeRate returns five samples too many for flights whose altitude
// starts below zero.
func altitudeRate(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	alt := deps[0].Array.Data
	n := inv.Samples()
	if alt[0] < 0 {
		n += 5
	}
	out := make([]float64, n)
	for i := 1; i < len(out) && i < len(alt); i++ {
		out[i] = (alt[i] - alt[i-1]) * 60 * inv.Frequency
	}
	return inv.Series(signal.NewArray(out...)), nil
}

func liftoff(calls *atomic.Int32) catalog.ComputeFunc {
	return func(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
		if calls != nil {
			calls.Add(1)
		}
		for i, v := range deps[0].Array.Data {
			if v > 0 {
				return inv.Instants(signal.Instant{Index: float64(i)}), nil
			}
		}
		return inv.Instants(), nil
	}
}

// coreModule registers Altitude Rate and Liftoff on top of Altitude STD.
func coreModule(liftoffCalls *atomic.Int32) nodeModule {
	return nodeModule{name: "core", nodes: []catalog.NodeDescriptor{
		{Name: "Altitude Rate", Dependencies: []string{"Altitude STD"}, Kind: signal.TimeSeries, Units: "ft/min", Compute: altitudeRate},
		{Name: "Liftoff", Dependencies: []string{"Altitude STD"}, Kind: signal.InstantEvent, Compute: liftoff(liftoffCalls)},
	}}
}

func newRegistry(modules ...catalog.Module) *catalog.Registry {
	r := catalog.New()
	r.Load(modules...)
	return r
}

// goodFlight climbs from the ground; badFlight starts below zero, which
// makes Altitude Rate fail with a length mismatch.
func goodFlight() *flight.Recording {
	return testutil.Recording(10, testutil.Ramp("Altitude STD", 1, 10, 0, 100))
}

func badFlight() *flight.Recording {
	return testutil.Recording(10, testutil.Ramp("Altitude STD", 1, 10, -100, 100))
}

// strictSink drops records handed over with a cancelled context, the way a
// database sink fails on them.
type strictSink struct {
	report.Recorder
}

func (s *strictSink) RecordTiming(ctx context.Context, t report.Timing) {
	if ctx.Err() == nil {
		s.Recorder.RecordTiming(ctx, t)
	}
}

func (s *strictSink) RecordBatch(ctx context.Context, b report.BatchSummary) {
	if ctx.Err() == nil {
		s.Recorder.RecordBatch(ctx, b)
	}
}

// gatedAccessor holds loads of one path until the load context is cancelled.
type gatedAccessor struct {
	*testutil.MemoryAccessor
	gated string
}

func (g *gatedAccessor) Load(ctx context.Context, path string, names []string) (*flight.Recording, error) {
	if path == g.gated {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}
	return g.MemoryAccessor.Load(ctx, path, names)
}
