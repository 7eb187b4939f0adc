package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/derive"
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/refdata"
	"github.com/specialistvlad/flightderive/internal/report"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/specialistvlad/flightderive/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AnalyzeStage(t *testing.T) {
	// Arrange
	ctx, _ := testutil.NewContext(t)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{
		"in/a.fdf": goodFlight(),
		"in/b.fdf": goodFlight(),
	})
	rec := &report.Recorder{}
	pre := newMemoryPrecomputed()
	o := New(Config{Profile: BaseProfile, OutputDir: "out"}, newRegistry(coreModule(nil)), acc, rec, WithPrecomputed(pre))

	// Act
	sum, err := o.Run(ctx, []string{"in/a.fdf", "in/b.fdf"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, sum.OK)
	assert.Equal(t, 0, sum.Fail)
	assert.Equal(t, "analyze", sum.Stage)
	assert.NotEmpty(t, sum.RunID)
	assert.Contains(t, sum.Order, "Altitude Rate")

	saved, ok := acc.Saved("out/a_base.fdf")
	require.True(t, ok)
	require.Contains(t, saved.Signals, "Altitude Rate")
	assert.Equal(t, 6000.0, saved.Signals["Altitude Rate"].Array.Data[1])
	assert.Contains(t, saved.Signals, "Altitude STD")

	stored, err := pre.Load(ctx, "out/b_base.fdf")
	require.NoError(t, err)
	assert.Contains(t, stored, "Liftoff")
	assert.NotContains(t, stored, "Altitude Rate", "series are written to the flight file only")

	require.Len(t, rec.Timings(), 2)
	for _, tm := range rec.Timings() {
		assert.Equal(t, report.StatusOK, tm.Status)
		assert.Equal(t, sum.RunID, tm.RunID)
	}
	require.Len(t, rec.Batches(), 1)
	assert.Equal(t, 2, rec.Batches()[0].OK)
	require.Len(t, rec.Results(), 2)
	assert.Equal(t, []signal.Instant{{Name: "Liftoff", Index: 1}}, rec.Results()[0].Instants)
}

func TestRun_FailurePolicy(t *testing.T) {
	paths := []string{"in/a.fdf", "in/b.fdf", "in/c.fdf"}
	files := func() map[string]*flight.Recording {
		return map[string]*flight.Recording{
			"in/a.fdf": goodFlight(),
			"in/b.fdf": badFlight(),
			"in/c.fdf": goodFlight(),
		}
	}

	t.Run("not mortal carries on", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		acc := testutil.NewMemoryAccessor(files())
		rec := &report.Recorder{}
		o := New(Config{Profile: BaseProfile, OutputDir: "out"}, newRegistry(coreModule(nil)), acc, rec)

		sum, err := o.Run(ctx, paths)

		require.NoError(t, err)
		assert.Equal(t, 2, sum.OK)
		assert.Equal(t, 1, sum.Fail)
		assert.Equal(t, []string{"in/b.fdf"}, sum.Failed)
		assert.False(t, sum.Aborted)
		assert.Equal(t, 2, acc.SavedCount(), "failed flights are never saved")
		_, saved := acc.Saved("out/b_base.fdf")
		assert.False(t, saved)

		timings := rec.Timings()
		require.Len(t, timings, 3)
		assert.Equal(t, report.StatusFail, timings[1].Status)
		assert.Contains(t, timings[1].Error, "array length mismatch")
	})

	t.Run("mortal aborts", func(t *testing.T) {
		ctx, _ := testutil.NewContext(t)
		acc := testutil.NewMemoryAccessor(files())
		rec := &report.Recorder{}
		o := New(Config{Profile: BaseProfile, OutputDir: "out", Mortal: true}, newRegistry(coreModule(nil)), acc, rec)

		sum, err := o.Run(ctx, paths)

		var ferr *FlightError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, "in/b.fdf", ferr.Path)
		assert.ErrorIs(t, err, derive.ErrArrayLengthMismatch)

		var lerr *derive.LengthMismatchError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, 10, lerr.Expected)
		assert.Equal(t, 15, lerr.Actual)

		var nerr *derive.NodeError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "Altitude Rate", nerr.Node)

		assert.Equal(t, 1, sum.OK)
		assert.Equal(t, 1, sum.Fail)
		assert.Empty(t, acc.Loads("in/c.fdf"), "flights after the failure are not touched")

		require.Len(t, rec.Timings(), 2, "the failed flight still gets its timing record")
		batches := rec.Batches()
		require.Len(t, batches, 1, "the summary is emitted on abort")
		assert.True(t, batches[0].Aborted)
		assert.Equal(t, 3, batches[0].FileCount)
	})
}

func TestRun_NotImplementedAlwaysAborts(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{
		"a": goodFlight(),
		"b": goodFlight(),
	})
	mystery := nodeModule{name: "core", nodes: []catalog.NodeDescriptor{{
		Name: "Mystery", Dependencies: []string{"Altitude STD"},
		Compute: func(inv *catalog.Invocation, _ []*signal.Signal) (*signal.Signal, error) {
			return inv.Series(nil), nil
		},
	}}}
	o := New(Config{Profile: BaseProfile}, newRegistry(mystery), acc, nil)

	sum, err := o.Run(ctx, []string{"a", "b"})

	assert.ErrorIs(t, err, derive.ErrNotImplemented)
	assert.Equal(t, 1, sum.Fail)
	assert.Empty(t, acc.Loads("b"))
}

func TestRun_SchemaMismatch(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{
		"a": goodFlight(),
		"b": testutil.Recording(10, testutil.Ramp("Airspeed", 1, 10, 0, 10)),
	})
	o := New(Config{Profile: BaseProfile, Mortal: true}, newRegistry(coreModule(nil)), acc, nil)

	_, err := o.Run(ctx, []string{"a", "b"})

	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.ErrorContains(t, err, "Altitude STD")
}

func TestRun_ProfileStage(t *testing.T) {
	// Arrange
	ctx, _ := testutil.NewContext(t)
	sample := goodFlight()
	sample.Signals["Unused"] = testutil.Series("Unused", 1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	second := goodFlight()
	second.Signals["Unused"] = testutil.Series("Unused", 1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{"a": sample, "b": second})

	pre := newMemoryPrecomputed()
	for _, key := range []string{"a", "b"} {
		require.NoError(t, pre.Save(ctx, key, map[string]*signal.Signal{
			"Liftoff": signal.NewInstants("Liftoff", 1, 0, signal.Instant{Name: "Liftoff", Index: 4}),
		}))
	}

	var liftoffCalls atomic.Int32
	var seenLiftoff atomic.Value
	landing := nodeModule{name: "landing", nodes: []catalog.NodeDescriptor{{
		Name: "Altitude At Liftoff", Dependencies: []string{"Altitude STD", "Liftoff"}, Kind: signal.PointEvent,
		Compute: func(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
			idx := deps[1].Instants[0].Index
			seenLiftoff.Store(idx)
			return inv.Points(signal.Point{Index: idx, Value: deps[0].Array.Data[int(idx)]}), nil
		},
	}}}
	rec := &report.Recorder{}
	cfg := Config{Profile: "landing", Modules: []string{"landing"}, OutputDir: "out"}
	o := New(cfg, newRegistry(coreModule(&liftoffCalls), landing), acc, rec, WithPrecomputed(pre))

	// Act
	sum, err := o.Run(ctx, []string{"a", "b"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "profile", sum.Stage)
	assert.Equal(t, 2, sum.OK)
	assert.Equal(t, int32(0), liftoffCalls.Load(), "precomputed results are not recomputed")
	assert.Equal(t, 4.0, seenLiftoff.Load())
	assert.Equal(t, [][]string{{"Altitude STD"}}, acc.Loads("b"), "only needed inputs are loaded")
	assert.Equal(t, 0, acc.SavedCount(), "the profile stage is read-only")

	results := rec.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].OutputPath)
	assert.Equal(t, []signal.Point{{Name: "Altitude At Liftoff", Index: 4, Value: 400}}, results[0].PointEvents)
}

func TestRun_Workers(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	files := map[string]*flight.Recording{}
	paths := []string{"a", "b", "c", "d", "e"}
	for _, p := range paths {
		files[p] = goodFlight()
	}
	files["d"] = badFlight()
	acc := testutil.NewMemoryAccessor(files)
	rec := &report.Recorder{}
	o := New(Config{Profile: BaseProfile, OutputDir: "out", Workers: 3}, newRegistry(coreModule(nil)), acc, rec)

	sum, err := o.Run(ctx, paths)

	require.NoError(t, err)
	assert.Equal(t, 4, sum.OK)
	assert.Equal(t, 1, sum.Fail)
	assert.Equal(t, []string{"d"}, sum.Failed)
	assert.Len(t, rec.Timings(), 5)
	assert.Equal(t, 4, acc.SavedCount())
}

func TestRun_AchievedFlightRecord(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	ref, err := refdata.Parse([]byte("airports:\n  - icao: KJFK\n    name: JOHN F KENNEDY INTL\n"))
	require.NoError(t, err)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{"in/a.fdf": goodFlight()})
	afrModule := nodeModule{name: "core", nodes: []catalog.NodeDescriptor{{
		Name: "Takeoff Airport ICAO", Dependencies: []string{refdata.AFRTakeoffAirport}, Kind: signal.Attribute,
		Compute: func(_ *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
			return signal.NewAttribute("", deps[0].Value.GetAttr("icao")), nil
		},
	}}}
	rec := &report.Recorder{}
	cfg := Config{
		Profile:       BaseProfile,
		OutputDir:     "out",
		Aircraft:      flight.AircraftInfo{Family: "B737"},
		FlightRecords: map[string]refdata.FlightRecord{"a.fdf": {TakeoffAirport: "KJFK"}},
	}
	o := New(cfg, newRegistry(afrModule), acc, rec, WithReferenceData(ref))

	_, err = o.Run(ctx, []string{"in/a.fdf"})

	require.NoError(t, err)
	results := rec.Results()
	require.Len(t, results, 1)
	require.Len(t, results[0].Attributes, 1)
	assert.Equal(t, "KJFK", results[0].Attributes[0].Value.AsString())
}

func TestRun_DryRun(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{"a": goodFlight(), "b": goodFlight()})
	rec := &report.Recorder{}
	o := New(Config{Profile: BaseProfile, DryRun: true}, newRegistry(coreModule(nil)), acc, rec)

	sum, err := o.Run(ctx, []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Altitude STD", "Altitude Rate", "Liftoff"}, sum.Order)
	assert.Empty(t, acc.Loads("b"))
	assert.Empty(t, rec.Timings())
	assert.Len(t, rec.Batches(), 1)
}

func TestRun_NoFlights(t *testing.T) {
	ctx, buf := testutil.NewContext(t)
	o := New(Config{Profile: BaseProfile}, newRegistry(), testutil.NewMemoryAccessor(nil), nil)

	sum, err := o.Run(ctx, nil)

	assert.Nil(t, sum)
	assert.ErrorIs(t, err, ErrNoFlights)
	assert.Contains(t, buf.String(), "No files to process.")
}

func TestRun_SampleLoadFails(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	rec := &report.Recorder{}
	o := New(Config{Profile: BaseProfile}, newRegistry(coreModule(nil)), testutil.NewMemoryAccessor(nil), rec)

	_, err := o.Run(ctx, []string{"missing"})

	var ferr *FlightError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "missing", ferr.Path)
	require.Len(t, rec.Batches(), 1)
	assert.True(t, rec.Batches()[0].Aborted)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	ctx, cancel := context.WithCancel(ctx)
	acc := testutil.NewMemoryAccessor(map[string]*flight.Recording{"a": goodFlight()})
	sink := &strictSink{}
	o := New(Config{Profile: BaseProfile}, newRegistry(coreModule(nil)), acc, sink)
	cancel()

	_, err := o.Run(ctx, []string{"a"})

	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, sink.Batches(), 1, "the summary survives cancellation")
	assert.True(t, sink.Batches()[0].Aborted)
}

func TestRun_RecordsSurviveMortalAbort(t *testing.T) {
	// Arrange
	ctx, _ := testutil.NewContext(t)
	acc := &gatedAccessor{
		MemoryAccessor: testutil.NewMemoryAccessor(map[string]*flight.Recording{
			"a":    goodFlight(),
			"slow": goodFlight(),
			"bad":  badFlight(),
		}),
		gated: "slow",
	}
	sink := &strictSink{}
	cfg := Config{Profile: BaseProfile, OutputDir: "out", Workers: 2, Mortal: true}
	o := New(cfg, newRegistry(coreModule(nil)), acc, sink)

	// Act
	_, err := o.Run(ctx, []string{"a", "slow", "bad"})

	// Assert
	require.ErrorIs(t, err, derive.ErrArrayLengthMismatch)
	paths := map[string]bool{}
	for _, tm := range sink.Timings() {
		paths[tm.Path] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "slow": true, "bad": true}, paths,
		"a flight finishing after the abort keeps its timing record")
	require.Len(t, sink.Batches(), 1)
	assert.True(t, sink.Batches()[0].Aborted)
}
