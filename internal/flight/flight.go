// Package flight holds the per-flight entity the batch works on: raw
// recordings, aircraft metadata, achieved flight record attributes and the
// result map of a derivation pass.
package flight

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/zclconf/go-cty/cty"
)

// Attribute names the flight answers itself.
const (
	AttrStartDatetime = "Start Datetime"
	AttrDuration      = "Duration"
)

// Recording is what an Accessor reads from or writes to a flight file.
type Recording struct {
	Duration float64
	Start    time.Time
	// Frame holds free-form descriptors of the recording (frame name, tail
	// number, recorder type).
	Frame   map[string]string
	Signals map[string]*signal.Signal
	// Invalid holds recordings flagged unusable by the recorder or decoder.
	Invalid map[string]*signal.Signal
}

// Accessor loads and saves flight files. Load with no names returns every
// recording; names absent from the file are ignored.
type Accessor interface {
	Load(ctx context.Context, path string, names []string) (*Recording, error)
	Save(ctx context.Context, path string, rec *Recording) error
}

// Flight is one recorded flight.
type Flight struct {
	Path       string
	Repository string
	Duration   float64
	Start      time.Time
	Frame      map[string]string

	Aircraft             map[string]cty.Value
	AchievedFlightRecord map[string]cty.Value

	Inputs  map[string]*signal.Signal
	Invalid map[string]*signal.Signal
}

// New creates an empty flight for the file at path.
func New(path, repository string) *Flight {
	return &Flight{
		Path:                 path,
		Repository:           repository,
		Frame:                map[string]string{},
		Aircraft:             map[string]cty.Value{},
		AchievedFlightRecord: map[string]cty.Value{},
		Inputs:               map[string]*signal.Signal{},
		Invalid:              map[string]*signal.Signal{},
	}
}

// Load reads the flight file through acc. An empty names slice loads every
// recording.
func (f *Flight) Load(ctx context.Context, acc Accessor, names []string) error {
	logger := ctxlog.FromContext(ctx)
	rec, err := acc.Load(ctx, f.Path, names)
	if err != nil {
		return fmt.Errorf("failed to load flight %s: %w", f.Path, err)
	}

	f.Duration = rec.Duration
	f.Start = rec.Start
	if rec.Frame != nil {
		maps.Copy(f.Frame, rec.Frame)
	}
	if rec.Signals != nil {
		maps.Copy(f.Inputs, rec.Signals)
	}
	if rec.Invalid != nil {
		maps.Copy(f.Invalid, rec.Invalid)
	}

	logger.Debug("Flight loaded.", "duration", f.Duration, "inputs", len(f.Inputs), "invalid", len(f.Invalid))
	return nil
}

// InputNames returns the sorted names of the valid recordings.
func (f *Flight) InputNames() []string {
	return slices.Sorted(maps.Keys(f.Inputs))
}

// Missing returns the names absent from the valid recordings.
func (f *Flight) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := f.Inputs[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Seed builds the starting result map of a pass: the valid recordings plus
// precomputed values. Recordings win over precomputed values of the same
// name.
func (f *Flight) Seed(precomputed map[string]*signal.Signal) map[string]*signal.Signal {
	results := make(map[string]*signal.Signal, len(f.Inputs)+len(precomputed))
	maps.Copy(results, precomputed)
	maps.Copy(results, f.Inputs)
	return results
}

// Attribute resolves aircraft metadata, the achieved flight record and the
// flight's own start time and duration.
func (f *Flight) Attribute(name string) (*signal.Signal, bool) {
	if v, ok := f.Aircraft[name]; ok && !v.IsNull() {
		return signal.NewAttribute(name, v), true
	}
	if v, ok := f.AchievedFlightRecord[name]; ok && !v.IsNull() {
		return signal.NewAttribute(name, v), true
	}
	switch name {
	case AttrStartDatetime:
		if !f.Start.IsZero() {
			return signal.NewAttribute(name, cty.StringVal(f.Start.UTC().Format(time.RFC3339))), true
		}
	case AttrDuration:
		if f.Duration > 0 {
			return signal.NewAttribute(name, cty.NumberFloatVal(f.Duration)), true
		}
	}
	return nil, false
}

// AttributeNames returns every name Attribute can resolve.
func (f *Flight) AttributeNames() []string {
	var names []string
	for _, m := range []map[string]cty.Value{f.Aircraft, f.AchievedFlightRecord} {
		for name := range m {
			if _, ok := f.Attribute(name); ok {
				names = append(names, name)
			}
		}
	}
	for _, name := range []string{AttrStartDatetime, AttrDuration} {
		if _, ok := f.Attribute(name); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Export writes the flight's recordings plus the derived series to path.
func (f *Flight) Export(ctx context.Context, acc Accessor, path string, derived map[string]*signal.Signal) error {
	logger := ctxlog.FromContext(ctx)
	rec := &Recording{
		Duration: f.Duration,
		Start:    f.Start,
		Frame:    maps.Clone(f.Frame),
		Signals:  make(map[string]*signal.Signal, len(f.Inputs)+len(derived)),
		Invalid:  maps.Clone(f.Invalid),
	}
	maps.Copy(rec.Signals, f.Inputs)
	maps.Copy(rec.Signals, derived)

	if err := acc.Save(ctx, path, rec); err != nil {
		return fmt.Errorf("failed to save flight to %s: %w", path, err)
	}
	logger.Debug("Flight exported.", "path", path, "signals", len(rec.Signals))
	return nil
}
