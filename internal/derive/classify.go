package derive

import (
	"log/slog"
	"math"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// maxExcessSamples is how many trailing samples a derived series may carry
// beyond the flight before it is rejected. Combining parameters recorded at
// low rates rounds lengths up, so a few extra samples are expected.
const maxExcessSamples = 4

// classify validates a node result according to its declared kind, records
// it in the pass results and appends it to the typed collections.
func classify(logger *slog.Logger, desc *catalog.NodeDescriptor, inv *catalog.Invocation, result *signal.Signal, out *Outcome) error {
	r := stamp(desc, inv, result)
	duration := inv.Duration

	switch desc.Kind {
	case signal.TimeSeries:
		expected := int(math.Ceil(duration * r.Frequency))
		arr, err := checkSeries(logger, desc.Name, r.Array, expected)
		if err != nil {
			return err
		}
		r.Array = arr
		out.Results[desc.Name] = r
		out.Series[desc.Name] = r

	case signal.PointEvent:
		oneHz := signal.Align(r, 1, 0)
		for _, p := range oneHz.Points {
			if err := checkIndex(signal.PointEvent, p.Name, p.Index, duration); err != nil {
				return err
			}
		}
		out.Results[desc.Name] = r
		out.PointEvents = append(out.PointEvents, oneHz.Points...)

	case signal.InstantEvent:
		oneHz := signal.Align(r, 1, 0)
		for _, p := range oneHz.Instants {
			if err := checkIndex(signal.InstantEvent, p.Name, p.Index, duration); err != nil {
				return err
			}
		}
		out.Results[desc.Name] = r
		out.Instants = append(out.Instants, oneHz.Instants...)

	case signal.Attribute:
		if result == nil || r.Value.IsNull() {
			logger.Warn("Flight attribute node returned empty handed.")
			return nil
		}
		out.Results[desc.Name] = r
		out.Attributes = append(out.Attributes, r)

	case signal.Interval:
		oneHz := signal.Align(r, 1, 0)
		sections, err := checkSections(oneHz.Sections, duration)
		if err != nil {
			return err
		}
		stored := *oneHz
		stored.Sections = sections
		out.Results[desc.Name] = &stored
		out.Phases = append(out.Phases, sections...)

	case signal.ApproachEvent:
		oneHz := signal.Align(r, 1, 0)
		if err := checkApproaches(desc.Name, oneHz.Approaches, duration); err != nil {
			return err
		}
		out.Results[desc.Name] = oneHz
		out.Approaches = append(out.Approaches, oneHz.Approaches...)

	default:
		return &NotImplementedError{Node: desc.Name, Kind: desc.Kind}
	}
	return nil
}

// stamp copies the node's identity onto the result. Results without a
// frequency take the invocation timing; a node that built its result at
// another rate keeps it. The copy keeps a node that hands back one of its
// inputs from renaming that input.
func stamp(desc *catalog.NodeDescriptor, inv *catalog.Invocation, result *signal.Signal) *signal.Signal {
	var r signal.Signal
	if result != nil {
		r = *result
	}
	r.Name = desc.Name
	r.Kind = desc.Kind
	if r.Units == "" {
		r.Units = desc.Units
	}
	if desc.Kind.HasTimeAxis() && r.Frequency <= 0 {
		r.Frequency = inv.Frequency
		r.Offset = inv.Offset
	}

	r.Points = named(r.Points, desc.Name, func(p *signal.Point) *string { return &p.Name })
	r.Instants = named(r.Instants, desc.Name, func(p *signal.Instant) *string { return &p.Name })
	r.Sections = named(r.Sections, desc.Name, func(p *signal.Section) *string { return &p.Name })
	return &r
}

// named copies items, giving unnamed ones the node's name.
func named[T any](items []T, name string, field func(*T) *string) []T {
	if len(items) == 0 {
		return items
	}
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if n := field(&out[i]); *n == "" {
			*n = name
		}
	}
	return out
}

// checkSeries reconciles a derived array with the expected sample count.
func checkSeries(logger *slog.Logger, name string, arr *signal.Array, expected int) (*signal.Array, error) {
	if arr == nil {
		logger.Debug("No array set; creating a fully masked array.", "length", expected)
		return signal.Masked(expected), nil
	}
	diff := arr.Len() - expected
	switch {
	case diff == 0:
		return arr, nil
	case diff > 0 && diff <= maxExcessSamples:
		logger.Debug("Cutting excess data for parameter.", "expected", expected, "length", arr.Len())
		return arr.Truncate(expected), nil
	default:
		return nil, &LengthMismatchError{Parameter: name, Expected: expected, Actual: arr.Len()}
	}
}

func checkIndex(kind signal.Kind, event string, index, duration float64) error {
	if index < 0 || index > duration || math.IsNaN(index) {
		return &IndexRangeError{Kind: kind, Event: event, Index: index, Duration: duration}
	}
	return nil
}

// checkSections replaces nil bounds with the start or end of the flight and
// then checks every bound. Stops may run one sample past the end because a
// slice stop is exclusive.
func checkSections(sections []signal.Section, duration float64) ([]signal.Section, error) {
	out := make([]signal.Section, len(sections))
	for i, sec := range sections {
		start := fallback(sec.Slice.Start, 0)
		stop := fallback(sec.Slice.Stop, duration)
		startEdge := fallback(sec.StartEdge, 0)
		stopEdge := fallback(sec.StopEdge, duration)

		out[i] = signal.Section{
			Name:      sec.Name,
			Slice:     signal.Slice{Start: signal.Float(start), Stop: signal.Float(stop)},
			StartEdge: signal.Float(startEdge),
			StopEdge:  signal.Float(stopEdge),
		}

		checks := []struct {
			bound string
			value float64
			limit float64
		}{
			{"start", start, duration},
			{"stop", stop, duration + 1},
			{"start_edge", startEdge, duration},
			{"stop_edge", stopEdge, duration + 1},
		}
		for _, c := range checks {
			if c.value < 0 || c.value > c.limit {
				return nil, &IntervalRangeError{Section: sec.Name, Bound: c.bound, Value: c.value, Limit: c.limit}
			}
		}
	}
	return out, nil
}

// checkApproaches requires every approach index to lie within the flight.
// The main slice must be bounded; the other windows are optional.
func checkApproaches(node string, approaches []signal.Approach, duration float64) error {
	within := func(field string, v *float64, required bool) error {
		if v == nil {
			if required {
				return &ApproachRangeError{Node: node, Field: field, Duration: duration}
			}
			return nil
		}
		if *v < 0 || *v > duration {
			return &ApproachRangeError{Node: node, Field: field, Value: v, Duration: duration}
		}
		return nil
	}

	for _, a := range approaches {
		if err := within("turnoff", a.Turnoff, false); err != nil {
			return err
		}
		if err := within("slice start", a.Slice.Start, true); err != nil {
			return err
		}
		if err := within("slice stop", a.Slice.Stop, true); err != nil {
			return err
		}
		for _, w := range []struct {
			name string
			sl   *signal.Slice
		}{{"glideslope", a.Glideslope}, {"localizer", a.Localizer}} {
			if w.sl == nil {
				continue
			}
			if err := within(w.name+" start", w.sl.Start, true); err != nil {
				return err
			}
			if err := within(w.name+" stop", w.sl.Stop, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func fallback(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
