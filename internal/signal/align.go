package signal

import "math"

// epsilon absorbs floating point noise when a resampled position lands on
// a whole sample.
const epsilon = 1e-9

// Align returns s resampled to the given frequency and offset. Series are
// linearly interpolated, samples falling outside the source or next to a
// masked source sample are masked. Events, sections and approaches are
// re-indexed and nil bounds stay nil. Attributes and signals already at the
// target timing are returned as is. The input is never modified.
func Align(s *Signal, frequency, offset float64) *Signal {
	if s == nil || !s.HasTimeAxis() || frequency <= 0 || s.SameTiming(frequency, offset) {
		return s
	}

	out := *s
	out.Frequency = frequency
	out.Offset = offset

	reindex := func(i float64) float64 {
		return (i/s.Frequency + s.Offset - offset) * frequency
	}
	reindexPtr := func(i *float64) *float64 {
		if i == nil {
			return nil
		}
		return Float(reindex(*i))
	}
	reslice := func(sl Slice) Slice {
		return Slice{Start: reindexPtr(sl.Start), Stop: reindexPtr(sl.Stop)}
	}

	switch s.Kind {
	case TimeSeries:
		out.Array = resample(s.Array, s.Frequency, s.Offset, frequency, offset)
	case PointEvent:
		out.Points = make([]Point, len(s.Points))
		for i, p := range s.Points {
			out.Points[i] = Point{Name: p.Name, Index: reindex(p.Index), Value: p.Value}
		}
	case InstantEvent:
		out.Instants = make([]Instant, len(s.Instants))
		for i, p := range s.Instants {
			out.Instants[i] = Instant{Name: p.Name, Index: reindex(p.Index)}
		}
	case Interval:
		out.Sections = make([]Section, len(s.Sections))
		for i, sec := range s.Sections {
			out.Sections[i] = Section{
				Name:      sec.Name,
				Slice:     reslice(sec.Slice),
				StartEdge: reindexPtr(sec.StartEdge),
				StopEdge:  reindexPtr(sec.StopEdge),
			}
		}
	case ApproachEvent:
		out.Approaches = make([]Approach, len(s.Approaches))
		for i, a := range s.Approaches {
			aligned := a
			aligned.Slice = reslice(a.Slice)
			aligned.Turnoff = reindexPtr(a.Turnoff)
			if a.Glideslope != nil {
				gs := reslice(*a.Glideslope)
				aligned.Glideslope = &gs
			}
			if a.Localizer != nil {
				loc := reslice(*a.Localizer)
				aligned.Localizer = &loc
			}
			out.Approaches[i] = aligned
		}
	}
	return &out
}

// resample moves a series from (f1, o1) to (f2, o2). The output covers the
// same span, so its length scales with the frequency ratio.
func resample(a *Array, f1, o1, f2, o2 float64) *Array {
	if a == nil {
		return nil
	}
	n := int(math.Ceil(float64(a.Len())*f2/f1 - epsilon))
	if n < 0 {
		n = 0
	}
	out := &Array{Data: make([]float64, n), Mask: make([]bool, n)}
	for j := range n {
		pos := (float64(j)/f2 + o2 - o1) * f1
		v, ok := interpolate(a, pos)
		out.Data[j] = v
		out.Mask[j] = !ok
	}
	return out
}

func interpolate(a *Array, pos float64) (float64, bool) {
	if r := math.Round(pos); math.Abs(pos-r) < epsilon {
		pos = r
	}
	if pos < 0 || pos > float64(a.Len()-1) {
		return 0, false
	}
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if frac == 0 {
		return a.At(lo)
	}
	v0, ok0 := a.At(lo)
	v1, ok1 := a.At(lo + 1)
	if !ok0 || !ok1 {
		return 0, false
	}
	return v0 + (v1-v0)*frac, true
}
