package core

import (
	"math"

	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/zclconf/go-cty/cty"
)

// ValueAt interpolates arr at a fractional sample index. It falls back to
// the nearer neighbour when the other one is masked.
func ValueAt(arr *signal.Array, index float64) (float64, bool) {
	if arr == nil || index < 0 || index > float64(arr.Len()-1) || math.IsNaN(index) {
		return 0, false
	}
	lo := int(math.Floor(index))
	hi := int(math.Ceil(index))
	a, okA := arr.At(lo)
	b, okB := arr.At(hi)
	frac := index - float64(lo)
	switch {
	case okA && okB:
		return a + (b-a)*frac, true
	case okA && frac <= 0.5:
		return a, true
	case okB && frac >= 0.5:
		return b, true
	}
	return 0, false
}

// window is a half-open sample range.
type window struct{ start, stop int }

// windows returns the sample ranges covered by sections, clipped to n. A
// nil interval signal means the whole recording.
func windows(sections *signal.Signal, n int) []window {
	if sections == nil {
		return []window{{0, n}}
	}
	var out []window
	for _, sec := range sections.Sections {
		start, stop := 0, n
		if sec.Slice.Start != nil {
			start = max(int(math.Ceil(*sec.Slice.Start)), 0)
		}
		if sec.Slice.Stop != nil {
			stop = min(int(math.Ceil(*sec.Slice.Stop)), n)
		}
		if start < stop {
			out = append(out, window{start, stop})
		}
	}
	return out
}

// maxIndex returns the position and value of the largest valid sample in w.
func maxIndex(arr *signal.Array, w window) (int, float64, bool) {
	best, idx := math.Inf(-1), -1
	for i := w.start; i < w.stop; i++ {
		if v, ok := arr.At(i); ok && v > best {
			best, idx = v, i
		}
	}
	return idx, best, idx >= 0
}

// stringAttr reads a string attribute of a cty object. Anything else gives
// the empty string.
func stringAttr(s *signal.Signal, name string) string {
	if s == nil || s.Value.IsNull() || !s.Value.IsKnown() {
		return ""
	}
	v := s.Value
	if !v.Type().IsObjectType() || !v.Type().HasAttribute(name) {
		return ""
	}
	attr := v.GetAttr(name)
	if attr.IsNull() || !attr.IsKnown() || attr.Type() != cty.String {
		return ""
	}
	return attr.AsString()
}
