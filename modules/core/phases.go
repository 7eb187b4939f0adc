package core

import (
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/zclconf/go-cty/cty"
)

// Airborne detection thresholds.
const (
	AirborneThreshold   = 50.0 // ft above the airfield
	MinAirborneDuration = 10.0 // seconds
)

// Flight Type values.
const (
	TypeComplete      = "COMPLETE"
	TypeGroundOnly    = "GROUND_ONLY"
	TypeLiftoffOnly   = "LIFTOFF_ONLY"
	TypeTouchdownOnly = "TOUCHDOWN_ONLY"
	TypeIncomplete    = "INCOMPLETE"
)

func altitudeRate(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	alt := deps[0].Array
	n := alt.Len()
	data := make([]float64, n)
	mask := make([]bool, n)
	for i := range data {
		prev, next := max(i-1, 0), min(i+1, n-1)
		a, okA := alt.At(prev)
		b, okB := alt.At(next)
		if prev == next || !okA || !okB {
			mask[i] = true
			continue
		}
		data[i] = (b - a) / float64(next-prev) * inv.Frequency * 60
	}
	return inv.Series(signal.NewMaskedArray(data, mask)), nil
}

func airborne(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	alt := deps[0].Array
	n := alt.Len()
	minSamples := int(MinAirborneDuration * inv.Frequency)

	above := func(i int) bool {
		v, ok := alt.At(i)
		return ok && v > AirborneThreshold
	}

	var sections []signal.Section
	for i := 0; i < n; {
		if !above(i) {
			i++
			continue
		}
		start := i
		for i < n && above(i) {
			i++
		}
		if i-start < minSamples {
			continue
		}
		sections = append(sections, signal.Section{
			Slice:     signal.Slice{Start: signal.Float(float64(start)), Stop: signal.Float(float64(i))},
			StartEdge: signal.Float(crossing(alt, start-1, start)),
			StopEdge:  signal.Float(crossing(alt, i-1, i)),
		})
	}
	return inv.Sections(sections...), nil
}

// crossing returns the fractional index between samples a and b where the
// altitude passes the airborne threshold. Without both samples the valid
// one is used.
func crossing(alt *signal.Array, a, b int) float64 {
	va, okA := alt.At(a)
	vb, okB := alt.At(b)
	if a < 0 || !okA {
		return float64(b)
	}
	if b >= alt.Len() || !okB || va == vb {
		return float64(a + 1)
	}
	return float64(a) + (AirborneThreshold-va)/(vb-va)
}

// liftoff marks every airborne section that starts after the recording did.
func liftoff(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	var instants []signal.Instant
	for _, sec := range deps[0].Sections {
		if sec.Slice.Start != nil && *sec.Slice.Start > 0 && sec.StartEdge != nil {
			instants = append(instants, signal.Instant{Index: *sec.StartEdge})
		}
	}
	return inv.Instants(instants...), nil
}

// touchdown marks every airborne section that ends before the recording did.
func touchdown(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	var instants []signal.Instant
	end := float64(inv.Samples())
	for _, sec := range deps[0].Sections {
		if sec.Slice.Stop != nil && *sec.Slice.Stop < end && sec.StopEdge != nil {
			instants = append(instants, signal.Instant{Index: *sec.StopEdge})
		}
	}
	return inv.Instants(instants...), nil
}

func flightType(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	air, lift, down := deps[0], deps[1], deps[2]
	if air == nil {
		return nil, nil
	}
	hasLiftoff := lift != nil && len(lift.Instants) > 0
	hasTouchdown := down != nil && len(down.Instants) > 0

	var t string
	switch {
	case len(air.Sections) == 0:
		t = TypeGroundOnly
	case hasLiftoff && hasTouchdown:
		t = TypeComplete
	case hasLiftoff:
		t = TypeLiftoffOnly
	case hasTouchdown:
		t = TypeTouchdownOnly
	default:
		t = TypeIncomplete
	}
	inv.Logger().Debug("Flight type determined.", "type", t)
	return signal.NewAttribute(inv.Node, cty.StringVal(t)), nil
}
