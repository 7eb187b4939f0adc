package core

import (
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// ApproachCeiling is the height above the airfield, in ft, below which a
// descent counts as an approach.
const ApproachCeiling = 3000.0

// maxWhileAirborne records the highest value of the first dependency in
// every airborne section, or over the whole flight when phases are unknown.
func maxWhileAirborne(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	param, air := deps[0], deps[1]
	if param == nil {
		return nil, nil
	}
	var points []signal.Point
	for _, w := range windows(air, param.Array.Len()) {
		if i, v, ok := maxIndex(param.Array, w); ok {
			points = append(points, signal.Point{Index: float64(i), Value: v})
		}
	}
	return inv.Points(points...), nil
}

// recordedAirport passes the achieved flight record airport through when the
// matching event happened, or when events are unknown.
func recordedAirport(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	afr, event := deps[0], deps[1]
	if afr == nil {
		return nil, nil
	}
	if event != nil && len(event.Instants) == 0 {
		inv.Logger().Debug("Airport recorded but the event never happened.")
		return nil, nil
	}
	return signal.NewAttribute(inv.Node, afr.Value), nil
}

// approachInformation finds the approaches of every airborne section. Each
// descent below the ceiling that climbs back out is a go-around, the final
// descent is a landing, or a touch and go when another section follows.
func approachInformation(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	altSig, air, airport, runway := deps[0], deps[1], deps[2], deps[3]
	if altSig == nil {
		return nil, nil
	}
	alt := altSig.Array
	n := alt.Len()
	icao := stringAttr(airport, "icao")
	rwy := stringAttr(runway, "identifier")

	below := func(i int) bool {
		v, ok := alt.At(i)
		return ok && v < ApproachCeiling
	}

	var approaches []signal.Approach
	ws := windows(air, n)
	for wi, w := range ws {
		for i := w.start; i < w.stop; {
			if !below(i) {
				i++
				continue
			}
			start := i
			for i < w.stop && below(i) {
				i++
			}
			// Below the ceiling from liftoff until it is crossed is the climb out.
			if start == w.start && w.start > 0 && i < w.stop {
				continue
			}
			stop := min(i, n-1)
			a := signal.Approach{
				Slice: signal.Slice{Start: signal.Float(float64(start)), Stop: signal.Float(float64(stop))},
			}
			switch {
			case i < w.stop:
				a.Type = signal.GoAround
			case w.stop >= n:
				// Recording ends in the air.
				continue
			case wi < len(ws)-1:
				a.Type = signal.TouchAndGo
			default:
				a.Type = signal.Landing
				a.Airport = icao
				a.Runway = rwy
			}
			approaches = append(approaches, a)
		}
	}
	return inv.Approaches(approaches...), nil
}
