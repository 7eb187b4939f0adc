package flight

import "github.com/zclconf/go-cty/cty"

// AircraftInfo describes the airframe that recorded the flight.
type AircraftInfo struct {
	Frame              string
	Manufacturer       string
	Series             string
	Family             string
	Model              string
	TailNumber         string
	PrecisePositioning bool
	FrameDoubled       bool
}

// Values returns the info as flight attributes. Empty strings are left out so
// nodes that depend on them see them as absent.
func (a AircraftInfo) Values() map[string]cty.Value {
	out := map[string]cty.Value{
		"Precise Positioning": cty.BoolVal(a.PrecisePositioning),
		"Frame Doubled":       cty.BoolVal(a.FrameDoubled),
	}
	for name, v := range map[string]string{
		"Frame":        a.Frame,
		"Manufacturer": a.Manufacturer,
		"Series":       a.Series,
		"Family":       a.Family,
		"Model":        a.Model,
		"Tail Number":  a.TailNumber,
	} {
		if v != "" {
			out[name] = cty.StringVal(v)
		}
	}
	return out
}
