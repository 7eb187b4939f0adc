package refdata

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Achieved flight record attribute names.
const (
	AFRTakeoffAirport = "AFR Takeoff Airport"
	AFRTakeoffRunway  = "AFR Takeoff Runway"
	AFRLandingAirport = "AFR Landing Airport"
	AFRLandingRunway  = "AFR Landing Runway"
)

// FlightRecord is what operations recorded about a flight.
type FlightRecord struct {
	TakeoffAirport string
	TakeoffRunway  string
	LandingAirport string
	LandingRunway  string
}

// AchievedFlightRecord resolves rec against p. A runway is only looked up
// when its airport is known; unknown airports and runways are left out.
func AchievedFlightRecord(p Provider, rec FlightRecord) (map[string]cty.Value, error) {
	afr := map[string]cty.Value{}
	for _, leg := range []struct {
		icao, runway         string
		airportAttr, rwyAttr string
	}{
		{rec.TakeoffAirport, rec.TakeoffRunway, AFRTakeoffAirport, AFRTakeoffRunway},
		{rec.LandingAirport, rec.LandingRunway, AFRLandingAirport, AFRLandingRunway},
	} {
		if leg.icao == "" {
			continue
		}
		apt, ok := p.Airport(leg.icao)
		if !ok {
			continue
		}
		v, err := AirportValue(apt)
		if err != nil {
			return nil, err
		}
		afr[leg.airportAttr] = v

		if leg.runway == "" {
			continue
		}
		rwy, ok := p.Runway(leg.icao, leg.runway)
		if !ok {
			continue
		}
		v, err = RunwayValue(rwy)
		if err != nil {
			return nil, err
		}
		afr[leg.rwyAttr] = v
	}
	return afr, nil
}

// AirportValue converts an airport to a cty object. Runways are not included.
func AirportValue(a *Airport) (cty.Value, error) {
	return toValue(a, "airport "+a.ICAO)
}

// RunwayValue converts a runway to a cty object. Missing parts are null.
func RunwayValue(r *Runway) (cty.Value, error) {
	return toValue(r, "runway "+r.Identifier)
}

func toValue(v any, what string) (cty.Value, error) {
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to infer type of %s: %w", what, err)
	}
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to convert %s: %w", what, err)
	}
	return val, nil
}
