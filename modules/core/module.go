// Package core holds the node library that every batch loads: flight
// phases, the key events and the airport and approach attributes built on
// top of them.
package core

import (
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/refdata"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// Name of the module in profiles.
const Name = "core"

// Recorded parameters the nodes read.
const (
	AltitudeAAL = "Altitude AAL"
	Airspeed    = "Airspeed"
)

// Node names.
const (
	AltitudeRate        = "Altitude Rate"
	Airborne            = "Airborne"
	Liftoff             = "Liftoff"
	Touchdown           = "Touchdown"
	AirspeedMax         = "Airspeed Max"
	AltitudeMax         = "Altitude Max"
	FlightType          = "Flight Type"
	FDRTakeoffAirport   = "FDR Takeoff Airport"
	FDRLandingAirport   = "FDR Landing Airport"
	ApproachInformation = "Approach Information"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Name implements catalog.Module.
func (Module) Name() string { return Name }

// Register registers the nodes with the catalog.
func (Module) Register(r *catalog.Registry) {
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         AltitudeRate,
		Dependencies: []string{AltitudeAAL},
		Kind:         signal.TimeSeries,
		Units:        "ft/min",
		Compute:      altitudeRate,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         Airborne,
		Dependencies: []string{AltitudeAAL},
		Kind:         signal.Interval,
		Compute:      airborne,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         Liftoff,
		Dependencies: []string{Airborne},
		Kind:         signal.InstantEvent,
		Compute:      liftoff,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         Touchdown,
		Dependencies: []string{Airborne},
		Kind:         signal.InstantEvent,
		Compute:      touchdown,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         AirspeedMax,
		Dependencies: []string{Airspeed, Airborne},
		Kind:         signal.PointEvent,
		Units:        "kt",
		Compute:      maxWhileAirborne,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         AltitudeMax,
		Dependencies: []string{AltitudeAAL, Airborne},
		Kind:         signal.PointEvent,
		Units:        "ft",
		Compute:      maxWhileAirborne,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         FlightType,
		Dependencies: []string{Airborne, Liftoff, Touchdown},
		Kind:         signal.Attribute,
		Compute:      flightType,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         FDRTakeoffAirport,
		Dependencies: []string{refdata.AFRTakeoffAirport, Liftoff},
		Kind:         signal.Attribute,
		Compute:      recordedAirport,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         FDRLandingAirport,
		Dependencies: []string{refdata.AFRLandingAirport, Touchdown},
		Kind:         signal.Attribute,
		Compute:      recordedAirport,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         ApproachInformation,
		Dependencies: []string{AltitudeAAL, Airborne, FDRLandingAirport, refdata.AFRLandingRunway},
		Kind:         signal.ApproachEvent,
		Compute:      approachInformation,
	})
}
