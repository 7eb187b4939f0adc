// Package landing measures the aircraft state at touchdown. It is meant for
// profile runs on top of flights already analyzed with the core nodes.
package landing

import (
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/specialistvlad/flightderive/modules/core"
)

// Name of the module in profiles.
const Name = "landing"

// Node names.
const (
	AltitudeRateAtTouchdown = "Altitude Rate At Touchdown"
	AirspeedAtTouchdown     = "Airspeed At Touchdown"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Name implements catalog.Module.
func (Module) Name() string { return Name }

// Register registers the nodes with the catalog.
func (Module) Register(r *catalog.Registry) {
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         AltitudeRateAtTouchdown,
		Dependencies: []string{core.AltitudeRate, core.Touchdown},
		Kind:         signal.PointEvent,
		Units:        "ft/min",
		Compute:      atTouchdown,
	})
	r.RegisterNode(catalog.NodeDescriptor{
		Name:         AirspeedAtTouchdown,
		Dependencies: []string{core.Airspeed, core.Touchdown},
		Kind:         signal.PointEvent,
		Units:        "kt",
		Compute:      atTouchdown,
	})
}

// atTouchdown samples the first dependency at every touchdown.
func atTouchdown(inv *catalog.Invocation, deps []*signal.Signal) (*signal.Signal, error) {
	param, touchdowns := deps[0], deps[1]
	if param == nil || touchdowns == nil {
		return nil, nil
	}
	var points []signal.Point
	for _, td := range touchdowns.Instants {
		v, ok := core.ValueAt(param.Array, td.Index)
		if !ok {
			inv.Logger().Warn("No valid sample at touchdown.", "index", td.Index)
			continue
		}
		points = append(points, signal.Point{Index: td.Index, Value: v})
	}
	return inv.Points(points...), nil
}
