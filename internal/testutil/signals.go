package testutil

import (
	"github.com/specialistvlad/flightderive/internal/flight"
	"github.com/specialistvlad/flightderive/internal/signal"
)

// Ramp returns a series of n samples rising from start by step.
func Ramp(name string, frequency float64, n int, start, step float64) *signal.Signal {
	data := make([]float64, n)
	for i := range data {
		data[i] = start + step*float64(i)
	}
	return signal.NewSeries(name, frequency, 0, signal.NewArray(data...))
}

// Series wraps values as a fully valid series.
func Series(name string, frequency float64, values ...float64) *signal.Signal {
	return signal.NewSeries(name, frequency, 0, signal.NewArray(values...))
}

// Recording builds a flight recording from the given series.
func Recording(duration float64, series ...*signal.Signal) *flight.Recording {
	rec := &flight.Recording{
		Duration: duration,
		Frame:    map[string]string{},
		Signals:  map[string]*signal.Signal{},
		Invalid:  map[string]*signal.Signal{},
	}
	for _, s := range series {
		rec.Signals[s.Name] = s
	}
	return rec
}

// FlightProfile returns the altitude above airfield of a short flight
// sampled at 1 Hz: 20 s on the ground, a climb to 3000 ft, a cruise, a
// descent and 20 s on the ground again. The result lasts n seconds, n >= 100.
func FlightProfile(n int) []float64 {
	alt := make([]float64, n)
	air := n - 40
	for i := 20; i < 20+air; i++ {
		t := i - 20
		switch {
		case t < air/4:
			alt[i] = 3000 * float64(t) / float64(air/4)
		case t >= air-air/4:
			alt[i] = 3000 * float64(air-t) / float64(air/4)
		default:
			alt[i] = 3000
		}
	}
	return alt
}
