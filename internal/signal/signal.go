package signal

import "github.com/zclconf/go-cty/cty"

// Point is a scalar measurement attached to a position on the flight
// timeline. Index is a fractional sample position at the owning signal's
// frequency.
type Point struct {
	Name  string
	Index float64
	Value float64
}

// Instant is a bare timestamp on the flight timeline.
type Instant struct {
	Name  string
	Index float64
}

// Slice is a half-open sample range. A nil bound means the start or the end
// of the data.
type Slice struct {
	Start *float64
	Stop  *float64
}

// Section is a named interval. The edges are the precise fractional
// boundaries, the slice the whole-sample range that covers them.
type Section struct {
	Name      string
	Slice     Slice
	StartEdge *float64
	StopEdge  *float64
}

// ApproachType classifies the outcome of an approach.
type ApproachType string

const (
	Landing    ApproachType = "LANDING"
	GoAround   ApproachType = "GO_AROUND"
	TouchAndGo ApproachType = "TOUCH_AND_GO"
)

// Approach describes one approach to an airport.
type Approach struct {
	Type       ApproachType
	Slice      Slice
	Glideslope *Slice
	Localizer  *Slice
	Turnoff    *float64
	Airport    string
	Runway     string
}

// Signal is a named value produced by a raw recording or a derivation node.
// Only the payload field that matches Kind is meaningful.
type Signal struct {
	Name      string
	Kind      Kind
	Frequency float64
	Offset    float64
	Units     string

	Array      *Array
	Points     []Point
	Instants   []Instant
	Sections   []Section
	Approaches []Approach
	Value      cty.Value
}

// Float returns a pointer to v, for optional bounds.
func Float(v float64) *float64 {
	return &v
}

// NewSeries builds a time series signal.
func NewSeries(name string, frequency, offset float64, arr *Array) *Signal {
	return &Signal{Name: name, Kind: TimeSeries, Frequency: frequency, Offset: offset, Array: arr}
}

// NewPoints builds a point event signal.
func NewPoints(name string, frequency, offset float64, points ...Point) *Signal {
	return &Signal{Name: name, Kind: PointEvent, Frequency: frequency, Offset: offset, Points: points}
}

// NewInstants builds an instant event signal.
func NewInstants(name string, frequency, offset float64, instants ...Instant) *Signal {
	return &Signal{Name: name, Kind: InstantEvent, Frequency: frequency, Offset: offset, Instants: instants}
}

// NewSections builds an interval signal.
func NewSections(name string, frequency, offset float64, sections ...Section) *Signal {
	return &Signal{Name: name, Kind: Interval, Frequency: frequency, Offset: offset, Sections: sections}
}

// NewApproaches builds an approach event signal.
func NewApproaches(name string, frequency, offset float64, approaches ...Approach) *Signal {
	return &Signal{Name: name, Kind: ApproachEvent, Frequency: frequency, Offset: offset, Approaches: approaches}
}

// NewAttribute builds an attribute signal. Attributes have no time axis.
func NewAttribute(name string, value cty.Value) *Signal {
	return &Signal{Name: name, Kind: Attribute, Value: value}
}

// HasTimeAxis reports whether the signal can be aligned.
func (s *Signal) HasTimeAxis() bool {
	return s != nil && s.Kind.HasTimeAxis() && s.Frequency > 0
}

// SameTiming reports whether s already sits at the given frequency and offset.
func (s *Signal) SameTiming(frequency, offset float64) bool {
	return s.Frequency == frequency && s.Offset == offset
}

// Duration returns the covered time in seconds for a time series, or zero.
func (s *Signal) Duration() float64 {
	if s == nil || s.Kind != TimeSeries || s.Frequency <= 0 {
		return 0
	}
	return float64(s.Array.Len()) / s.Frequency
}
