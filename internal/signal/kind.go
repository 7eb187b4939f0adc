package signal

import "fmt"

// Kind is the discriminator of the Signal union.
type Kind int

const (
	// KindUnknown is the zero value. Classifying it is an error.
	KindUnknown Kind = iota
	TimeSeries
	PointEvent
	InstantEvent
	Interval
	Attribute
	ApproachEvent
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	TimeSeries:    "time_series",
	PointEvent:    "point_event",
	InstantEvent:  "instant_event",
	Interval:      "interval",
	Attribute:     "attribute",
	ApproachEvent: "approach_event",
}

// String returns the stable snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HasTimeAxis reports whether values of this kind carry a frequency and
// offset and can therefore be aligned.
func (k Kind) HasTimeAxis() bool {
	switch k {
	case TimeSeries, PointEvent, InstantEvent, Interval, ApproachEvent:
		return true
	default:
		return false
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && k != KindUnknown {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown signal kind %q", s)
}
