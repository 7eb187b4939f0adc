package flightfile

import (
	"fmt"

	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zclconf/go-cty/cty"
	ctymsgpack "github.com/zclconf/go-cty/cty/msgpack"
)

type sliceDoc struct {
	Start *float64 `msgpack:"start"`
	Stop  *float64 `msgpack:"stop"`
}

type pointDoc struct {
	Name  string  `msgpack:"name"`
	Index float64 `msgpack:"index"`
	Value float64 `msgpack:"value"`
}

type instantDoc struct {
	Name  string  `msgpack:"name"`
	Index float64 `msgpack:"index"`
}

type sectionDoc struct {
	Name      string   `msgpack:"name"`
	Slice     sliceDoc `msgpack:"slice"`
	StartEdge *float64 `msgpack:"start_edge"`
	StopEdge  *float64 `msgpack:"stop_edge"`
}

type approachDoc struct {
	Type       string    `msgpack:"type"`
	Slice      sliceDoc  `msgpack:"slice"`
	Glideslope *sliceDoc `msgpack:"glideslope"`
	Localizer  *sliceDoc `msgpack:"localizer"`
	Turnoff    *float64  `msgpack:"turnoff"`
	Airport    string    `msgpack:"airport,omitempty"`
	Runway     string    `msgpack:"runway,omitempty"`
}

// signalDoc is the on-disk form of a signal.Signal.
type signalDoc struct {
	Name       string        `msgpack:"name"`
	Kind       string        `msgpack:"kind"`
	Frequency  float64       `msgpack:"frequency,omitempty"`
	Offset     float64       `msgpack:"offset,omitempty"`
	Units      string        `msgpack:"units,omitempty"`
	Data       []float64     `msgpack:"data,omitempty"`
	Mask       []bool        `msgpack:"mask,omitempty"`
	Masked     bool          `msgpack:"masked,omitempty"`
	Points     []pointDoc    `msgpack:"points,omitempty"`
	Instants   []instantDoc  `msgpack:"instants,omitempty"`
	Sections   []sectionDoc  `msgpack:"sections,omitempty"`
	Approaches []approachDoc `msgpack:"approaches,omitempty"`
	Value      []byte        `msgpack:"value,omitempty"`
}

// MarshalSignal encodes a single signal.
func MarshalSignal(s *signal.Signal) ([]byte, error) {
	doc, err := toDoc(s)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(doc)
}

// UnmarshalSignal decodes a signal written by MarshalSignal.
func UnmarshalSignal(b []byte) (*signal.Signal, error) {
	var doc signalDoc
	if err := msgpack.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode signal: %w", err)
	}
	return fromDoc(&doc)
}

func toDoc(s *signal.Signal) (*signalDoc, error) {
	doc := &signalDoc{
		Name:      s.Name,
		Kind:      s.Kind.String(),
		Frequency: s.Frequency,
		Offset:    s.Offset,
		Units:     s.Units,
	}

	switch s.Kind {
	case signal.TimeSeries:
		if s.Array != nil {
			doc.Data = s.Array.Data
			doc.Mask = s.Array.Mask
		}
		// An all-valid array has no mask; an empty one still needs telling
		// apart from a missing array.
		doc.Masked = s.Array == nil
	case signal.PointEvent:
		for _, p := range s.Points {
			doc.Points = append(doc.Points, pointDoc(p))
		}
	case signal.InstantEvent:
		for _, p := range s.Instants {
			doc.Instants = append(doc.Instants, instantDoc(p))
		}
	case signal.Interval:
		for _, sec := range s.Sections {
			doc.Sections = append(doc.Sections, sectionDoc{
				Name:      sec.Name,
				Slice:     sliceDoc(sec.Slice),
				StartEdge: sec.StartEdge,
				StopEdge:  sec.StopEdge,
			})
		}
	case signal.ApproachEvent:
		for _, a := range s.Approaches {
			doc.Approaches = append(doc.Approaches, approachDoc{
				Type:       string(a.Type),
				Slice:      sliceDoc(a.Slice),
				Glideslope: (*sliceDoc)(a.Glideslope),
				Localizer:  (*sliceDoc)(a.Localizer),
				Turnoff:    a.Turnoff,
				Airport:    a.Airport,
				Runway:     a.Runway,
			})
		}
	case signal.Attribute:
		v := s.Value
		if v.IsNull() {
			v = cty.NullVal(cty.DynamicPseudoType)
		}
		b, err := ctymsgpack.Marshal(v, cty.DynamicPseudoType)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attribute '%s': %w", s.Name, err)
		}
		doc.Value = b
	default:
		return nil, fmt.Errorf("cannot encode signal '%s' of kind %s", s.Name, s.Kind)
	}
	return doc, nil
}

func fromDoc(doc *signalDoc) (*signal.Signal, error) {
	kind, err := signal.ParseKind(doc.Kind)
	if err != nil {
		return nil, fmt.Errorf("signal '%s': %w", doc.Name, err)
	}
	s := &signal.Signal{
		Name:      doc.Name,
		Kind:      kind,
		Frequency: doc.Frequency,
		Offset:    doc.Offset,
		Units:     doc.Units,
	}

	switch kind {
	case signal.TimeSeries:
		if doc.Masked {
			break
		}
		if doc.Mask != nil && len(doc.Mask) != len(doc.Data) {
			return nil, fmt.Errorf("signal '%s': mask has %d entries for %d samples", doc.Name, len(doc.Mask), len(doc.Data))
		}
		data := doc.Data
		if data == nil {
			data = []float64{}
		}
		s.Array = signal.NewMaskedArray(data, doc.Mask)
	case signal.PointEvent:
		for _, p := range doc.Points {
			s.Points = append(s.Points, signal.Point(p))
		}
	case signal.InstantEvent:
		for _, p := range doc.Instants {
			s.Instants = append(s.Instants, signal.Instant(p))
		}
	case signal.Interval:
		for _, sec := range doc.Sections {
			s.Sections = append(s.Sections, signal.Section{
				Name:      sec.Name,
				Slice:     signal.Slice(sec.Slice),
				StartEdge: sec.StartEdge,
				StopEdge:  sec.StopEdge,
			})
		}
	case signal.ApproachEvent:
		for _, a := range doc.Approaches {
			s.Approaches = append(s.Approaches, signal.Approach{
				Type:       signal.ApproachType(a.Type),
				Slice:      signal.Slice(a.Slice),
				Glideslope: (*signal.Slice)(a.Glideslope),
				Localizer:  (*signal.Slice)(a.Localizer),
				Turnoff:    a.Turnoff,
				Airport:    a.Airport,
				Runway:     a.Runway,
			})
		}
	case signal.Attribute:
		v, err := ctymsgpack.Unmarshal(doc.Value, cty.DynamicPseudoType)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attribute '%s': %w", doc.Name, err)
		}
		s.Value = v
	}
	return s, nil
}
