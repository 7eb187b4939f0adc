// Package refdata loads airport and runway reference data and builds the
// achieved flight record attributes from it.
package refdata

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Position is a WGS84 coordinate in decimal degrees.
type Position struct {
	Latitude  float64 `yaml:"latitude" cty:"latitude"`
	Longitude float64 `yaml:"longitude" cty:"longitude"`
}

// Strip describes the paved surface of a runway.
type Strip struct {
	Length  float64 `yaml:"length" cty:"length"`
	Width   float64 `yaml:"width" cty:"width"`
	Surface string  `yaml:"surface" cty:"surface"`
}

// Localizer is the lateral guidance transmitter of an ILS.
type Localizer struct {
	Latitude  float64 `yaml:"latitude" cty:"latitude"`
	Longitude float64 `yaml:"longitude" cty:"longitude"`
	Frequency float64 `yaml:"frequency" cty:"frequency"`
	Heading   float64 `yaml:"heading" cty:"heading"`
	BeamWidth float64 `yaml:"beam_width" cty:"beam_width"`
}

// Glideslope is the vertical guidance transmitter of an ILS.
type Glideslope struct {
	Latitude          float64 `yaml:"latitude" cty:"latitude"`
	Longitude         float64 `yaml:"longitude" cty:"longitude"`
	Angle             float64 `yaml:"angle" cty:"angle"`
	ThresholdDistance float64 `yaml:"threshold_distance" cty:"threshold_distance"`
}

// Runway is one landing direction of a physical runway.
type Runway struct {
	Identifier      string      `yaml:"identifier" cty:"identifier"`
	MagneticHeading float64     `yaml:"magnetic_heading" cty:"magnetic_heading"`
	Start           *Position   `yaml:"start" cty:"start"`
	End             *Position   `yaml:"end" cty:"end"`
	Strip           *Strip      `yaml:"strip" cty:"strip"`
	Localizer       *Localizer  `yaml:"localizer" cty:"localizer"`
	Glideslope      *Glideslope `yaml:"glideslope" cty:"glideslope"`
}

// Airport is an aerodrome and its runways.
type Airport struct {
	ICAO              string   `yaml:"icao" cty:"icao"`
	IATA              string   `yaml:"iata" cty:"iata"`
	Name              string   `yaml:"name" cty:"name"`
	Region            string   `yaml:"region" cty:"region"`
	Latitude          float64  `yaml:"latitude" cty:"latitude"`
	Longitude         float64  `yaml:"longitude" cty:"longitude"`
	Elevation         float64  `yaml:"elevation" cty:"elevation"`
	MagneticVariation string   `yaml:"magnetic_variation" cty:"magnetic_variation"`
	Runways           []Runway `yaml:"runways"`
}

// Provider answers airport and runway lookups.
type Provider interface {
	Airport(icao string) (*Airport, bool)
	Runway(icao, identifier string) (*Runway, bool)
}

type document struct {
	Airports []Airport `yaml:"airports"`
}

// Store is an in-memory Provider.
type Store struct {
	airports map[string]*Airport
	runways  map[string]map[string]*Runway
}

var _ Provider = (*Store)(nil)

// Load reads a YAML reference data file.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference data '%s': %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML reference data. Runway identifiers are normalised and
// runways without a start position get the end of the opposite direction.
func Parse(b []byte) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	s := &Store{
		airports: make(map[string]*Airport, len(doc.Airports)),
		runways:  make(map[string]map[string]*Runway, len(doc.Airports)),
	}
	for i := range doc.Airports {
		apt := &doc.Airports[i]
		apt.ICAO = strings.ToUpper(strings.TrimSpace(apt.ICAO))
		if apt.ICAO == "" {
			return nil, fmt.Errorf("airport #%d has no ICAO code", i+1)
		}
		if _, dup := s.airports[apt.ICAO]; dup {
			return nil, fmt.Errorf("airport '%s' is listed twice", apt.ICAO)
		}
		s.airports[apt.ICAO] = apt

		byID := make(map[string]*Runway, len(apt.Runways))
		for j := range apt.Runways {
			rwy := &apt.Runways[j]
			rwy.Identifier = NormalizeRunway(rwy.Identifier)
			byID[rwy.Identifier] = rwy
		}
		for _, rwy := range byID {
			if rwy.Start != nil {
				continue
			}
			opp, err := OppositeRunway(rwy.Identifier)
			if err != nil {
				continue
			}
			if other, ok := byID[opp]; ok && other.End != nil {
				start := *other.End
				rwy.Start = &start
			}
		}
		s.runways[apt.ICAO] = byID
	}
	return s, nil
}

// Airport implements Provider.
func (s *Store) Airport(icao string) (*Airport, bool) {
	apt, ok := s.airports[strings.ToUpper(icao)]
	return apt, ok
}

// Runway implements Provider.
func (s *Store) Runway(icao, identifier string) (*Runway, bool) {
	rwys, ok := s.runways[strings.ToUpper(icao)]
	if !ok {
		return nil, false
	}
	rwy, ok := rwys[NormalizeRunway(identifier)]
	return rwy, ok
}

// Len returns the number of airports.
func (s *Store) Len() int { return len(s.airports) }

// NormalizeRunway strips the "RW" prefix some sources use: "RW04L" → "04L".
func NormalizeRunway(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if strings.HasPrefix(id, "RW") {
		id = strings.TrimSpace(id[2:])
	}
	return id
}

var oppositeSuffix = map[string]string{"L": "R", "R": "L", "C": "C", "T": "T", "": ""}

// OppositeRunway returns the identifier of the reciprocal direction: "04L" →
// "22R".
func OppositeRunway(id string) (string, error) {
	id = NormalizeRunway(id)
	if len(id) < 2 || len(id) > 3 {
		return "", fmt.Errorf("malformed runway identifier %q", id)
	}
	dir, err := strconv.Atoi(id[:2])
	if err != nil || dir < 1 || dir > 36 {
		return "", fmt.Errorf("malformed runway identifier %q", id)
	}
	suffix, ok := oppositeSuffix[id[2:]]
	if !ok {
		return "", fmt.Errorf("malformed runway identifier %q", id)
	}
	if dir <= 18 {
		dir += 18
	} else {
		dir -= 18
	}
	return fmt.Sprintf("%02d%s", dir, suffix), nil
}
