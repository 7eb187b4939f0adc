package signal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestAlign_SeriesUpsample(t *testing.T) {
	s := NewSeries("Altitude STD", 1, 0, NewArray(0, 10, 20))

	got := Align(s, 2, 0)

	require.Equal(t, 6, got.Array.Len())
	assert.Equal(t, []float64{0, 5, 10, 15, 20, 0}, got.Array.Data)
	assert.Equal(t, []bool{false, false, false, false, false, true}, got.Array.Mask)
	assert.Equal(t, 2.0, got.Frequency)
	assert.Equal(t, 1.0, s.Frequency, "source must not be modified")
}

func TestAlign_SeriesDownsample(t *testing.T) {
	s := NewSeries("Airspeed", 2, 0, NewArray(0, 1, 2, 3, 4, 5, 6, 7))

	got := Align(s, 1, 0)

	assert.Equal(t, []float64{0, 2, 4, 6}, got.Array.Data)
	assert.Equal(t, 0, len(got.Array.Data)-got.Array.ValidCount())
}

func TestAlign_SeriesOffsetAndMask(t *testing.T) {
	s := NewSeries("Heading", 1, 0, NewMaskedArray([]float64{0, 10, 20, 30}, []bool{false, true, false, false}))

	got := Align(s, 1, 0.5)

	// Positions 0.5, 1.5, 2.5, 3.5: the first two touch the masked sample,
	// the last one runs off the end.
	assert.Equal(t, []bool{true, true, false, true}, got.Array.Mask)
	assert.InDelta(t, 25.0, got.Array.Data[2], 1e-9)
}

func TestAlign_EventsReindexed(t *testing.T) {
	points := NewPoints("Airspeed Max", 4, 0.125, Point{Name: "Airspeed Max", Index: 4, Value: 250})
	instants := NewInstants("Liftoff", 2, 0, Instant{Name: "Liftoff", Index: 10})

	gotPoints := Align(points, 1, 0)
	gotInstants := Align(instants, 1, 0)

	assert.Equal(t, []Point{{Name: "Airspeed Max", Index: 1.125, Value: 250}}, gotPoints.Points)
	assert.Equal(t, []Instant{{Name: "Liftoff", Index: 5}}, gotInstants.Instants)
}

func TestAlign_SectionsKeepNilBounds(t *testing.T) {
	s := NewSections("Airborne", 2, 0, Section{
		Name:      "Airborne",
		Slice:     Slice{Start: Float(10), Stop: nil},
		StartEdge: nil,
		StopEdge:  Float(40),
	})

	got := Align(s, 1, 0)

	want := []Section{{
		Name:      "Airborne",
		Slice:     Slice{Start: Float(5)},
		StopEdge:  Float(20),
		StartEdge: nil,
	}}
	if diff := cmp.Diff(want, got.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestAlign_Approaches(t *testing.T) {
	s := NewApproaches("Approach Information", 4, 0, Approach{
		Type:       Landing,
		Slice:      Slice{Start: Float(40), Stop: Float(80)},
		Glideslope: &Slice{Start: Float(48), Stop: Float(72)},
		Turnoff:    Float(100),
	})

	got := Align(s, 1, 0)

	require.Len(t, got.Approaches, 1)
	a := got.Approaches[0]
	assert.Equal(t, 10.0, *a.Slice.Start)
	assert.Equal(t, 20.0, *a.Slice.Stop)
	assert.Equal(t, 12.0, *a.Glideslope.Start)
	assert.Nil(t, a.Localizer)
	assert.Equal(t, 25.0, *a.Turnoff)
}

func TestAlign_NoOpCases(t *testing.T) {
	attr := NewAttribute("Family", cty.StringVal("A320"))
	assert.Same(t, attr, Align(attr, 2, 0))

	s := NewSeries("Altitude STD", 1, 0, NewArray(1, 2))
	assert.Same(t, s, Align(s, 1, 0))

	assert.Nil(t, Align(nil, 1, 0))
}
