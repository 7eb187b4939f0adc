package flightfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSignalCodec(t *testing.T) {
	f := signal.Float
	testCases := []struct {
		name string
		in   *signal.Signal
	}{
		{
			name: "series with mask",
			in: signal.NewSeries("Altitude STD", 4, 0.25,
				signal.NewMaskedArray([]float64{1, 2, 3}, []bool{false, true, false})),
		},
		{
			name: "series without mask",
			in:   signal.NewSeries("Airspeed", 1, 0, signal.NewArray(120, 121)),
		},
		{
			name: "points",
			in:   signal.NewPoints("Airspeed Max", 1, 0, signal.Point{Name: "Airspeed Max", Index: 12.5, Value: 250}),
		},
		{
			name: "instants",
			in:   signal.NewInstants("Liftoff", 2, 0.5, signal.Instant{Name: "Liftoff", Index: 40}),
		},
		{
			name: "sections with open bounds",
			in: signal.NewSections("Airborne", 1, 0, signal.Section{
				Name:      "Airborne",
				Slice:     signal.Slice{Start: f(20), Stop: nil},
				StartEdge: f(19.5),
			}),
		},
		{
			name: "approaches",
			in: signal.NewApproaches("Approach Information", 1, 0, signal.Approach{
				Type:       signal.Landing,
				Slice:      signal.Slice{Start: f(100), Stop: f(200)},
				Localizer:  &signal.Slice{Start: f(110), Stop: f(190)},
				Turnoff:    f(210),
				Airport:    "EGLL",
				Runway:     "27L",
			}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := MarshalSignal(tc.in)
			require.NoError(t, err)

			got, err := UnmarshalSignal(b)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.in, got, cmpopts.IgnoreFields(signal.Signal{}, "Value")); diff != "" {
				t.Errorf("signal mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSignalCodec_AttributeKeepsType(t *testing.T) {
	in := signal.NewAttribute("AFR Takeoff Airport", cty.ObjectVal(map[string]cty.Value{
		"icao":      cty.StringVal("EGLL"),
		"elevation": cty.NumberIntVal(83),
	}))

	b, err := MarshalSignal(in)
	require.NoError(t, err)
	got, err := UnmarshalSignal(b)
	require.NoError(t, err)

	assert.Equal(t, signal.Attribute, got.Kind)
	assert.True(t, got.Value.Type().IsObjectType())
	assert.Equal(t, "EGLL", got.Value.GetAttr("icao").AsString())
	assert.True(t, got.Value.GetAttr("elevation").RawEquals(cty.NumberIntVal(83)))
}

func TestSignalCodec_MissingArray(t *testing.T) {
	b, err := MarshalSignal(&signal.Signal{Name: "Heading", Kind: signal.TimeSeries, Frequency: 1})
	require.NoError(t, err)

	got, err := UnmarshalSignal(b)

	require.NoError(t, err)
	assert.Nil(t, got.Array)
}

func TestSignalCodec_UnknownKind(t *testing.T) {
	_, err := MarshalSignal(&signal.Signal{Name: "Mystery"})

	assert.ErrorContains(t, err, "cannot encode signal 'Mystery'")
}
