package derive

import (
	"errors"
	"testing"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestResolve_AllAbsent(t *testing.T) {
	desc := &catalog.NodeDescriptor{Name: "Altitude Rate", Dependencies: []string{"Altitude STD", "Altitude Radio"}}

	_, err := resolve(testLogger(), desc, map[string]*signal.Signal{}, attrs{}, NewAlignmentCache(nil))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvableNode))
	var unresolvable *UnresolvableNodeError
	require.ErrorAs(t, err, &unresolvable)
	assert.Equal(t, "Altitude Rate", unresolvable.Node)
}

func TestResolve_LookupPrecedence(t *testing.T) {
	fromResults := signal.NewAttribute("Family", cty.StringVal("from results"))
	fromAttrs := signal.NewAttribute("Family", cty.StringVal("from attributes"))
	speed := series("Airspeed", 1, 10)
	desc := &catalog.NodeDescriptor{Name: "X", Dependencies: []string{"Family", "Series", "Airspeed", "Missing"}}

	res, err := resolve(testLogger(), desc,
		map[string]*signal.Signal{"Family": fromResults, "Airspeed": speed},
		attrs{"Family": fromAttrs, "Series": signal.NewAttribute("Series", cty.StringVal("A320-200"))},
		NewAlignmentCache(nil))

	require.NoError(t, err)
	require.Len(t, res.deps, 4)
	assert.Same(t, fromResults, res.deps[0])
	assert.Equal(t, "A320-200", res.deps[1].Value.AsString())
	assert.Same(t, speed, res.deps[2])
	assert.Nil(t, res.deps[3])
}

func TestTiming_Policy(t *testing.T) {
	slow := signal.NewSeries("Slow", 0.25, 0.5, signal.NewArray(1))
	fast := signal.NewSeries("Fast", 8, 0.1, signal.NewArray(1))
	attr := signal.NewAttribute("Family", cty.StringVal("A320"))

	tests := []struct {
		name       string
		desc       catalog.NodeDescriptor
		deps       []*signal.Signal
		wantFreq   float64
		wantOffset float64
		wantAlign  bool
	}{
		{"both declared", catalog.NodeDescriptor{Frequency: signal.Float(2), Offset: signal.Float(0.25)}, []*signal.Signal{slow, fast}, 2, 0.25, true},
		{"frequency only takes first offset", catalog.NodeDescriptor{Frequency: signal.Float(2)}, []*signal.Signal{nil, slow, fast}, 2, 0.5, true},
		{"offset only takes first frequency", catalog.NodeDescriptor{Offset: signal.Float(0.05)}, []*signal.Signal{fast, slow}, 8, 0.05, true},
		{"neither adopts first timed dependency", catalog.NodeDescriptor{}, []*signal.Signal{attr, slow, fast}, 0.25, 0.5, true},
		{"opt out falls back to one hertz", catalog.NodeDescriptor{NoAlign: true}, []*signal.Signal{fast}, 1, 0, false},
		{"opt out keeps declared timing", catalog.NodeDescriptor{NoAlign: true, Frequency: signal.Float(4), Offset: signal.Float(0.1)}, []*signal.Signal{fast}, 4, 0.1, false},
		{"attributes only", catalog.NodeDescriptor{}, []*signal.Signal{attr}, 1, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, o, align := timing(&tc.desc, tc.deps)
			assert.Equal(t, tc.wantFreq, f)
			assert.Equal(t, tc.wantOffset, o)
			assert.Equal(t, tc.wantAlign, align)
		})
	}
}

func TestResolve_AlignsOnlyMismatchedDependencies(t *testing.T) {
	aligner := newCountingAligner()
	cache := NewAlignmentCache(aligner.align)
	first := series("Airspeed", 1, 10)
	second := series("Altitude STD", 4, 40)
	attr := signal.NewAttribute("Family", cty.StringVal("A320"))
	desc := &catalog.NodeDescriptor{Name: "X", Dependencies: []string{"Airspeed", "Altitude STD", "Family"}}

	res, err := resolve(testLogger(), desc,
		map[string]*signal.Signal{"Airspeed": first, "Altitude STD": second, "Family": attr},
		nil, cache)

	require.NoError(t, err)
	assert.Equal(t, 1.0, res.frequency)
	assert.Same(t, first, res.deps[0], "the timing source needs no alignment")
	assert.Equal(t, 10, res.deps[1].Array.Len())
	assert.Equal(t, 1.0, res.deps[1].Frequency)
	assert.Same(t, attr, res.deps[2])
	assert.Equal(t, map[string]int{"Altitude STD": 1}, aligner.calls)
}

func TestResolve_NoAlignPassesDependenciesThrough(t *testing.T) {
	aligner := newCountingAligner()
	fast := series("Fast", 8, 80)
	desc := &catalog.NodeDescriptor{Name: "X", Dependencies: []string{"Fast"}, NoAlign: true}

	res, err := resolve(testLogger(), desc, map[string]*signal.Signal{"Fast": fast}, nil, NewAlignmentCache(aligner.align))

	require.NoError(t, err)
	assert.Same(t, fast, res.deps[0])
	assert.Empty(t, aligner.calls)
}
