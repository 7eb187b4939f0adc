package landing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/specialistvlad/flightderive/internal/derive"
	"github.com/specialistvlad/flightderive/internal/order"
	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/specialistvlad/flightderive/internal/testutil"
	"github.com/specialistvlad/flightderive/modules/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLanding_ValuesAtTouchdown(t *testing.T) {
	// Arrange
	const n = 200
	ctx := testCtx()
	reg := catalog.New()
	reg.Load(core.Module{}, Module{})
	require.NoError(t, reg.Validate(ctx))

	speed := make([]float64, n)
	for i := range speed {
		speed[i] = float64(i)
	}
	inputs := map[string]*signal.Signal{
		core.AltitudeAAL: testutil.Series(core.AltitudeAAL, 1, testutil.FlightProfile(n)...),
		core.Airspeed:    testutil.Series(core.Airspeed, 1, speed...),
	}
	names, err := order.Dependency{}.Order(ctx, []string{core.AltitudeAAL, core.Airspeed}, reg.Names(Name), reg)
	require.NoError(t, err)

	// Act
	out, err := derive.New(reg).Derive(ctx, derive.Input{Duration: n, Results: inputs}, names)

	// Assert
	require.NoError(t, err)
	points := map[string]signal.Point{}
	for _, p := range out.PointEvents {
		points[p.Name] = p
	}
	require.Contains(t, points, AltitudeRateAtTouchdown)
	require.Contains(t, points, AirspeedAtTouchdown)
	assert.InDelta(t, 179+1.0/3, points[AltitudeRateAtTouchdown].Index, 1e-9)
	assert.InDelta(t, -3750, points[AltitudeRateAtTouchdown].Value, 1e-6)
	assert.InDelta(t, 179+1.0/3, points[AirspeedAtTouchdown].Value, 1e-9)
	assert.NotContains(t, out.Results, core.AltitudeMax)
}

func TestAtTouchdown_MissingInputs(t *testing.T) {
	ctx := testCtx()
	inv := catalog.NewInvocation(ctx, ctxlog.FromContext(ctx), AirspeedAtTouchdown, 1, 0, 10)
	td := signal.NewInstants(core.Touchdown, 1, 0, signal.Instant{Index: 4})

	got, err := atTouchdown(inv, []*signal.Signal{nil, td})
	require.NoError(t, err)
	assert.Nil(t, got)

	masked := signal.NewSeries(core.Airspeed, 1, 0, signal.Masked(10))
	got, err = atTouchdown(inv, []*signal.Signal{masked, td})
	require.NoError(t, err)
	assert.Empty(t, got.Points)
}
