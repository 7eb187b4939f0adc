package precomputed

import (
	"testing"

	"github.com/specialistvlad/flightderive/internal/signal"
	"github.com/specialistvlad/flightderive/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	ctx, _ := testutil.NewContext(t)
	s, err := Open(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	// Arrange
	ctx, _ := testutil.NewContext(t)
	s := openStore(t, "")
	results := map[string]*signal.Signal{
		"Liftoff":     signal.NewInstants("Liftoff", 1, 0, signal.Instant{Name: "Liftoff", Index: 42}),
		"Flight Type": signal.NewAttribute("Flight Type", cty.StringVal("COMPLETE")),
	}

	// Act
	require.NoError(t, s.Save(ctx, "out/a_base.fdf", results))
	require.NoError(t, s.Save(ctx, "out/a_base.fdf.old", map[string]*signal.Signal{
		"Touchdown": signal.NewInstants("Touchdown", 1, 0),
	}))
	got, err := s.Load(ctx, "out/a_base.fdf")

	// Assert
	require.NoError(t, err)
	require.Len(t, got, 2, "keys sharing a prefix must not leak into each other")
	assert.Equal(t, []signal.Instant{{Name: "Liftoff", Index: 42}}, got["Liftoff"].Instants)
	assert.Equal(t, "COMPLETE", got["Flight Type"].Value.AsString())
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	s := openStore(t, "")
	require.NoError(t, s.Save(ctx, "f", map[string]*signal.Signal{
		"Liftoff":   signal.NewInstants("Liftoff", 1, 0),
		"Touchdown": signal.NewInstants("Touchdown", 1, 0),
	}))

	require.NoError(t, s.Save(ctx, "f", map[string]*signal.Signal{
		"Liftoff": signal.NewInstants("Liftoff", 1, 0),
	}))
	got, err := s.Load(ctx, "f")

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "Liftoff")
}

func TestStore_UnknownKey(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	s := openStore(t, "")

	got, err := s.Load(ctx, "never-saved")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Persists(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	dir := t.TempDir()

	s, err := Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "f", map[string]*signal.Signal{
		"Altitude Max": signal.NewPoints("Altitude Max", 1, 0, signal.Point{Name: "Altitude Max", Index: 10, Value: 3000}),
	}))
	require.NoError(t, s.Close())

	reopened := openStore(t, dir)
	got, err := reopened.Load(ctx, "f")

	require.NoError(t, err)
	require.Contains(t, got, "Altitude Max")
	assert.Equal(t, 3000.0, got["Altitude Max"].Points[0].Value)
}
