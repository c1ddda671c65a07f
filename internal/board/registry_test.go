package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/gridtile/internal/grid"
)

func newRegistry(st *mapStore) *Registry {
	return NewRegistry(st, RegistryOptions{
		Surface:          Options{DefaultW: 1, DefaultH: 1},
		Grid:             testGrid,
		ContainerWidthPx: 430,
	})
}

func TestRegistry_OpenCreatesAndCaches(t *testing.T) {
	ctx := context.Background()
	st := newMapStore()
	r := newRegistry(st)

	_, err := r.Get(ctx, "main")
	assert.ErrorIs(t, err, ErrNotFound)

	s, err := r.Open(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, testGrid, s.Snapshot().Grid)

	again, err := r.Get(ctx, "main")
	require.NoError(t, err)
	assert.Same(t, s, again)

	names, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, names, "opened boards are listed before they are saved")

	_, err = r.Open(ctx, "../x")
	assert.Error(t, err)
}

func TestRegistry_LoadsFromStore(t *testing.T) {
	ctx := context.Background()
	st := newMapStore()
	stored := New("ops", testGrid, 430)
	stored.Widgets = grid.Layout{{ID: "a", X: 0, Y: 2, W: 1, H: 1}}
	require.NoError(t, st.Save(ctx, stored))

	r := newRegistry(st)
	s, err := r.Get(ctx, "ops")
	require.NoError(t, err)
	assert.Equal(t, grid.Layout{{ID: "a", X: 0, Y: 0, W: 1, H: 1}}, s.Snapshot().Widgets)
}

func TestRegistry_SaveAllAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newMapStore()
	r := newRegistry(st)

	a, err := r.Open(ctx, "a")
	require.NoError(t, err)
	_, err = a.AddWidget(WidgetSpec{ID: "w"})
	require.NoError(t, err)
	_, err = r.Open(ctx, "b") // clean, not saved
	require.NoError(t, err)

	require.NoError(t, r.SaveAll(ctx))
	assert.Equal(t, 1, st.saves)

	require.NoError(t, r.Delete(ctx, "a"))
	names, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	// Opened but never saved: deleting just forgets it.
	require.NoError(t, r.Delete(ctx, "b"))
	assert.ErrorIs(t, r.Delete(ctx, "b"), ErrNotFound)
}
