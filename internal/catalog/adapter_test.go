package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/filmoteka/internal/apperr"
	"github.com/starford/filmoteka/internal/models"
	"github.com/starford/filmoteka/internal/testutil"
)

func TestAdapter_LoadSuccess(t *testing.T) {
	store := testutil.NewMemoryStore(testutil.ThreeMovies()...)
	res := NewAdapter(store).Load(context.Background())

	assert.Equal(t, Loaded, res.State)
	assert.NoError(t, res.Err)
	assert.NotNil(t, res.Handle)
	assert.Len(t, res.Catalog, 3)
}

func TestAdapter_LoadEmptySource(t *testing.T) {
	res := NewAdapter(testutil.NewMemoryStore()).Load(context.Background())
	assert.Equal(t, Loaded, res.State)
	assert.NotNil(t, res.Handle)
	assert.NotNil(t, res.Catalog)
	assert.Empty(t, res.Catalog)
}

func TestAdapter_LoadUnavailableFallsBack(t *testing.T) {
	store := testutil.NewMemoryStore(testutil.ThreeMovies()...)
	store.SetDown(true)
	res := NewAdapter(store).Load(context.Background())

	assert.Equal(t, Unavailable, res.State)
	assert.Nil(t, res.Handle)
	assert.Equal(t, Fixture(), res.Catalog)
	assert.True(t, errors.Is(res.Err, apperr.ErrSourceUnavailable))
	assert.True(t, errors.Is(res.Err, testutil.ErrUnreachable))
}

func TestAdapter_NilProvider(t *testing.T) {
	a := NewAdapter(nil)
	assert.Equal(t, "fixture", a.Source())
	res := a.Load(context.Background())
	assert.Equal(t, Unavailable, res.State)
	assert.NotEmpty(t, res.Catalog)
}

func TestAdapter_AppendThenReload(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(testutil.NewMemoryStore(testutil.ThreeMovies()...))
	before := a.Load(ctx)

	m := models.Movie{Title: "Alien", Year: 1979, Genre: "SF/Horor", Rating: 8}
	require.NoError(t, a.Append(ctx, before.Handle, m))

	after := a.Load(ctx)
	require.Len(t, after.Catalog, len(before.Catalog)+1)
	got := after.Catalog[len(after.Catalog)-1]
	assert.Equal(t, m.Title, got.Title)
	assert.Equal(t, m.Year, got.Year)
	assert.Equal(t, m.Genre, got.Genre)
	assert.Equal(t, m.Rating, got.Rating)
}

func TestAdapter_AppendWithID(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(testutil.NewMemoryStore(), WithIDColumn(true))
	h := a.Load(ctx).Handle
	require.NoError(t, a.Append(ctx, h, models.Movie{ID: "k1", Title: "A", Year: 2000, Genre: "Drama", Rating: 5}))
	assert.Equal(t, "k1", a.Load(ctx).Catalog[0].ID)
}

func TestAdapter_AppendNilHandle(t *testing.T) {
	err := NewAdapter(nil).Append(context.Background(), nil, models.Movie{Title: "x"})
	assert.True(t, errors.Is(err, apperr.ErrStore))
	assert.True(t, errors.Is(err, apperr.ErrSourceUnavailable))
}

func TestAdapter_AppendRemoteFailure(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(testutil.ThreeMovies()...)
	a := NewAdapter(store)
	h := a.Load(ctx).Handle
	store.SetDown(true)

	err := a.Append(ctx, h, models.Movie{Title: "x", Year: 2000, Rating: 5})
	assert.True(t, errors.Is(err, apperr.ErrStore))

	store.SetDown(false)
	assert.Len(t, a.Load(ctx).Catalog, 3, "failed append leaves the store unchanged")
}

func TestAdapter_DeleteAtSecondRow(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(testutil.NewMemoryStore(testutil.ThreeMovies()...))
	h := a.Load(ctx).Handle

	require.NoError(t, a.DeleteAt(ctx, h, 1))

	after := a.Load(ctx).Catalog
	assert.Equal(t, []string{"Kum", "Pulp Fiction"}, titles(after))
}

func TestAdapter_DeleteAtCSVPhysicalRow(t *testing.T) {
	ctx := context.Background()
	_, store := testutil.TestCSV(t)
	a := NewAdapter(store)
	for _, m := range testutil.ThreeMovies() {
		require.NoError(t, a.Append(ctx, store, m))
	}
	require.NoError(t, a.DeleteAt(ctx, store, 1))
	assert.Equal(t, []string{"Kum", "Pulp Fiction"}, titles(a.Load(ctx).Catalog))
}

func TestAdapter_DeleteAtHeaderOffset(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(testutil.ThreeMovies()...)
	// Offset 3 shifts every delete one row further down.
	a := NewAdapter(store, WithHeaderOffset(3))
	require.NoError(t, a.DeleteAt(ctx, store, 0))
	assert.Equal(t, []string{"Kum", "Pulp Fiction"}, titles(a.Load(ctx).Catalog))
}

func TestAdapter_DeleteAtErrors(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(testutil.ThreeMovies()...)
	a := NewAdapter(store)

	assert.True(t, errors.Is(a.DeleteAt(ctx, nil, 0), apperr.ErrStore))
	assert.True(t, errors.Is(a.DeleteAt(ctx, store, -1), apperr.ErrStore))
	assert.True(t, errors.Is(a.DeleteAt(ctx, store, 3), apperr.ErrStore))
	assert.Len(t, a.Load(ctx).Catalog, 3)
}

func TestLoadState_String(t *testing.T) {
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "unavailable", Unavailable.String())
}

func TestAdapter_LoadCancelledIsNotUnavailableSource(t *testing.T) {
	store := testutil.NewMemoryStore(testutil.ThreeMovies()...)
	store.Hold(make(chan struct{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewAdapter(store).Load(ctx)
	assert.Equal(t, Unavailable, res.State)
	assert.Nil(t, res.Handle)
	assert.True(t, errors.Is(res.Err, context.Canceled))
	assert.False(t, errors.Is(res.Err, apperr.ErrSourceUnavailable))
}
