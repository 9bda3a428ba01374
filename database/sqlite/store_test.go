package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/database/sqlite"
	"github.com/njchilds90/gocalphad/expr"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	want, err := database.LoadYAMLFile("../testdata/alni.yaml")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "alni.db")
	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Close())

	// Reopening runs the migrations again without effect.
	store, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.PhaseNames(), got.PhaseNames())
	assert.Equal(t, want.SymbolNames(), got.SymbolNames())
	if diff := cmp.Diff(want.Parameters(), got.Parameters()); diff != "" {
		t.Errorf("parameters changed (-want +got):\n%s", diff)
	}
	for _, name := range want.PhaseNames() {
		w, _ := want.Phase(name)
		g, err := got.Phase(name)
		require.NoError(t, err)
		if diff := cmp.Diff(w, g); diff != "" {
			t.Errorf("phase %s changed (-want +got):\n%s", name, diff)
		}
	}
	for _, name := range want.SymbolNames() {
		assert.True(t, want.Symbols()[name].Equal(got.Symbols()[name]), name)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer store.Close()

	first := database.NewMemory()
	first.AddSymbol("A", expr.N(1))
	require.NoError(t, first.AddPhase(database.Phase{Name: "P", Sublattices: []float64{1}, Constituents: [][]string{{"A"}}}))
	require.NoError(t, store.Save(ctx, first))

	second := database.NewMemory()
	second.AddSymbol("B", expr.F(1, 3))
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.PhaseNames())
	assert.Equal(t, []string{"B"}, got.SymbolNames())
	assert.True(t, got.Symbols()["B"].Equal(expr.F(1, 3)))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	assert.Error(t, err)
}
