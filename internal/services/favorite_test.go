package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites_AddSynthesizesID(t *testing.T) {
	ctx := context.Background()
	f := NewFavorites(openStore(t))

	fav, err := f.Add(ctx, api.Story{Name: "Rina", Description: "senja"})
	require.NoError(t, err)
	_, err = uuid.Parse(fav.ID)
	require.NoError(t, err)
	assert.False(t, fav.SavedAt.IsZero())

	got, err := f.Get(ctx, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, "senja", got.Description)
}

func TestFavorites_AddDuplicate(t *testing.T) {
	ctx := context.Background()
	f := NewFavorites(openStore(t))

	_, err := f.Add(ctx, api.Story{ID: "s1", Name: "a"})
	require.NoError(t, err)
	_, err = f.Add(ctx, api.Story{ID: "s1", Name: "b"})
	require.ErrorIs(t, err, common.ErrDuplicateKey)
}

func TestFavorites_Toggle(t *testing.T) {
	ctx := context.Background()
	f := NewFavorites(openStore(t))
	s := api.Story{ID: "s1", Name: "Budi", Description: "kopi"}

	on, err := f.Toggle(ctx, s)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = f.Toggle(ctx, s)
	require.NoError(t, err)
	assert.False(t, on)

	list, err := f.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.Toggle(ctx, api.Story{})
	require.ErrorIs(t, err, common.ErrEmptyPayload)
}

func TestFavorites_SearchSortDeleteClear(t *testing.T) {
	ctx := context.Background()
	f := NewFavorites(openStore(t))
	for _, s := range []api.Story{
		{ID: "1", Name: "charlie", Description: "pantai kuta", CreatedAt: "2024-01-03T00:00:00Z"},
		{ID: "2", Name: "Alpha", Description: "gunung", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "3", Name: "bravo", Description: "Pantai Losari", CreatedAt: "2024-01-02T00:00:00Z"},
	} {
		_, err := f.Add(ctx, s)
		require.NoError(t, err)
	}

	found, err := f.Search(ctx, "PANTAI")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(found))

	sorted, err := f.Sort(ctx, models.SortByName, models.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, ids(sorted))

	sorted, err = f.Sort(ctx, models.SortByCreatedAt, models.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "2"}, ids(sorted))

	require.NoError(t, f.Delete(ctx, "3"))
	require.NoError(t, f.Delete(ctx, "missing"))
	list, err := f.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(list))

	require.NoError(t, f.Clear(ctx))
	list, err = f.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func ids(items []models.FavoriteStory) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
