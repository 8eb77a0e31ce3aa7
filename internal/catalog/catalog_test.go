package catalog

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ids(items []MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFilterAllSortsPopularThenRating(t *testing.T) {
	got := Filter(Seed(), "All", "")

	require.Len(t, got, 8)
	assert.Equal(t, "1", got[0].ID, "popular burger first")
	// 4.9 ties keep seed order
	assert.Equal(t, []string{"1", "2", "6", "3", "4", "5", "7", "8"}, ids(got))
}

func TestFilterByCategory(t *testing.T) {
	assert.Equal(t, []string{"2", "7"}, ids(Filter(Seed(), "Healthy", "")))
	assert.Empty(t, Filter(Seed(), "Sushi", ""))
}

func TestFilterQueryMatchesNameDescriptionCategory(t *testing.T) {
	assert.Equal(t, []string{"2", "3", "5"}, ids(Filter(Seed(), "", "CHICKEN")))
	assert.Equal(t, []string{"4"}, ids(Filter(Seed(), "", "mozzarella")))
	assert.Equal(t, []string{"6"}, ids(Filter(Seed(), "All", "  desserts ")))
	assert.Equal(t, []string{"3"}, ids(Filter(Seed(), "Burgers", "wings")))
}

func TestCategories(t *testing.T) {
	assert.Equal(t,
		[]string{"All", "Burgers", "Healthy", "Pizza", "Asian", "Desserts", "Drinks"},
		Categories(Seed()))
}

func TestFindAndCartItem(t *testing.T) {
	ctx := context.Background()
	m, err := Find(ctx, Seed(), "8")
	require.NoError(t, err)

	it := m.CartItem("no ice")
	assert.Equal(t, "Craft Lemonade", it.Name)
	assert.Equal(t, "4.99", it.Price.String())
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, "no ice", it.SpecialInstructions)
	assert.True(t, it.Valid())

	_, err = Find(ctx, Seed(), "99")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestStaticReturnsCopy(t *testing.T) {
	src := Seed()
	items, err := src.Items(context.Background())
	require.NoError(t, err)
	items[0].Name = "changed"
	assert.Equal(t, "Gourmet Burger Deluxe", src[0].Name)
}

func TestRecentSearches(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	r, err := OpenRecent(ctx, storage, nil)
	require.NoError(t, err)

	for _, q := range []string{"pizza", "burger", "x", "salad", "pizza", "cake", "wings", "tea"} {
		_, err := r.Add(ctx, q)
		require.NoError(t, err)
	}

	want := []string{"tea", "wings", "cake", "pizza", "salad"}
	assert.Equal(t, want, r.List())
	reopened, err := OpenRecent(ctx, storage, nil)
	require.NoError(t, err)
	assert.Equal(t, want, reopened.List())

	require.NoError(t, r.Clear(ctx))
	assert.Empty(t, r.List())
	_, err = storage.Get(ctx, kv.KeyRecentSearches)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRecentSearchesMalformed(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(ctx, kv.KeyRecentSearches, "nope"))
	core, logs := observer.New(zapcore.WarnLevel)

	r, err := OpenRecent(ctx, storage, zap.New(core))

	require.NoError(t, err)
	assert.Empty(t, r.List())
	assert.Equal(t, 1, logs.Len())
}
