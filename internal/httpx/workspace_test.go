package httpx

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/ariefcatur/go-freshbite.git/internal/auth"
	"github.com/ariefcatur/go-freshbite.git/internal/cart"
	"github.com/ariefcatur/go-freshbite.git/internal/catalog"
	"github.com/ariefcatur/go-freshbite.git/internal/discount"
	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/ariefcatur/go-freshbite.git/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore fails reads while down is set.
type flakyStore struct {
	kv.Store
	down atomic.Bool
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.down.Load() {
		return "", errors.New("connection refused")
	}
	return f.Store.Get(ctx, key)
}

func savedCart(t *testing.T, storage kv.Store, clientID string, ids ...string) {
	t.Helper()
	ctx := context.Background()
	c, err := cart.Open(ctx, kv.Namespace(storage, "client:"+clientID), nil)
	require.NoError(t, err)
	for _, id := range ids {
		m, err := catalog.Find(ctx, catalog.Seed(), id)
		require.NoError(t, err)
		require.NoError(t, c.Add(ctx, m.CartItem("")))
	}
}

func TestWorkspaceReadFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStore{Store: kv.NewMemory()}
	savedCart(t, storage, "a", "1", "2", "3")
	ws := NewWorkspaces(storage, auth.Options{}, nil)

	storage.down.Store(true)
	_, err := ws.Get(ctx, "a")
	require.Error(t, err)

	storage.down.Store(false)
	w, err := ws.Get(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, w.Cart.Snapshot().Items, 3)

	m, err := catalog.Find(ctx, catalog.Seed(), "8")
	require.NoError(t, err)
	require.NoError(t, w.Cart.Add(ctx, m.CartItem("")))

	reopened, err := cart.Open(ctx, kv.Namespace(storage, "client:a"), nil)
	require.NoError(t, err)
	assert.Len(t, reopened.Snapshot().Items, 4)
}

func TestWorkspaceLoadIgnoresRequestCancellation(t *testing.T) {
	storage := kv.NewMemory()
	savedCart(t, storage, "a", "1", "2")
	ws := NewWorkspaces(storage, auth.Options{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w, err := ws.Get(ctx, "a")

	require.NoError(t, err)
	assert.Len(t, w.Cart.Snapshot().Items, 2)
}

func TestUnavailableStorageAnswers503(t *testing.T) {
	log := zap.NewNop()
	storage := &flakyStore{Store: kv.NewMemory()}
	savedCart(t, storage, "a", "4")
	api := &API{
		Menu:       catalog.Seed(),
		Workspaces: NewWorkspaces(storage, auth.Options{}, log),
		Limiter:    ratelimit.NewMemory(5, 0),
		Orders:     orders.NewService(orders.Options{Logger: log}),
		Discounts:  discount.Default(),
		Log:        log,
	}
	h := NewRouter(log)
	api.Register(h)

	storage.down.Store(true)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/cart/items", "a", map[string]string{"id": "1"}).Code)

	storage.down.Store(false)
	st := decodeBody[cart.State](t, do(t, h, http.MethodPost, "/cart/items", "a", map[string]string{"id": "1"}))
	assert.Len(t, st.Items, 2)
}
