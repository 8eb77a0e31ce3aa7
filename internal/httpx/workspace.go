package httpx

import (
	"context"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/auth"
	"github.com/ariefcatur/go-freshbite.git/internal/cart"
	"github.com/ariefcatur/go-freshbite.git/internal/catalog"
	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// HeaderClientID names the storefront client a request belongs to.
const HeaderClientID = "X-Client-ID"

var clientIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const hydrateTimeout = 5 * time.Second

// Workspace is everything one client keeps in its storage area.
type Workspace struct {
	Cart    *cart.Store
	Session *auth.Store
	Recent  *catalog.RecentSearches
}

// Workspaces opens each client's stores on first use and keeps them for the
// life of the process.
type Workspaces struct {
	storage  kv.Store
	users    *auth.UserTable
	authOpts auth.Options
	log      *zap.Logger

	mu      sync.Mutex
	m       map[string]*Workspace
	loading singleflight.Group
}

// NewWorkspaces scopes client areas as client:{id} and the user table as
// shared, both on top of storage.
func NewWorkspaces(storage kv.Store, authOpts auth.Options, log *zap.Logger) *Workspaces {
	if log == nil {
		log = zap.NewNop()
	}
	authOpts.Logger = log
	return &Workspaces{
		storage:  storage,
		users:    auth.NewUserTable(kv.Namespace(storage, "shared"), log),
		authOpts: authOpts,
		log:      log,
		m:        map[string]*Workspace{},
	}
}

// Get returns the client's workspace, hydrating it from storage the first
// time. A failed hydration is not cached, so the next request retries it.
func (ws *Workspaces) Get(ctx context.Context, clientID string) (*Workspace, error) {
	// TODO: evict workspaces idle for longer than the session TTL; the map only grows.
	if w := ws.cached(clientID); w != nil {
		return w, nil
	}
	v, err, _ := ws.loading.Do(clientID, func() (any, error) {
		if w := ws.cached(clientID); w != nil {
			return w, nil
		}
		w, err := ws.open(ctx, clientID)
		if err != nil {
			return nil, err
		}
		ws.mu.Lock()
		ws.m[clientID] = w
		ws.mu.Unlock()
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

func (ws *Workspaces) cached(clientID string) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.m[clientID]
}

// open reads the client's area. The load outlives the triggering request,
// since other requests for the same client may be waiting on it.
func (ws *Workspaces) open(ctx context.Context, clientID string) (*Workspace, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hydrateTimeout)
	defer cancel()

	area := kv.Namespace(ws.storage, "client:"+clientID)
	log := ws.log.With(zap.String("client_id", clientID))
	opts := ws.authOpts
	opts.Logger = log

	c, err := cart.Open(ctx, area, log)
	if err != nil {
		return nil, err
	}
	sess, err := auth.Open(ctx, area, ws.users, opts)
	if err != nil {
		return nil, err
	}
	recent, err := catalog.OpenRecent(ctx, area, log)
	if err != nil {
		return nil, err
	}
	return &Workspace{Cart: c, Session: sess, Recent: recent}, nil
}

type ctxKey struct{}

// requireClient rejects requests without a usable X-Client-ID and attaches
// the client's workspace to the context.
func (ws *Workspaces) requireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderClientID)
		if !clientIDRe.MatchString(id) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing or invalid " + HeaderClientID + " header"})
			return
		}
		wsp, err := ws.Get(r.Context(), id)
		if err != nil {
			ws.log.Error("open client workspace failed", zap.String("client_id", id), zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "storage unavailable, try again"})
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, clientCtx{id: id, ws: wsp})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type clientCtx struct {
	id string
	ws *Workspace
}

func client(r *http.Request) clientCtx {
	c, _ := r.Context().Value(ctxKey{}).(clientCtx)
	return c
}
