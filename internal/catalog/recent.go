package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"go.uber.org/zap"
)

const maxRecent = 5

// RecentSearches keeps a client's last few queries, newest first.
type RecentSearches struct {
	mu      sync.Mutex
	storage kv.Store
	log     *zap.Logger
	list    []string
}

// OpenRecent loads the saved list. Malformed data starts an empty list; a
// failed read is returned.
func OpenRecent(ctx context.Context, storage kv.Store, log *zap.Logger) (*RecentSearches, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &RecentSearches{storage: storage, log: log, list: []string{}}

	raw, err := storage.Get(ctx, kv.KeyRecentSearches)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load recent searches: %w", err)
	default:
		var saved []string
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			log.Warn("stored recent searches are malformed", zap.Error(err))
			break
		}
		if len(saved) > maxRecent {
			saved = saved[:maxRecent]
		}
		r.list = saved
	}
	return r, nil
}

func (r *RecentSearches) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.list...)
}

// Add records q unless it is shorter than two characters once trimmed.
func (r *RecentSearches) Add(ctx context.Context, q string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len([]rune(strings.TrimSpace(q))) < 2 {
		return append([]string(nil), r.list...), nil
	}
	next := make([]string, 0, maxRecent)
	next = append(next, q)
	for _, s := range r.list {
		if s != q && len(next) < maxRecent {
			next = append(next, s)
		}
	}
	r.list = next

	b, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), next...), r.storage.Set(ctx, kv.KeyRecentSearches, string(b))
}

func (r *RecentSearches) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = []string{}
	return r.storage.Delete(ctx, kv.KeyRecentSearches)
}
