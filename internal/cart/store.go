// Package cart holds a client's shopping cart: line items with derived total
// and count, a drawer open flag, and write-through persistence to the
// client's storage area.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"go.uber.org/zap"
)

type Store struct {
	mu      sync.Mutex
	storage kv.Store
	log     *zap.Logger
	state   State
}

// Open restores the cart saved in storage. Malformed data is logged and the
// cart starts empty; a failed read is returned so the caller does not
// overwrite the saved cart with an empty one.
func Open(ctx context.Context, storage kv.Store, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{storage: storage, log: log}
	s.state = derive(State{}, nil)

	raw, err := storage.Get(ctx, kv.KeyCart)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items, legacy, err := decodeItems(raw)
	if err != nil {
		log.Warn("stored cart is malformed, starting empty", zap.Error(err))
		return s, nil
	}
	items, dropped := validItems(items)
	if dropped > 0 {
		log.Warn("dropped invalid cart items", zap.Int("dropped", dropped))
	}
	s.state = derive(s.state, items)
	if legacy {
		if err := s.persist(ctx); err != nil {
			log.Warn("rewrite legacy cart failed", zap.Error(err))
		}
	}
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = slices.Clone(s.state.Items)
	return st
}

// Add puts one unit of item in the cart: an existing line with the same ID
// is incremented, otherwise the item is appended with quantity 1.
func (s *Store) Add(ctx context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := slices.Clone(s.state.Items)
	if i := indexOf(items, item.ID); i >= 0 {
		items[i].Quantity++
	} else {
		item.Quantity = 1
		items = append(items, item)
	}
	return s.commit(ctx, items)
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, id)
}

func (s *Store) remove(ctx context.Context, id string) error {
	items := slices.DeleteFunc(slices.Clone(s.state.Items), func(it Item) bool { return it.ID == id })
	return s.commit(ctx, items)
}

// UpdateQuantity sets an item's quantity; zero or less removes it. Unknown
// ids leave the items unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.remove(ctx, id)
	}
	items := slices.Clone(s.state.Items)
	if i := indexOf(items, id); i >= 0 {
		items[i].Quantity = quantity
	}
	return s.commit(ctx, items)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, nil)
}

// Load replaces every item at once.
func (s *Store) Load(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, slices.Clone(items))
}

// Toggle flips the drawer flag and reports the new value.
func (s *Store) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsOpen = !s.state.IsOpen
	return s.state.IsOpen
}

func (s *Store) Close() {
	s.mu.Lock()
	s.state.IsOpen = false
	s.mu.Unlock()
}

// commit installs items, recomputes derived fields and saves. The in-memory
// state is updated even when saving fails.
func (s *Store) commit(ctx context.Context, items []Item) error {
	s.state = derive(s.state, items)
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := encodeItems(s.state.Items)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, kv.KeyCart, raw); err != nil {
		s.log.Error("save cart failed", zap.Error(err))
		return err
	}
	return nil
}

func derive(st State, items []Item) State {
	if items == nil {
		items = []Item{}
	}
	st.Items = items
	st.Total = pricing.Subtotal(items)
	st.ItemCount = pricing.ItemCount(items)
	return st
}

func indexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}
