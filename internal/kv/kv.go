// Package kv is the flat string key-value area a storefront client keeps its
// state in: cart, session token, user snapshot, recent searches. Values are
// JSON-encoded strings.
package kv

import (
	"context"
	"errors"
	"sync"
)

// Well-known keys.
const (
	KeyCart           = "freshbite-cart"
	KeyUsers          = "freshbite-users"
	KeyToken          = "freshbite-token"
	KeyUser           = "freshbite-user"
	KeyRecentSearches = "freshbite-recent-searches"
)

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type namespaced struct {
	prefix string
	inner  Store
}

// Namespace scopes every key under prefix, giving each client its own area
// on a shared backend.
func Namespace(s Store, prefix string) Store {
	return &namespaced{prefix: prefix + ":", inner: s}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
