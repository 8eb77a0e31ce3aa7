package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"go.uber.org/zap"
)

type userRecord struct {
	User
	Password string `json:"password"`
}

// UserTable is the registered-user list, stored as one JSON array under
// kv.KeyUsers. Writes rewrite the whole list; the mutex orders writers in this
// process only.
type UserTable struct {
	mu      sync.Mutex
	storage kv.Store
	log     *zap.Logger
}

func NewUserTable(storage kv.Store, log *zap.Logger) *UserTable {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserTable{storage: storage, log: log}
}

func (t *UserTable) load(ctx context.Context) ([]userRecord, error) {
	raw, err := t.storage.Get(ctx, kv.KeyUsers)
	if errors.Is(err, kv.ErrNotFound) {
		return []userRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	var recs []userRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.log.Warn("stored user table is malformed, treating as empty", zap.Error(err))
		return []userRecord{}, nil
	}
	return recs, nil
}

func (t *UserTable) save(ctx context.Context, recs []userRecord) error {
	b, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	if err := t.storage.Set(ctx, kv.KeyUsers, string(b)); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// find matches email exactly.
func (t *UserTable) find(ctx context.Context, email string) (userRecord, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs, err := t.load(ctx)
	if err != nil {
		return userRecord{}, false, err
	}
	for _, r := range recs {
		if r.Email == email {
			r.normalize()
			return r, true, nil
		}
	}
	return userRecord{}, false, nil
}

func (t *UserTable) insert(ctx context.Context, rec userRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs, err := t.load(ctx)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if r.Email == rec.Email {
			return ErrEmailTaken
		}
	}
	return t.save(ctx, append(recs, rec))
}

func (t *UserTable) update(ctx context.Context, id string, edit UserUpdate) (User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs, err := t.load(ctx)
	if err != nil {
		return User{}, err
	}
	for i := range recs {
		if recs[i].ID != id {
			continue
		}
		edit.apply(&recs[i].User)
		recs[i].normalize()
		if err := t.save(ctx, recs); err != nil {
			return User{}, err
		}
		return recs[i].User, nil
	}
	return User{}, ErrUserNotFound
}

// Len is the number of registered users.
func (t *UserTable) Len(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	recs, err := t.load(ctx)
	return len(recs), err
}
