// Package auth simulates sign-in for a storefront client: a user table in
// shared storage, a per-client session hydrated from the client's storage
// area, and unsigned bearer tokens with an expiry.
//
// Login and registration sleep for a configurable delay to stand in for a
// network round trip.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/kv"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDelay    = time.Second
	DefaultTokenTTL = 24 * time.Hour
)

type Options struct {
	Hasher   PasswordHasher
	Delay    time.Duration
	TokenTTL time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Hasher == nil {
		o.Hasher = Plaintext{}
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = DefaultTokenTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type Store struct {
	storage kv.Store
	users   *UserTable
	opts    Options
	log     *zap.Logger

	mu      sync.Mutex
	session Session
}

// Open hydrates the client's session from storage. An expired or malformed
// token discards the saved session; a failed read is returned.
func Open(ctx context.Context, storage kv.Store, users *UserTable, opts Options) (*Store, error) {
	opts = opts.withDefaults()
	s := &Store{storage: storage, users: users, opts: opts, log: opts.Logger}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) error {
	token, err := s.storage.Get(ctx, kv.KeyToken)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("load session token: %w", err)
	}
	rawUser, err := s.storage.Get(ctx, kv.KeyUser)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("load session user: %w", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		s.log.Warn("stored session token is malformed, discarding", zap.Error(err))
		s.forget(ctx)
		return nil
	}
	if claims.Expired(s.opts.Now()) {
		s.forget(ctx)
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		s.log.Warn("stored session user is malformed, discarding", zap.Error(err))
		s.forget(ctx)
		return nil
	}
	u.normalize()
	s.session.load(u, token)
	return nil
}

// Session returns the current state. A token that has expired since it was
// loaded ends the session first.
func (s *Store) Session(ctx context.Context) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.IsAuthenticated {
		if c, err := ParseToken(s.session.Token); err != nil || c.Expired(s.opts.Now()) {
			s.session.logout()
			s.forget(ctx)
		}
	}
	return s.session.clone()
}

func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	s.transition(func(ss *Session) { ss.begin() })

	u, token, err := s.login(ctx, email, password)
	return s.finish(ctx, u, token, err)
}

func (s *Store) login(ctx context.Context, email, password string) (User, string, error) {
	if err := sleep(ctx, s.opts.Delay); err != nil {
		return User{}, "", err
	}
	rec, ok, err := s.users.find(ctx, email)
	if err != nil {
		return User{}, "", err
	}
	if !ok || !s.opts.Hasher.Matches(rec.Password, password) {
		return User{}, "", ErrInvalidCredentials
	}
	return rec.User, IssueToken(rec.User, s.opts.Now(), s.opts.TokenTTL), nil
}

func (s *Store) Register(ctx context.Context, data RegisterData) (Session, error) {
	s.transition(func(ss *Session) { ss.begin() })

	u, token, err := s.register(ctx, data)
	return s.finish(ctx, u, token, err)
}

func (s *Store) register(ctx context.Context, data RegisterData) (User, string, error) {
	if err := sleep(ctx, s.opts.Delay); err != nil {
		return User{}, "", err
	}
	hashed, err := s.opts.Hasher.Hash(data.Password)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}
	rec := userRecord{
		User: User{
			ID:          uuid.NewString(),
			Email:       data.Email,
			FirstName:   data.FirstName,
			LastName:    data.LastName,
			Phone:       data.Phone,
			Addresses:   []Address{},
			Preferences: DefaultPreferences(),
		},
		Password: hashed,
	}
	if err := s.users.insert(ctx, rec); err != nil {
		return User{}, "", err
	}
	return rec.User, IssueToken(rec.User, s.opts.Now(), s.opts.TokenTTL), nil
}

// finish applies the success or failure transition. Overlapping calls are
// not coordinated; whichever finishes last decides the session.
func (s *Store) finish(ctx context.Context, u User, token string, err error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.session.fail()
		s.forget(ctx)
		return s.session.clone(), err
	}
	s.session.succeed(u, token)
	if err := s.save(ctx); err != nil {
		s.log.Error("save session failed", zap.Error(err))
	}
	return s.session.clone(), nil
}

func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forget(ctx)
	s.session.logout()
}

// UpdateUser edits the signed-in user's profile in the user table and in the
// saved session.
func (s *Store) UpdateUser(ctx context.Context, edit UserUpdate) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.User == nil {
		return s.session.clone(), ErrNotAuthenticated
	}
	updated, err := s.users.update(ctx, s.session.User.ID, edit)
	if errors.Is(err, ErrUserNotFound) {
		// session outlived its table row; edit the snapshot only
		updated = *s.session.User
		edit.apply(&updated)
		updated.normalize()
	} else if err != nil {
		return s.session.clone(), err
	}
	s.session.replaceUser(updated)
	if err := s.save(ctx); err != nil {
		return s.session.clone(), err
	}
	return s.session.clone(), nil
}

func (s *Store) transition(fn func(*Session)) {
	s.mu.Lock()
	fn(&s.session)
	s.mu.Unlock()
}

// save writes token and user snapshot. Caller holds mu.
func (s *Store) save(ctx context.Context) error {
	if s.session.Token == "" || s.session.User == nil {
		return nil
	}
	b, err := json.Marshal(s.session.User)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, kv.KeyToken, s.session.Token); err != nil {
		return err
	}
	return s.storage.Set(ctx, kv.KeyUser, string(b))
}

func (s *Store) forget(ctx context.Context) {
	for _, k := range []string{kv.KeyToken, kv.KeyUser} {
		if err := s.storage.Delete(ctx, k); err != nil {
			s.log.Warn("clear session key failed", zap.String("key", k), zap.Error(err))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
