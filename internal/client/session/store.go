// Package session persists the client's auth token and user profile.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/client/api"
)

const (
	keyToken = "authToken"
	keyUser  = "authUser"
)

// Backend is the durable key/value storage a session lives in; *kv.Store
// implements it. Put and Delete must be atomic across their keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Store satisfies api.TokenSource.
type Store struct {
	backend Backend
	log     zerolog.Logger
}

func NewStore(backend Backend, log zerolog.Logger) *Store {
	return &Store{backend: backend, log: log}
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.backend.Put(ctx, map[string][]byte{keyToken: []byte(token)})
}

// Token returns ok=false when no token is stored.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.backend.Get(ctx, keyToken)
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), true, nil
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.backend.Delete(ctx, keyToken)
}

func (s *Store) SetUser(ctx context.Context, user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.backend.Put(ctx, map[string][]byte{keyUser: raw})
}

// User returns nil when no profile is stored or the stored one cannot be
// decoded; only storage failures are errors.
func (s *Store) User(ctx context.Context) (*api.User, error) {
	raw, ok, err := s.backend.Get(ctx, keyUser)
	if err != nil || !ok {
		return nil, err
	}

	var user api.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable stored user")
		return nil, nil
	}
	return &user, nil
}

func (s *Store) ClearUser(ctx context.Context) error {
	return s.backend.Delete(ctx, keyUser)
}

// IsAuthenticated reports whether a non-empty token is stored. The token is
// not validated.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, ok, err := s.Token(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("reading token failed")
		return false
	}
	return ok && token != ""
}

// Save stores both halves of a login response atomically.
func (s *Store) Save(ctx context.Context, token string, user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.backend.Put(ctx, map[string][]byte{keyToken: []byte(token), keyUser: raw})
}

// Logout clears the token and the user together. Calling it on an empty
// store is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	return s.backend.Delete(ctx, keyToken, keyUser)
}
