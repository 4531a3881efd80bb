package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtrack/healthtrack/internal/client/api"
	"github.com/healthtrack/healthtrack/internal/client/kv"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := kv.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(kv.NewStore(db), zerolog.Nop())
}

func TestStore_ImplementsTokenSource(t *testing.T) {
	var _ api.TokenSource = (*Store)(nil)
}

func TestIsAuthenticated(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	assert.False(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.SetToken(ctx, "not-even-a-jwt"))
	assert.True(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.SetToken(ctx, ""))
	assert.False(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.SetToken(ctx, "t"))
	require.NoError(t, s.ClearToken(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestToken(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetToken(ctx, "jwt-1"))
	require.NoError(t, s.SetToken(ctx, "jwt-2"))

	token, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jwt-2", token)
}

func TestUser_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	age := 42
	require.NoError(t, s.SetUser(ctx, api.User{ID: "u1", Name: "Alice", Email: "a@example.com", Age: &age}))

	u, err = s.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, 42, *u.Age)

	require.NoError(t, s.ClearUser(ctx))
	u, err = s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUser_CorruptValueFailsSoft(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.backend.Put(ctx, map[string][]byte{keyUser: []byte("{not json")}))

	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestLogout_ClearsBoth(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "jwt", api.User{ID: "u1"}))
	assert.True(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated(ctx))
	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

type recordingBackend struct {
	puts    []map[string][]byte
	deletes [][]string
}

func (b *recordingBackend) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (b *recordingBackend) Put(_ context.Context, entries map[string][]byte) error {
	b.puts = append(b.puts, entries)
	return nil
}

func (b *recordingBackend) Delete(_ context.Context, keys ...string) error {
	b.deletes = append(b.deletes, keys)
	return nil
}

func TestSaveAndLogout_AreSingleBackendCalls(t *testing.T) {
	b := &recordingBackend{}
	s := NewStore(b, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "jwt", api.User{ID: "u1"}))
	require.Len(t, b.puts, 1)
	assert.Equal(t, []byte("jwt"), b.puts[0][keyToken])
	assert.Contains(t, string(b.puts[0][keyUser]), `"id":"u1"`)

	require.NoError(t, s.Logout(ctx))
	require.Len(t, b.deletes, 1)
	assert.ElementsMatch(t, []string{keyToken, keyUser}, b.deletes[0])
}
