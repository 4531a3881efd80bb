package authbridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtrack/healthtrack/internal/client/api"
	"github.com/healthtrack/healthtrack/internal/client/authbridge"
	"github.com/healthtrack/healthtrack/internal/client/kv"
	"github.com/healthtrack/healthtrack/internal/client/session"
)

// A rejected bearer token clears the stored session through the bridge.
func TestLoginThenForbiddenClearsSession(t *testing.T) {
	var sawBearer atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token": "jwt-1",
				"user":  map[string]any{"id": "u1", "name": "Alice", "email": "alice@example.com"},
			})
		case "/medications":
			sawBearer.Store(r.Header.Get("Authorization") == "Bearer jwt-1")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "account no longer exists"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	db, err := kv.Open(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer db.Close()
	store := session.NewStore(kv.NewStore(db), zerolog.Nop())

	bridge := authbridge.New()
	navigated := make(chan struct{})
	bridge.SetHandler(authbridge.LogoutHandler(store, 10*time.Millisecond, func() { close(navigated) }, nil))

	client := api.New(srv.URL, store, api.WithUnauthorizedHandler(bridge.Signal))

	resp, err := client.Login(ctx, api.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, resp.Token, *resp.User))
	require.True(t, store.IsAuthenticated(ctx))

	_, err = client.Medications(ctx)
	require.True(t, api.IsAuthError(err))
	assert.True(t, sawBearer.Load())

	select {
	case <-navigated:
	case <-time.After(2 * time.Second):
		t.Fatal("logout handler did not run")
	}
	bridge.Wait()

	assert.False(t, store.IsAuthenticated(ctx))
	u, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}
