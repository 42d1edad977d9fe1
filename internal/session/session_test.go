// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/cart"
	"github.com/taibuivan/velora/internal/session"
)

// upstreamStub is a minimal commerce backend for session tests. It counts
// calls per path so tests can assert on network traffic.
type upstreamStub struct {
	refreshOK bool
	loginOK   bool

	// omitUser answers successful refresh/login calls with a token but no
	// user document, which the upstream is allowed to do.
	omitUser bool

	calls sync.Map // path -> *atomic.Int64
}

func (stub *upstreamStub) count(path string) *atomic.Int64 {
	counter, _ := stub.calls.LoadOrStore(path, &atomic.Int64{})
	return counter.(*atomic.Int64)
}

func (stub *upstreamStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		stub.count("/auth/refresh-token").Add(1)
		if !stub.refreshOK {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		if stub.omitUser {
			json.NewEncoder(writer).Encode(map[string]any{"accessToken": "refreshed-token"})
			return
		}
		json.NewEncoder(writer).Encode(map[string]any{
			"accessToken": "refreshed-token",
			"user":        map[string]any{"_id": "u1", "name": "Mina", "email": "mina@velora.shop", "role": "customer"},
		})
	})

	mux.HandleFunc("/auth/login", func(writer http.ResponseWriter, request *http.Request) {
		stub.count("/auth/login").Add(1)
		if !stub.loginOK {
			writer.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(writer).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		if stub.omitUser {
			json.NewEncoder(writer).Encode(map[string]any{"accessToken": "login-token"})
			return
		}
		json.NewEncoder(writer).Encode(map[string]any{
			"accessToken": "login-token",
			"user":        map[string]any{"_id": "u1", "name": "Mina", "email": "mina@velora.shop", "role": "customer"},
		})
	})

	mux.HandleFunc("/auth/logout", func(writer http.ResponseWriter, request *http.Request) {
		stub.count("/auth/logout").Add(1)
		writer.WriteHeader(http.StatusOK)
		json.NewEncoder(writer).Encode(map[string]string{"message": "ok"})
	})

	return mux
}

// newTestSession wires a session against the stub upstream with a throwaway
// file-backed cart.
func newTestSession(t *testing.T, stub *upstreamStub) *session.Session {
	t.Helper()

	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	client, err := backend.New(backend.Config{BaseURL: server.URL})
	require.NoError(t, err)

	cartStore := cart.NewStore(cart.NewFileStorage(filepath.Join(t.TempDir(), "cart.json")), nil)
	require.NoError(t, cartStore.Load(context.Background()))

	return session.NewSession("sess-1", client, cartStore, nil)
}

/*
TestSession_Bootstrap_RunsOnce: many concurrent Bootstrap calls must result in
exactly one upstream refresh.
*/
func TestSession_Bootstrap_RunsOnce(t *testing.T) {
	stub := &upstreamStub{refreshOK: true}
	live := newTestSession(t, stub)

	assert.Equal(t, session.StateLoading, live.State())

	var group sync.WaitGroup
	for i := 0; i < 16; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			live.Bootstrap(context.Background())
		}()
	}
	group.Wait()

	assert.Equal(t, int64(1), stub.count("/auth/refresh-token").Load())
	assert.Equal(t, session.StateAuthenticated, live.State())

	user := live.User()
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
}

/*
TestSession_Bootstrap_AnonymousOnRefreshFailure: a browser without a refresh
cookie settles into anonymous browsing.
*/
func TestSession_Bootstrap_AnonymousOnRefreshFailure(t *testing.T) {
	stub := &upstreamStub{refreshOK: false}
	live := newTestSession(t, stub)

	state := live.Bootstrap(context.Background())

	assert.Equal(t, session.StateAnonymous, state)
	assert.Nil(t, live.User())
}

/*
TestSession_Bootstrap_AnonymousWhenProfileMissing: a refresh that succeeds
with a token but no user document settles the session as anonymous. The
session must stay usable afterwards; it never reports loading again.
*/
func TestSession_Bootstrap_AnonymousWhenProfileMissing(t *testing.T) {
	stub := &upstreamStub{refreshOK: true, omitUser: true}
	live := newTestSession(t, stub)

	state := live.Bootstrap(context.Background())

	assert.Equal(t, session.StateAnonymous, state)
	assert.Nil(t, live.User())

	// The bootstrap is settled: no second refresh, no loading state.
	assert.Equal(t, session.StateAnonymous, live.Bootstrap(context.Background()))
	assert.Equal(t, int64(1), stub.count("/auth/refresh-token").Load())
}

/*
TestSession_Login_ValidationNeverHitsNetwork: locally invalid credentials
fail with zero upstream calls.
*/
func TestSession_Login_ValidationNeverHitsNetwork(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty_email", "", "password123"},
		{"malformed_email", "not-an-email", "password123"},
		{"empty_password", "mina@velora.shop", ""},
		{"short_password", "mina@velora.shop", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &upstreamStub{loginOK: true}
			live := newTestSession(t, stub)

			_, err := live.Login(context.Background(), tt.email, tt.password)

			require.Error(t, err)
			assert.Equal(t, int64(0), stub.count("/auth/login").Load())
		})
	}
}

/*
TestSession_Login_Success transitions the session to authenticated and stores
the access token.
*/
func TestSession_Login_Success(t *testing.T) {
	stub := &upstreamStub{loginOK: true}
	live := newTestSession(t, stub)

	user, err := live.Login(context.Background(), "mina@velora.shop", "password123")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, session.StateAuthenticated, live.State())
	assert.Equal(t, "login-token", live.Client().Tokens().Get())
}

/*
TestSession_Login_UpstreamRejection keeps the session anonymous.
*/
func TestSession_Login_UpstreamRejection(t *testing.T) {
	stub := &upstreamStub{loginOK: false}
	live := newTestSession(t, stub)
	live.Bootstrap(context.Background())

	_, err := live.Login(context.Background(), "mina@velora.shop", "wrongpassword")

	require.Error(t, err)
	assert.Equal(t, session.StateAnonymous, live.State())
	assert.Empty(t, live.Client().Tokens().Get())
}

/*
TestSession_Login_RejectsMissingProfile: an accepted login whose response
carries no user document fails and leaves the session anonymous.
*/
func TestSession_Login_RejectsMissingProfile(t *testing.T) {
	stub := &upstreamStub{loginOK: true, omitUser: true}
	live := newTestSession(t, stub)

	user, err := live.Login(context.Background(), "mina@velora.shop", "password123")

	require.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, session.StateAnonymous, live.State())
}

/*
TestSession_Logout_AlwaysClearsLocalState: even a failing upstream logout
leaves the session anonymous with no token.
*/
func TestSession_Logout_AlwaysClearsLocalState(t *testing.T) {
	stub := &upstreamStub{loginOK: true}
	live := newTestSession(t, stub)

	_, err := live.Login(context.Background(), "mina@velora.shop", "password123")
	require.NoError(t, err)

	_ = live.Logout(context.Background())

	assert.Equal(t, session.StateAnonymous, live.State())
	assert.Nil(t, live.User())
	assert.Empty(t, live.Client().Tokens().Get())
}

/*
TestSession_CheckUser_DemotesOnFailure: a failed profile refresh drops an
authenticated session to anonymous.
*/
func TestSession_CheckUser_DemotesOnFailure(t *testing.T) {
	stub := &upstreamStub{refreshOK: true, loginOK: true}
	live := newTestSession(t, stub)

	_, err := live.Login(context.Background(), "mina@velora.shop", "password123")
	require.NoError(t, err)

	// Upstream session dies; the next check must demote.
	stub.refreshOK = false

	_, err = live.CheckUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, session.StateAnonymous, live.State())
}

/*
TestSession_Observers fire on every transition with the committed state.
*/
func TestSession_Observers(t *testing.T) {
	stub := &upstreamStub{loginOK: true}
	live := newTestSession(t, stub)

	var mu sync.Mutex
	var seen []session.State
	live.Subscribe(func(state session.State, user *backend.User) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, state)
	})

	_, err := live.Login(context.Background(), "mina@velora.shop", "password123")
	require.NoError(t, err)
	_ = live.Logout(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []session.State{session.StateAuthenticated, session.StateAnonymous}, seen)
}

/*
TestSession_Observers_GetOwnCopy: an observer that scribbles on the profile
it receives must not touch the session's own copy.
*/
func TestSession_Observers_GetOwnCopy(t *testing.T) {
	stub := &upstreamStub{loginOK: true}
	live := newTestSession(t, stub)

	live.Subscribe(func(state session.State, user *backend.User) {
		if user != nil {
			user.Name = "scribbled"
			user.WalletBalance = -1
		}
	})

	_, err := live.Login(context.Background(), "mina@velora.shop", "password123")
	require.NoError(t, err)

	user := live.User()
	require.NotNil(t, user)
	assert.Equal(t, "Mina", user.Name)
	assert.Equal(t, 0.0, user.WalletBalance)
}
