// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds the short-lived upstream access token for one storefront
// session, strictly in memory.
//
// # Lifecycle
//
// The token is set after a successful login or refresh, cleared on logout or
// failed refresh, and is NEVER written to any persistent storage. After a
// gateway restart every session re-derives its token via the refresh-token
// cookie.
//
// # Concurrency
//
// Safe for concurrent use; a session's handlers and its 401 interceptor may
// race on it.
type TokenStore struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewTokenStore returns an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

/*
Set stores a new access token.

Description: The token's `exp` claim is decoded WITHOUT signature verification
(the gateway holds no signing keys; the upstream backend is the only verifier)
purely so the session layer can observe expiry. Tokens without a parseable
expiry are stored with an unknown deadline.

Parameters:
  - token: string (raw JWT as issued by the upstream backend)
*/
func (store *TokenStore) Set(token string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.token = token
	store.expiresAt = time.Time{}

	// Best-effort expiry introspection. A malformed token still gets stored:
	// the upstream backend is the authority on validity, not this store.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if expiry, expErr := claims.GetExpirationTime(); expErr == nil && expiry != nil {
			store.expiresAt = expiry.Time
		}
	}
}

// Get returns the current access token, or "" when the session is anonymous.
func (store *TokenStore) Get() string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.token
}

// Clear wipes the access token. Called on logout and on failed refresh.
func (store *TokenStore) Clear() {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.token = ""
	store.expiresAt = time.Time{}
}

// ExpiresAt returns the token's expiry deadline, or the zero time when no
// token is held or the expiry could not be decoded.
func (store *TokenStore) ExpiresAt() time.Time {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.expiresAt
}

// ExpiresWithin reports whether the held token expires inside the given
// window. It returns false when the expiry is unknown; the 401 interceptor
// remains the safety net in that case.
func (store *TokenStore) ExpiresWithin(window time.Duration) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.token == "" || store.expiresAt.IsZero() {
		return false
	}
	return time.Until(store.expiresAt) < window
}
