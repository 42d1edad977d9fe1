// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session manages per-shopper gateway sessions.

Each browser that talks to the gateway is assigned one [Session], keyed by its
session cookie. The session owns everything that must never be shared between
shoppers:

  - The upstream [backend.Client] with its own cookie jar, so the HTTP-only
    refresh-token cookie stays with its owner.
  - The in-memory access token.
  - The shopping cart and wishlist.
  - The authentication state machine.

# State Machine

A session starts in [StateLoading]. The first [Session.Bootstrap] attempts a
silent upstream refresh: success lands in [StateAuthenticated], failure in
[StateAnonymous]. Bootstrap runs at most once per session regardless of how
many concurrent requests race it; subsequent transitions happen only through
[Session.Login], [Session.Logout] and [Session.CheckUser].

Observers registered with [Session.Subscribe] fire on every state transition,
after the new state is committed.
*/
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/cart"
	"github.com/taibuivan/velora/internal/platform/apperr"
	"github.com/taibuivan/velora/internal/platform/validate"
)

// # State Machine

// State is the authentication phase of a shopper session.
type State int

const (
	// StateLoading means Bootstrap has not completed yet. Callers that need a
	// definite answer must Bootstrap first.
	StateLoading State = iota

	// StateAuthenticated means a valid upstream identity is attached.
	StateAuthenticated

	// StateAnonymous means the shopper is browsing without an identity.
	StateAnonymous
)

// String implements [fmt.Stringer] for log output.
func (state State) String() string {
	switch state {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Observer receives state transitions. Called synchronously after the
// transition commits; keep it fast.
type Observer func(state State, user *backend.User)

// Field identifiers used in validation messages.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldOTP      = "otp"
	FieldToken    = "token"
)

// MinPasswordLength mirrors the upstream account policy so obviously bad
// credentials are rejected before a network round trip.
const MinPasswordLength = 6

// # Definitions & Constructors

// Session is the gateway-side state for one browser session.
type Session struct {
	id     string
	client *backend.Client
	cart   *cart.Store
	logger *slog.Logger

	bootstrapOnce sync.Once

	mu        sync.RWMutex
	state     State
	user      *backend.User
	observers []Observer
}

// NewSession wires a session around its upstream client and cart store.
func NewSession(id string, client *backend.Client, cartStore *cart.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Session{
		id:     id,
		client: client,
		cart:   cartStore,
		logger: logger.With(slog.String("session_id", id)),
		state:  StateLoading,
	}
}

// ID returns the session identifier from the browser cookie.
func (session *Session) ID() string {
	return session.id
}

// Client returns the session's upstream client.
func (session *Session) Client() *backend.Client {
	return session.client
}

// Cart returns the session's cart store.
func (session *Session) Cart() *cart.Store {
	return session.cart
}

// State returns the current authentication phase.
func (session *Session) State() State {
	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.state
}

// User returns the attached profile, or nil when not authenticated.
func (session *Session) User() *backend.User {
	session.mu.RLock()
	defer session.mu.RUnlock()

	if session.user == nil {
		return nil
	}
	copied := *session.user
	return &copied
}

// Subscribe registers an observer for state transitions.
func (session *Session) Subscribe(observer Observer) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.observers = append(session.observers, observer)
}

// transition commits a new state, then notifies a snapshot of the observer
// list outside the lock. Observers get their own copy of the profile, same
// as [Session.User]; a callback must not be able to mutate session state.
func (session *Session) transition(state State, user *backend.User) {
	session.mu.Lock()
	session.state = state
	session.user = user
	observers := make([]Observer, len(session.observers))
	copy(observers, session.observers)
	session.mu.Unlock()

	for _, observer := range observers {
		var snapshot *backend.User
		if user != nil {
			copied := *user
			snapshot = &copied
		}
		observer(state, snapshot)
	}
}

// # Lifecycle Operations

/*
Bootstrap resolves the session's initial authentication state.

Description: Attempts a silent refresh against the upstream. If the browser
carries a valid refresh-token cookie the upstream returns a fresh access token
and profile; otherwise the session settles into anonymous browsing. Runs at
most once per session; concurrent callers block until the first completes.

Parameters:
  - context: context.Context

Returns:
  - State: The settled state (never StateLoading after return)
*/
func (session *Session) Bootstrap(context context.Context) State {
	session.bootstrapOnce.Do(func() {
		user, err := session.client.Refresh(context)
		if err != nil {
			session.logger.Debug("session_bootstrap_anonymous", slog.String("reason", err.Error()))
			session.transition(StateAnonymous, nil)
			return
		}

		// The upstream may answer a refresh with a token but no profile.
		// A session without an identity document cannot be authenticated.
		if user == nil {
			session.logger.Warn("session_bootstrap_no_profile")
			session.transition(StateAnonymous, nil)
			return
		}

		session.logger.Info("session_bootstrap_authenticated", slog.String("user_id", user.ID))
		session.transition(StateAuthenticated, user)
	})

	return session.State()
}

/*
Login authenticates the shopper against the upstream.

Description: Credentials are validated locally first; an empty email, a
malformed email, or a short password fails without any network traffic. On
upstream success the session transitions to authenticated and the profile and
access token are attached.

Parameters:
  - context: context.Context
  - email: Account email
  - password: Account password

Returns:
  - *backend.User: The authenticated profile
  - error: Validation failure or upstream rejection
*/
func (session *Session) Login(context context.Context, email, password string) (*backend.User, error) {

	// 1. Local validation. Bad input never reaches the wire.
	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, password).
		MinLen(FieldPassword, password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Upstream exchange.
	result, err := session.client.Login(context, backend.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	if result.User == nil {
		session.logger.Error("session_login_no_profile")
		session.transition(StateAnonymous, nil)
		return nil, apperr.BadGateway(errors.New("login response carried no user profile"))
	}

	session.transition(StateAuthenticated, result.User)
	session.logger.Info("session_login", slog.String("user_id", result.User.ID))

	return result.User, nil
}

/*
Signup registers a new shopper account.

Description: Validates locally, then creates the account upstream. The
session stays anonymous; the shopper must verify the emailed OTP and then
log in.
*/
func (session *Session) Signup(context context.Context, name, email, password string) (*backend.User, error) {

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MinLen(FieldName, name, 2).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, password).
		MinLen(FieldPassword, password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	return session.client.Signup(context, backend.SignupInput{Name: name, Email: email, Password: password})
}

/*
Logout ends the authenticated session.

Description: The upstream logout is best-effort: even when it fails, the
local state transitions to anonymous and the access token is gone. A shopper
who clicks logout is logged out.

Returns:
  - error: The upstream failure, for logging. Local state is already clean.
*/
func (session *Session) Logout(context context.Context) error {
	err := session.client.Logout(context)

	session.transition(StateAnonymous, nil)
	session.logger.Info("session_logout")

	return err
}

/*
CheckUser re-fetches the shopper profile from the upstream.

Description: Used after operations that change server-side account state,
wallet deductions in particular. A refresh failure on an authenticated session
demotes it to anonymous.

Returns:
  - *backend.User: The fresh profile, nil when anonymous
  - error: The upstream failure when the refresh did not succeed
*/
func (session *Session) CheckUser(context context.Context) (*backend.User, error) {
	user, err := session.client.Refresh(context)
	if err != nil {
		if session.State() == StateAuthenticated {
			session.logger.Warn("session_check_demoted", slog.String("reason", err.Error()))
		}
		session.transition(StateAnonymous, nil)
		return nil, err
	}

	if user == nil {
		session.transition(StateAnonymous, nil)
		return nil, apperr.BadGateway(errors.New("refresh response carried no user profile"))
	}

	session.transition(StateAuthenticated, user)
	return user, nil
}

// TokenExpiresWithin reports whether the access token needs renewal soon.
func (session *Session) TokenExpiresWithin(window time.Duration) bool {
	return session.client.Tokens().ExpiresWithin(window)
}
