// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/velora/internal/platform/request"
	"github.com/taibuivan/velora/internal/platform/respond"
	"github.com/taibuivan/velora/internal/platform/validate"
)

// # HTTP Delivery

// Handler implements the authentication endpoints of the storefront gateway.
//
// # Scope
//
// Everything from account creation through login, recovery, and the session
// probe the storefront polls on page load. The handler talks only to the
// [Registry]; the upstream exchange lives inside [Session].
type Handler struct {
	registry *Registry
}

// NewHandler constructs a new [Handler] over the session registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - GET  /me              : Session state probe (bootstraps on first call).
//   - POST /login           : Authenticates and attaches the identity.
//   - POST /signup          : Creates an account (stays anonymous).
//   - POST /logout          : Ends the authenticated session.
//   - POST /verify-otp      : Confirms a new account.
//   - POST /forgot-password : Starts password recovery.
//   - POST /reset-password  : Completes password recovery.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.me)
	router.Post("/login", handler.login)
	router.Post("/signup", handler.signup)
	router.Post("/logout", handler.logout)
	router.Post("/verify-otp", handler.verifyOTP)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// resolveSession loads the caller's live session from the registry.
func (handler *Handler) resolveSession(request *http.Request) (*Session, error) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		return nil, err
	}
	return handler.registry.Session(request.Context(), sessionID)
}

/*
Me reports the session's authentication state and profile.

GET /api/v1/auth/me

Description: The storefront calls this on page load. The first call per
session triggers the silent refresh bootstrap; later calls return the settled
state without touching the upstream.

Response:
  - 200: SessionState: state ("authenticated" | "anonymous"), user, renewal hint
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state := live.Bootstrap(request.Context())

	respond.OK(writer, map[string]any{
		"state":            state.String(),
		"user":             live.User(),
		"tokenExpiresSoon": state == StateAuthenticated && live.TokenExpiresWithin(time.Minute),
	})
}

/*
Login authenticates a shopper.

POST /api/v1/auth/login

Description: Credentials are validated before any upstream call; a malformed
email or short password fails fast. On success the session holds the identity
and the upstream refresh cookie.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: User: The authenticated profile
  - 400: ErrInvalidJSON: Validation failure
  - 401: ErrUnauthorized: Upstream rejected the credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := live.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"user": user})
}

/*
Signup creates a new shopper account.

POST /api/v1/auth/signup

Description: The account starts unverified; the upstream emails an OTP. The
session stays anonymous until the shopper verifies and logs in.

Request:
  - Body: signupRequest (Name, Email, Password)

Response:
  - 201: User: The created profile
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := live.Signup(request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"user": user})
}

/*
Logout ends the authenticated session.

POST /api/v1/auth/logout

Description: Local state is cleared even when the upstream call fails; the
shopper always ends up anonymous.

Response:
  - 204: No Content: Session ended
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Best-effort upstream; the session is anonymous either way.
	_ = live.Logout(request.Context())

	respond.NoContent(writer)
}

/*
VerifyOTP confirms a new account with its emailed one-time code.

POST /api/v1/auth/verify-otp

Request:
  - Body: verifyOTPRequest (Email, OTP)

Response:
  - 200: Success: Account verified
  - 400: ErrInvalidJSON: Missing fields or wrong code
*/
func (handler *Handler) verifyOTP(writer http.ResponseWriter, request *http.Request) {
	var input verifyOTPRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := live.Client().VerifyOTP(request.Context(), input.Email, input.OTP); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Account verified successfully"})
}

/*
ForgotPassword starts the password recovery flow.

POST /api/v1/auth/forgot-password

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic acknowledgement
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := live.Client().ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "If this email is registered, a reset link has been sent."})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 400: ErrInvalidJSON: Bad token or weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := live.Client().ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Password updated successfully"})
}
