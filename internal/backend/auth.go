// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
)

// # Upstream Identity Types

// User is the authenticated shopper profile as the commerce backend models it.
//
// The profile is replaced wholesale on every login/refresh; the gateway never
// mutates individual fields.
type User struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"` // "customer" | "admin"
	WalletBalance float64 `json:"walletBalance"`
	IsVerified    bool    `json:"isVerified"`
}

// IsAdmin reports whether the user may reach the admin data plane.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// # Credentials Payloads

// LoginInput carries the shopper's credentials to POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupInput carries a new account registration to POST /auth/signup.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is a successful login/refresh outcome: the profile plus the
// freshly minted access token (already stored in the [TokenStore]).
type AuthResult struct {
	User        *User
	AccessToken string
}

// # Authentication Operations

/*
Login exchanges credentials for an upstream session.

Description: POST /auth/login. On success the backend sets the HTTP-only
refresh-token cookie on this session's jar and returns an access token, which
is stored in memory immediately.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *AuthResult: Profile and access token
  - error: apperr.Upstream (invalid credentials et al.) or transport failures
*/
func (client *Client) Login(context context.Context, input LoginInput) (*AuthResult, error) {

	var envelope sessionEnvelope
	err := client.CallJSON(context, http.MethodPost, "/auth/login", &RequestOptions{JSON: input}, &envelope)
	if err != nil {
		return nil, err
	}

	// Store the token before anything else can race a request past us.
	if envelope.AccessToken != "" {
		client.tokens.Set(envelope.AccessToken)
	}

	return &AuthResult{User: envelope.User, AccessToken: envelope.AccessToken}, nil
}

/*
Signup registers a new shopper account.

Description: POST /auth/signup. The account starts unverified; the backend
sends the OTP out-of-band.
*/
func (client *Client) Signup(context context.Context, input SignupInput) (*User, error) {

	var envelope sessionEnvelope
	if err := client.CallJSON(context, http.MethodPost, "/auth/signup", &RequestOptions{JSON: input}, &envelope); err != nil {
		return nil, err
	}

	return envelope.User, nil
}

/*
Logout tears down the upstream session.

Description: POST /auth/logout clears the server-side session and expires the
refresh-token cookie. The in-memory token is cleared regardless of the
upstream outcome; a logout must never leave a usable credential behind.
*/
func (client *Client) Logout(context context.Context) error {

	err := client.CallJSON(context, http.MethodPost, "/auth/logout", nil, nil)

	client.tokens.Clear()

	return err
}

/*
VerifyOTP confirms a new account with the one-time code sent to its email.

POST /auth/verify-otp
*/
func (client *Client) VerifyOTP(context context.Context, email, otp string) error {

	payload := map[string]string{"email": email, "otp": otp}
	return client.CallJSON(context, http.MethodPost, "/auth/verify-otp", &RequestOptions{JSON: payload}, nil)
}

/*
ForgotPassword starts the password recovery flow for the given email.

POST /auth/forgot-password
*/
func (client *Client) ForgotPassword(context context.Context, email string) error {

	payload := map[string]string{"email": email}
	return client.CallJSON(context, http.MethodPost, "/auth/forgot-password", &RequestOptions{JSON: payload}, nil)
}

/*
ResetPassword completes the recovery flow with the emailed token.

POST /auth/reset-password
*/
func (client *Client) ResetPassword(context context.Context, token, newPassword string) error {

	payload := map[string]string{"token": token, "password": newPassword}
	return client.CallJSON(context, http.MethodPost, "/auth/reset-password", &RequestOptions{JSON: payload}, nil)
}
