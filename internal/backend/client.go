// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backend implements the authenticated client for the upstream commerce
REST API.

Every outbound call from the gateway funnels through [Client.Do], which owns
the cross-cutting transport concerns:

  - Auth: Attaches the in-memory bearer token when present.
  - Cookies: Always sends the per-session cookie jar, so the HTTP-only
    refresh-token cookie travels with every call.
  - Renewal: On a 401 it performs exactly ONE silent token refresh and retries
    the original request exactly ONCE. No retry storms, no recursion into the
    refresh endpoint itself.
  - Throttling: A shared token bucket protects the upstream from bursty
    storefront traffic.

HTTP error statuses are returned as ordinary responses; callers inspect
status themselves (or use the typed service methods, which map upstream
rejections to [apperr.AppError]). Only transport-level failures return errors.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/taibuivan/velora/internal/platform/apperr"
	"github.com/taibuivan/velora/internal/platform/constants"
)

// # Construction

// Config holds the dependencies for an upstream [Client].
type Config struct {
	// BaseURL is the commerce backend root, e.g. "https://api.velora.shop/api".
	BaseURL string

	// HTTPClient is the transport. When nil, a client with a fresh cookie jar
	// is created — each storefront session MUST get its own jar so refresh
	// cookies never leak between shoppers.
	HTTPClient *http.Client

	// Tokens is the in-memory access token store. When nil, a new one is created.
	Tokens *TokenStore

	// Logger for transport events. When nil, logging is disabled.
	Logger *slog.Logger

	// Limiter throttles outbound calls. Shared across sessions; may be nil.
	Limiter *rate.Limiter
}

// Client performs authenticated calls against the commerce backend.
//
// One Client belongs to exactly one storefront session: it owns that session's
// cookie jar and access token. Construction is cheap; the heavyweight pieces
// (rate limiter, base URL) are shared through [Config].
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenStore
	logger     *slog.Logger
	limiter    *rate.Limiter
}

// New constructs an upstream [Client] from the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend: BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// cookiejar.New only fails on invalid options; nil options cannot fail.
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("backend_cookie_jar_failed: %w", err)
		}
		httpClient = &http.Client{
			Jar:     jar,
			Timeout: constants.UpstreamRequestTimeout,
		}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewTokenStore()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
		limiter:    cfg.Limiter,
	}, nil
}

// Tokens exposes the session's access token store.
func (client *Client) Tokens() *TokenStore {
	return client.tokens
}

// # Request Descriptor

// RequestOptions describes an upstream call beyond method and path.
type RequestOptions struct {
	// Query is appended to the endpoint URL.
	Query url.Values

	// Header holds extra request headers (copied verbatim).
	Header http.Header

	// JSON, when non-nil, is marshaled as the request body with
	// Content-Type: application/json.
	JSON any

	// Raw, when non-nil, is sent as-is. Used for multipart and binary
	// payloads. Content-Type is taken from ContentType, or left unset so the
	// caller's own header (with its multipart boundary) wins.
	Raw []byte

	// ContentType labels a Raw body. Ignored for JSON bodies.
	ContentType string
}

// # Core Transport

/*
Do performs an authenticated request against the commerce backend.

Description: Attaches the bearer token and session cookies, dispatches the
call, and transparently renews an expired upstream session: on a 401 from any
endpoint other than the refresh endpoint itself, it refreshes once and retries
once. If the refresh fails, the ORIGINAL 401 response is returned untouched —
the caller decides whether to surface a login redirect.

Parameters:
  - context: context.Context (deadline/cancellation for the whole sequence)
  - method: string (HTTP verb)
  - path: string (endpoint path relative to the base URL, e.g. "/product")
  - options: *RequestOptions (may be nil)

Returns:
  - *http.Response: Upstream response; error statuses are NOT turned into errors
  - error: Transport-level failures only
*/
func (client *Client) Do(context context.Context, method, path string, options *RequestOptions) (*http.Response, error) {
	// The retry guard is an explicit boolean threaded through the call chain,
	// never a header sentinel a caller could forge or strip.
	return client.execute(context, method, path, options, false)
}

// execute is [Do] plus the alreadyRetried guard.
func (client *Client) execute(context context.Context, method, path string, options *RequestOptions, alreadyRetried bool) (*http.Response, error) {

	// Respect the shared outbound budget before touching the network.
	if client.limiter != nil {
		if err := client.limiter.Wait(context); err != nil {
			return nil, fmt.Errorf("backend_rate_limit_wait_failed: %w", err)
		}
	}

	// Build the request. Bodies are buffered ([]byte), never streamed, so the
	// single retry can re-send them byte-for-byte.
	request, err := client.buildRequest(context, method, path, options)
	if err != nil {
		return nil, err
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("backend_request_failed: %w", err)
	}

	// 401 interceptor. Skip when this call IS the refresh endpoint, or when
	// the single retry has already been spent.
	if response.StatusCode == http.StatusUnauthorized && !alreadyRetried && !strings.HasPrefix(path, constants.RefreshTokenPath) {

		client.logger.Debug("upstream_unauthorized_refreshing",
			slog.String("method", method),
			slog.String("path", path),
		)

		if _, refreshErr := client.Refresh(context); refreshErr == nil {
			// Refresh minted a new token: spend the one retry.
			drainAndClose(response)
			return client.execute(context, method, path, options, true)
		}

		// Refresh failed: hand back the original 401 untouched. The session
		// layer treats it as "anonymous" and the frontend redirects to login.
		client.logger.Debug("upstream_refresh_failed",
			slog.String("method", method),
			slog.String("path", path),
		)
	}

	return response, nil
}

// buildRequest assembles the outbound [*http.Request] with headers and body.
func (client *Client) buildRequest(context context.Context, method, path string, options *RequestOptions) (*http.Request, error) {

	endpoint := client.baseURL + path
	if options != nil && len(options.Query) > 0 {
		separator := "?"
		if strings.Contains(endpoint, "?") {
			separator = "&"
		}
		endpoint += separator + options.Query.Encode()
	}

	var body io.Reader
	contentType := ""

	if options != nil {
		switch {
		case options.JSON != nil:
			encoded, err := json.Marshal(options.JSON)
			if err != nil {
				return nil, fmt.Errorf("backend_encode_body_failed: %w", err)
			}
			body = bytes.NewReader(encoded)
			contentType = "application/json"
		case options.Raw != nil:
			body = bytes.NewReader(options.Raw)
			contentType = options.ContentType
		}
	}

	request, err := http.NewRequestWithContext(context, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("backend_build_request_failed: %w", err)
	}

	// Caller-provided headers first, so multipart boundaries survive.
	if options != nil {
		for name, values := range options.Header {
			for _, value := range values {
				request.Header.Add(name, value)
			}
		}
	}

	// Content type only when we know it and the caller didn't set one.
	if contentType != "" && request.Header.Get(constants.HeaderContentType) == "" {
		request.Header.Set(constants.HeaderContentType, contentType)
	}

	// Bearer token when the session is authenticated.
	if token := client.tokens.Get(); token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	return request, nil
}

// # Session Renewal

// sessionEnvelope is the upstream payload for login and refresh responses.
type sessionEnvelope struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

/*
Refresh mints a new access token from the refresh-token cookie.

Description: Calls GET /auth/refresh-token with session cookies and no body.
On success the new token is stored in memory and the refreshed user profile is
returned. On ANY failure the in-memory token is cleared: a session that
cannot refresh is anonymous.

Parameters:
  - context: context.Context

Returns:
  - *User: The refreshed user profile (may be nil if upstream omits it)
  - error: apperr.Unauthorized when the refresh is rejected, transport errors otherwise
*/
func (client *Client) Refresh(context context.Context) (*User, error) {

	request, err := http.NewRequestWithContext(context, http.MethodGet, client.baseURL+constants.RefreshTokenPath, nil)
	if err != nil {
		return nil, fmt.Errorf("backend_build_refresh_failed: %w", err)
	}

	// Deliberately no Authorization header: the refresh-token cookie is the
	// only credential this endpoint accepts.
	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("backend_refresh_request_failed: %w", err)
	}
	defer drainAndClose(response)

	if response.StatusCode != http.StatusOK {
		client.tokens.Clear()
		return nil, apperr.Unauthorized("Session expired")
	}

	var envelope sessionEnvelope
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		client.tokens.Clear()
		return nil, fmt.Errorf("backend_refresh_decode_failed: %w", err)
	}

	if envelope.AccessToken == "" {
		client.tokens.Clear()
		return nil, apperr.Unauthorized("Refresh response carried no access token")
	}

	client.tokens.Set(envelope.AccessToken)
	client.logger.Debug("upstream_session_refreshed")

	return envelope.User, nil
}

// # Typed Call Helpers

/*
CallJSON performs a request and decodes a JSON success payload.

Description: The workhorse behind every typed service method. Transport
failures become BadGateway, upstream 4xx/5xx become [apperr.Upstream] carrying
the backend's own message (with a generic fallback), and success bodies are
decoded into target when non-nil.
*/
func (client *Client) CallJSON(context context.Context, method, path string, options *RequestOptions, target any) error {

	response, err := client.Do(context, method, path, options)
	if err != nil {
		return apperr.BadGateway(err)
	}
	defer drainAndClose(response)

	if response.StatusCode >= 400 {
		return upstreamError(response)
	}

	if target == nil {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("backend_decode_response_failed: %w", err)
	}

	return nil
}

// upstreamError converts an upstream error response into an [apperr.AppError],
// preserving the backend's message when one is present.
func upstreamError(response *http.Response) error {

	// The backend is inconsistent about its error field; accept both.
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(response.Body).Decode(&payload)

	message := payload.Message
	if message == "" {
		message = payload.Error
	}

	return apperr.Upstream(response.StatusCode, message)
}

// drainAndClose exhausts and closes a response body so the underlying
// connection can be reused.
func drainAndClose(response *http.Response) {
	if response == nil || response.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, response.Body)
	_ = response.Body.Close()
}
