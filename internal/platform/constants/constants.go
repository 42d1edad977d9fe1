// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire gateway.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Sessions: Storefront session cookie naming and lifetimes.
  - Upstream: Commerce backend paths and call budgets.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "velora-gateway"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// UpstreamRateLimitRPS caps outbound calls to the commerce backend across
	// all storefront sessions combined.
	UpstreamRateLimitRPS = 200.0

	// UpstreamRateLimitBurst is the outbound burst budget.
	UpstreamRateLimitBurst = 300
)

// # Storefront Sessions

const (
	// SessionCookieName is the cookie that identifies a browser's storefront session.
	SessionCookieName = "velora_session"

	// SessionCookieMaxAge is the lifetime of the storefront session cookie.
	SessionCookieMaxAge = 30 * 24 * time.Hour

	// SessionIdleTTL is how long a session may sit idle before the registry evicts it.
	SessionIdleTTL = 45 * time.Minute

	// SessionSweepInterval is how often the registry janitor scans for idle sessions.
	SessionSweepInterval = 5 * time.Minute
)

// # Upstream Backend

const (
	// RefreshTokenPath is the upstream endpoint that mints a new access token
	// from the refresh-token cookie. The 401 interceptor must never recurse
	// into it.
	RefreshTokenPath = "/auth/refresh-token"

	// TaxRatePercent is the checkout tax rate applied to the cart subtotal.
	TaxRatePercent = 8

	// UpstreamRequestTimeout bounds each individual upstream HTTP request when
	// the caller's context carries no tighter deadline.
	UpstreamRequestTimeout = 30 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// # JSON Field Identifiers

const (
	FieldError = "error"
	FieldCode  = "code"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixCart     = "shop:cart:"
	RedisPrefixWishlist = "shop:wishlist:"
)
