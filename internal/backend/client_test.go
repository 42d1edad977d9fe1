// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/platform/apperr"
)

// newTestClient builds a client against the given test server.
func newTestClient(t *testing.T, server *httptest.Server) *backend.Client {
	t.Helper()

	client, err := backend.New(backend.Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

// signedTestToken mints a JWT with the given expiry. The signature is
// irrelevant; the token store never verifies it.
func signedTestToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

/*
TestClient_AttachesBearerToken verifies the Authorization header is present
exactly when a token is held.
*/
func TestClient_AttachesBearerToken(t *testing.T) {
	var seenAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seenAuth.Store(request.Header.Get("Authorization"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	// 1. Anonymous: no header
	response, err := client.Do(context.Background(), http.MethodGet, "/product", nil)
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, "", seenAuth.Load())

	// 2. Authenticated: bearer header
	client.Tokens().Set("tok-123")
	response, err = client.Do(context.Background(), http.MethodGet, "/product", nil)
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, "Bearer tok-123", seenAuth.Load())
}

/*
TestClient_ContentType verifies JSON bodies are labeled application/json while
raw (multipart-style) bodies keep the caller's own content type untouched.
*/
func TestClient_ContentType(t *testing.T) {
	var seenContentType atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seenContentType.Store(request.Header.Get("Content-Type"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	// JSON payload
	response, err := client.Do(context.Background(), http.MethodPost, "/product/new", &backend.RequestOptions{
		JSON: map[string]string{"name": "Plush Bear"},
	})
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, "application/json", seenContentType.Load())

	// Multipart payload: caller-supplied boundary must win
	header := http.Header{}
	header.Set("Content-Type", "multipart/form-data; boundary=deadbeef")
	response, err = client.Do(context.Background(), http.MethodPost, "/product/new", &backend.RequestOptions{
		Raw:    []byte("--deadbeef--"),
		Header: header,
	})
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, "multipart/form-data; boundary=deadbeef", seenContentType.Load())
}

/*
TestClient_RefreshAndRetry_Success covers the happy renewal path: a 401 from a
protected endpoint triggers exactly one refresh and exactly one retry, which
succeeds with the new token.
*/
func TestClient_RefreshAndRetry_Success(t *testing.T) {
	var refreshCalls, productCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		// The refresh call must not carry the (stale) bearer token.
		assert.Empty(t, request.Header.Get("Authorization"))
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"accessToken": "fresh-token",
			"user":        map[string]any{"_id": "u1", "name": "Tai"},
		})
	})
	mux.HandleFunc("/order/myorders", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&productCalls, 1)
		if request.Header.Get("Authorization") != "Bearer fresh-token" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(writer).Encode(map[string]any{"orders": []any{}})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	client.Tokens().Set("stale-token")

	response, err := client.Do(context.Background(), http.MethodGet, "/order/myorders", nil)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "exactly one refresh")
	assert.Equal(t, int32(2), atomic.LoadInt32(&productCalls), "original call plus one retry")
	assert.Equal(t, "fresh-token", client.Tokens().Get())
}

/*
TestClient_RefreshFails_Returns401Untouched covers the failed renewal path:
the original 401 response is handed back unchanged and the token is cleared.
*/
func TestClient_RefreshFails_Returns401Untouched(t *testing.T) {
	var refreshCalls, endpointCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writer.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/user", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&endpointCalls, 1)
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = writer.Write([]byte(`{"message":"jwt expired"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	client.Tokens().Set("stale-token")

	response, err := client.Do(context.Background(), http.MethodGet, "/user", nil)
	require.NoError(t, err)
	defer response.Body.Close()

	// Original 401 passes through, body intact.
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	body, _ := io.ReadAll(response.Body)
	assert.JSONEq(t, `{"message":"jwt expired"}`, string(body))

	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&endpointCalls), "no retry without a successful refresh")
	assert.Empty(t, client.Tokens().Get(), "failed refresh clears the token")
}

/*
TestClient_NoSecondRefresh proves the interceptor cannot loop: when the retry
itself comes back 401, no further refresh is attempted.
*/
func TestClient_NoSecondRefresh(t *testing.T) {
	var refreshCalls, endpointCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		_ = json.NewEncoder(writer).Encode(map[string]any{"accessToken": "fresh-token"})
	})
	mux.HandleFunc("/order/all", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&endpointCalls, 1)
		// Stubbornly unauthorized, even with the fresh token.
		writer.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)

	response, err := client.Do(context.Background(), http.MethodGet, "/order/all", nil)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "refresh budget is one")
	assert.Equal(t, int32(2), atomic.LoadInt32(&endpointCalls), "retry budget is one")
}

/*
TestClient_RefreshEndpointNeverIntercepted ensures a 401 from the refresh
endpoint itself does not recurse into another refresh.
*/
func TestClient_RefreshEndpointNeverIntercepted(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writer.WriteHeader(http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)

	response, err := client.Do(context.Background(), http.MethodGet, "/auth/refresh-token", nil)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "direct call only, no interception")
}

/*
TestClient_RetryResendsBody verifies the buffered body is re-sent intact on
the post-refresh retry.
*/
func TestClient_RetryResendsBody(t *testing.T) {
	var bodies []string

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]any{"accessToken": "fresh-token"})
	})
	mux.HandleFunc("/payment", func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		bodies = append(bodies, string(body))
		if request.Header.Get("Authorization") != "Bearer fresh-token" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		writer.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)

	payload := map[string]string{"paymentMethod": "COD"}
	response, err := client.Do(context.Background(), http.MethodPost, "/payment", &backend.RequestOptions{JSON: payload})
	require.NoError(t, err)
	defer response.Body.Close()

	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "retry must re-send the identical body")
	assert.JSONEq(t, `{"paymentMethod":"COD"}`, bodies[1])
}

/*
TestClient_TransportErrorPropagates verifies network failures surface as errors
rather than synthetic responses.
*/
func TestClient_TransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
	server.Close() // Kill it immediately

	client, err := backend.New(backend.Config{BaseURL: server.URL})
	require.NoError(t, err)

	response, err := client.Do(context.Background(), http.MethodGet, "/product", nil)
	require.Error(t, err)
	assert.Nil(t, response)
}

/*
TestClient_CallJSON_UpstreamMessage verifies business rejections preserve the
backend's own message, with the generic fallback when it is absent.
*/
func TestClient_CallJSON_UpstreamMessage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"backend_message", http.StatusConflict, `{"message":"Order already shipped"}`, "Order already shipped"},
		{"error_field", http.StatusBadRequest, `{"error":"Invalid coupon"}`, "Invalid coupon"},
		{"no_message", http.StatusBadRequest, `{}`, apperr.GenericUpstreamMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server)

			err := client.CancelOrder(context.Background(), "o1")
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "UPSTREAM_ERROR", ae.Code)
			assert.Equal(t, tt.wantMessage, ae.Message)
			assert.Equal(t, tt.status, ae.HTTPStatus)
		})
	}
}

/*
TestClient_Login stores the minted token and returns the profile.
*/
func TestClient_Login(t *testing.T) {
	accessToken := signedTestToken(t, time.Now().Add(15*time.Minute))

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/auth/login", request.URL.Path)
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"accessToken": accessToken,
			"user": map[string]any{
				"_id": "u1", "name": "Tai", "email": "tai@velora.shop",
				"role": "customer", "walletBalance": 50.0, "isVerified": true,
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	result, err := client.Login(context.Background(), backend.LoginInput{Email: "tai@velora.shop", Password: "hunter22"})
	require.NoError(t, err)

	assert.Equal(t, "Tai", result.User.Name)
	assert.InDelta(t, 50.0, result.User.WalletBalance, 1e-9)
	assert.Equal(t, accessToken, client.Tokens().Get())
	assert.False(t, client.Tokens().ExpiresWithin(time.Minute))
	assert.True(t, client.Tokens().ExpiresWithin(time.Hour))
}

/*
TestClient_ListProducts_Filters verifies filter encoding and envelope decode.
*/
func TestClient_ListProducts_Filters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/product", request.URL.Path)
		assert.Equal(t, "squish", request.URL.Query().Get("search"))
		assert.Equal(t, "10", request.URL.Query().Get("minPrice"))
		assert.Empty(t, request.URL.Query().Get("maxPrice"), "zero filters are omitted")

		_, _ = fmt.Fprint(writer, `{"products":[{"_id":"p1","name":"Squishy","price":12.5}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	products, err := client.ListProducts(context.Background(), backend.ProductFilters{
		Search:   "squish",
		MinPrice: 10,
	})
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.InDelta(t, 12.5, products[0].Price, 1e-9)
}

/*
TestClient_GetProduct_EnvelopeTolerance accepts both wrapped and bare documents.
*/
func TestClient_GetProduct_EnvelopeTolerance(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"product":{"_id":"p1","name":"Bear","price":20}}`},
		{"bare", `{"_id":"p1","name":"Bear","price":20}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server)

			product, err := client.GetProduct(context.Background(), "p1")
			require.NoError(t, err)
			assert.Equal(t, "p1", product.ID)
			assert.Equal(t, "Bear", product.Name)
			assert.InDelta(t, 20.0, product.Price, 1e-9)
		})
	}
}
