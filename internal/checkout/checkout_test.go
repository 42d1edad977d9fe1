// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/cart"
	"github.com/taibuivan/velora/internal/checkout"
	"github.com/taibuivan/velora/internal/session"
)

/*
TestComputeQuote covers the amount policy, in particular that tax rounds on
the subtotal alone before wallet capping.
*/
func TestComputeQuote(t *testing.T) {
	tests := []struct {
		name          string
		subtotal      float64
		shippingFee   float64
		walletBalance float64
		useWallet     bool
		want          checkout.Quote
	}{
		{
			// Subtotal 1000, 8% tax rounds to 80, balance 50 caps the
			// deduction, payable lands on 1030.
			name:          "wallet_capped_by_balance",
			subtotal:      1000,
			walletBalance: 50,
			useWallet:     true,
			want: checkout.Quote{
				Subtotal:        1000,
				Tax:             80,
				OrderTotal:      1080,
				WalletDeduction: 50,
				Payable:         1030,
			},
		},
		{
			name:          "wallet_capped_by_total",
			subtotal:      100,
			walletBalance: 5000,
			useWallet:     true,
			want: checkout.Quote{
				Subtotal:        100,
				Tax:             8,
				OrderTotal:      108,
				WalletDeduction: 108,
				Payable:         0,
			},
		},
		{
			name:          "wallet_opted_out",
			subtotal:      100,
			walletBalance: 5000,
			useWallet:     false,
			want: checkout.Quote{
				Subtotal:   100,
				Tax:        8,
				OrderTotal: 108,
				Payable:    108,
			},
		},
		{
			// 8% of 99 is 7.92; the tax rounds to 8 before combining.
			name:     "tax_rounds_before_combining",
			subtotal: 99,
			want: checkout.Quote{
				Subtotal:   99,
				Tax:        8,
				OrderTotal: 107,
				Payable:    107,
			},
		},
		{
			// 8% of 90 is 7.2, rounding down.
			name:     "tax_rounds_down",
			subtotal: 90,
			want: checkout.Quote{
				Subtotal:   90,
				Tax:        7,
				OrderTotal: 97,
				Payable:    97,
			},
		},
		{
			name:        "shipping_fee_in_total",
			subtotal:    100,
			shippingFee: 40,
			want: checkout.Quote{
				Subtotal:    100,
				Tax:         8,
				ShippingFee: 40,
				OrderTotal:  148,
				Payable:     148,
			},
		},
		{
			name: "empty_cart",
			want: checkout.Quote{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkout.ComputeQuote(tt.subtotal, tt.shippingFee, tt.walletBalance, tt.useWallet)
			assert.Equal(t, tt.want, got)
		})
	}
}

// paymentStub is a commerce backend accepting logins and payments.
type paymentStub struct {
	method       string
	lastRequest  backend.PaymentRequest
	refreshCalls int
}

func (stub *paymentStub) handler() http.Handler {
	mux := http.NewServeMux()

	user := map[string]any{"_id": "u1", "name": "Mina", "email": "mina@velora.shop", "role": "customer", "walletBalance": 50.0}

	mux.HandleFunc("/auth/login", func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode(map[string]any{"accessToken": "token", "user": user})
	})

	mux.HandleFunc("/auth/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		stub.refreshCalls++
		json.NewEncoder(writer).Encode(map[string]any{"accessToken": "token", "user": user})
	})

	mux.HandleFunc("/payment", func(writer http.ResponseWriter, request *http.Request) {
		json.NewDecoder(request.Body).Decode(&stub.lastRequest)

		switch stub.method {
		case backend.PaymentMethodCard:
			json.NewEncoder(writer).Encode(map[string]any{"redirectUrl": "https://pay.example.com/tx/42"})
		default:
			json.NewEncoder(writer).Encode(map[string]any{
				"order": map[string]any{"_id": "order-1", "orderStatus": "confirmed"},
			})
		}
	})

	return mux
}

// newCheckoutSession returns a logged-in session with two items in the cart.
func newCheckoutSession(t *testing.T, stub *paymentStub) *session.Session {
	t.Helper()

	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	client, err := backend.New(backend.Config{BaseURL: server.URL})
	require.NoError(t, err)

	cartStore := cart.NewStore(cart.NewFileStorage(filepath.Join(t.TempDir(), "cart.json")), nil)
	ctx := context.Background()
	require.NoError(t, cartStore.Load(ctx))
	require.NoError(t, cartStore.AddItem(ctx, cart.Item{ProductID: "p1", Name: "Bear", Price: 600}))
	require.NoError(t, cartStore.AddItem(ctx, cart.Item{ProductID: "p1", Name: "Bear", Price: 600}))
	require.NoError(t, cartStore.AddItem(ctx, cart.Item{ProductID: "p2", Name: "Mug", Price: 100}))

	live := session.NewSession("sess-1", client, cartStore, nil)
	_, err = live.Login(ctx, "mina@velora.shop", "password123")
	require.NoError(t, err)

	return live
}

/*
TestPlaceOrder_COD: cash on delivery confirms, clears the cart, and refreshes
the wallet balance.
*/
func TestPlaceOrder_COD(t *testing.T) {
	stub := &paymentStub{method: backend.PaymentMethodCOD}
	live := newCheckoutSession(t, stub)

	result, err := checkout.NewService(nil).PlaceOrder(context.Background(), live, checkout.PlaceOrderInput{
		PaymentMethod: backend.PaymentMethodCOD,
		UseWallet:     true,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Order)
	assert.Equal(t, "order-1", result.Order.ID)
	assert.Empty(t, result.RedirectURL)
	assert.True(t, result.CartCleared)
	assert.Empty(t, live.Cart().Items())

	// Subtotal 1300, tax 104, wallet 50 => payable 1354.
	assert.InDelta(t, 1300.0, result.Quote.Subtotal, 1e-9)
	assert.InDelta(t, 104.0, result.Quote.Tax, 1e-9)
	assert.InDelta(t, 50.0, result.Quote.WalletDeduction, 1e-9)
	assert.InDelta(t, 1354.0, result.Quote.Payable, 1e-9)

	// Wallet was spent, so the profile must have been re-fetched.
	assert.Equal(t, 1, stub.refreshCalls)

	// The upstream never receives client-side prices.
	require.Len(t, stub.lastRequest.Items, 2)
	assert.Equal(t, "p1", stub.lastRequest.Items[0].Product)
	assert.Equal(t, 2, stub.lastRequest.Items[0].Quantity)
	assert.True(t, stub.lastRequest.UseWallet)
}

/*
TestPlaceOrder_Card: card checkouts return the redirect and keep the cart.
*/
func TestPlaceOrder_Card(t *testing.T) {
	stub := &paymentStub{method: backend.PaymentMethodCard}
	live := newCheckoutSession(t, stub)

	result, err := checkout.NewService(nil).PlaceOrder(context.Background(), live, checkout.PlaceOrderInput{
		PaymentMethod: backend.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/tx/42", result.RedirectURL)
	assert.False(t, result.CartCleared)
	assert.Len(t, live.Cart().Items(), 2, "cart survives until the provider confirms")
	assert.Equal(t, 0, stub.refreshCalls)
}

/*
TestPlaceOrder_NoWalletSkipsRefresh: a COD order without wallet usage does
not re-fetch the profile.
*/
func TestPlaceOrder_NoWalletSkipsRefresh(t *testing.T) {
	stub := &paymentStub{method: backend.PaymentMethodCOD}
	live := newCheckoutSession(t, stub)

	result, err := checkout.NewService(nil).PlaceOrder(context.Background(), live, checkout.PlaceOrderInput{
		PaymentMethod: backend.PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.True(t, result.CartCleared)
	assert.Zero(t, result.Quote.WalletDeduction)
	assert.Equal(t, 0, stub.refreshCalls)
}
