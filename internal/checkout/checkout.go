// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package checkout turns a shopping cart into an upstream payment.

The amount policy is the one contract the gateway owns rather than the
commerce backend:

 1. Tax is a rounded percentage of the subtotal, rounded BEFORE anything
    else is combined with it.
 2. The order total is subtotal + tax + shipping fee.
 3. An optional wallet deduction is capped at min(balance, order total).
 4. The payable amount is the order total minus the deduction.

Changing the rounding order shifts the payable amount by currency fractions,
so [Quote] is covered by exact-value tests.
*/
package checkout

import (
	"context"
	"log/slog"
	"math"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/cart"
	"github.com/taibuivan/velora/internal/platform/constants"
	"github.com/taibuivan/velora/internal/session"
	"github.com/taibuivan/velora/pkg/slice"
)

// # Amount Computation

// Quote is the priced breakdown of a checkout before payment.
type Quote struct {
	Subtotal        float64 `json:"subtotal"`
	Tax             float64 `json:"tax"`
	ShippingFee     float64 `json:"shippingFee"`
	OrderTotal      float64 `json:"orderTotal"`
	WalletDeduction float64 `json:"walletDeduction"`
	Payable         float64 `json:"payable"`
}

/*
ComputeQuote prices a checkout.

Description: Applies the amount policy documented on the package. The wallet
deduction is zero unless useWallet is set, and never exceeds the order total
or the available balance.

Parameters:
  - subtotal: Sum of unit price times quantity over the cart
  - shippingFee: Flat fee chosen by the storefront
  - walletBalance: The shopper's stored-value balance
  - useWallet: Whether the shopper opted to spend the balance

Returns:
  - Quote: The full breakdown
*/
func ComputeQuote(subtotal, shippingFee, walletBalance float64, useWallet bool) Quote {

	// 1. Tax rounds first, on the subtotal alone.
	tax := math.Round(subtotal * constants.TaxRatePercent / 100)

	// 2. Combine into the order total.
	orderTotal := subtotal + tax + shippingFee

	// 3. Wallet deduction capped at both the balance and the total.
	deduction := 0.0
	if useWallet {
		deduction = math.Min(walletBalance, orderTotal)
		if deduction < 0 {
			deduction = 0
		}
	}

	return Quote{
		Subtotal:        subtotal,
		Tax:             tax,
		ShippingFee:     shippingFee,
		OrderTotal:      orderTotal,
		WalletDeduction: deduction,
		Payable:         orderTotal - deduction,
	}
}

// # Order Placement

// PlaceOrderInput carries the shopper's checkout form.
type PlaceOrderInput struct {
	Address       backend.ShippingAddress
	PaymentMethod string
	ShippingFee   float64
	UseWallet     bool
}

// PlaceOrderResult is the gateway-side outcome of a checkout.
type PlaceOrderResult struct {
	Quote       Quote          `json:"quote"`
	Order       *backend.Order `json:"order,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	CartCleared bool           `json:"cartCleared"`
}

// Service drives the checkout flow for live sessions.
type Service struct {
	logger *slog.Logger
}

// NewService constructs a checkout [Service].
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{logger: logger}
}

/*
PlaceOrder submits the session's cart as an upstream payment.

Description: Prices the cart with [ComputeQuote], then initiates the payment.
Cash on delivery confirms immediately: the cart is cleared and, when the
wallet was used, the profile is re-fetched so the displayed balance matches
the server. Card checkouts return the external redirect URL and leave the
cart intact until the payment provider confirms out-of-band.

Parameters:
  - context: context.Context
  - live: The shopper session placing the order
  - input: PlaceOrderInput

Returns:
  - *PlaceOrderResult: Quote plus confirmation or redirect
  - error: Upstream rejection or cart persistence failures
*/
func (service *Service) PlaceOrder(context context.Context, live *session.Session, input PlaceOrderInput) (*PlaceOrderResult, error) {

	cartStore := live.Cart()
	items := cartStore.Items()

	walletBalance := 0.0
	if user := live.User(); user != nil {
		walletBalance = user.WalletBalance
	}

	quote := ComputeQuote(cartStore.Total(), input.ShippingFee, walletBalance, input.UseWallet)

	paymentItems := slice.Map(items, func(item cart.Item) backend.PaymentItem {
		return backend.PaymentItem{Product: item.ProductID, Quantity: item.Quantity}
	})

	result, err := live.Client().InitiatePayment(context, backend.PaymentRequest{
		Items:         paymentItems,
		PaymentMethod: input.PaymentMethod,
		Address:       input.Address,
		ShippingFee:   input.ShippingFee,
		UseWallet:     input.UseWallet,
	})
	if err != nil {
		return nil, err
	}

	placed := &PlaceOrderResult{
		Quote:       quote,
		Order:       result.Order,
		RedirectURL: result.RedirectURL,
	}

	if input.PaymentMethod == backend.PaymentMethodCard && result.RedirectURL != "" {
		// The cart stays until the payment provider confirms.
		service.logger.Info("checkout_redirect",
			slog.String("session_id", live.ID()),
			slog.Float64("payable", quote.Payable),
		)
		return placed, nil
	}

	// COD path: the order is confirmed, the cart is done.
	if err := cartStore.Clear(context); err != nil {
		// The order exists upstream; a stale cart is recoverable, losing the
		// confirmation is not.
		service.logger.Error("checkout_cart_clear_failed",
			slog.String("session_id", live.ID()),
			slog.String("error", err.Error()),
		)
	} else {
		placed.CartCleared = true
	}

	if input.UseWallet && quote.WalletDeduction > 0 {
		// Refresh the profile so the wallet balance reflects the deduction.
		if _, err := live.CheckUser(context); err != nil {
			service.logger.Warn("checkout_wallet_refresh_failed",
				slog.String("session_id", live.ID()),
				slog.String("error", err.Error()),
			)
		}
	}

	service.logger.Info("checkout_confirmed",
		slog.String("session_id", live.ID()),
		slog.Float64("payable", quote.Payable),
		slog.Bool("wallet_used", quote.WalletDeduction > 0),
	)

	return placed, nil
}
