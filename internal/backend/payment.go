// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
)

// # Payment Types

// Payment method selectors accepted by the commerce backend.
const (
	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "Card"
)

// PaymentItem references a purchased product by ID with its quantity. Prices
// are deliberately absent: the backend re-prices every line from its own
// catalog and never trusts client amounts.
type PaymentItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// ShippingAddress is the delivery destination collected at checkout.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// PaymentRequest is the POST /payment payload.
type PaymentRequest struct {
	Items         []PaymentItem   `json:"items"`
	PaymentMethod string          `json:"paymentMethod"` // COD | Card
	Address       ShippingAddress `json:"address"`
	ShippingFee   float64         `json:"shippingFee"`
	UseWallet     bool            `json:"useWallet"`
}

// PaymentResult is the backend's answer to a payment initiation.
//
// Exactly one of Order / RedirectURL is meaningful: COD yields an immediately
// confirmed order, Card yields a redirect to the external payment page.
type PaymentResult struct {
	Order       *Order `json:"order"`
	RedirectURL string `json:"redirectUrl"`
	Message     string `json:"message"`
}

// # Payment Operations

/*
InitiatePayment submits the checkout to the commerce backend.

Description: POST /payment. For COD the result carries the confirmed order;
for Card it carries the external redirect URL and the order stays pending
until the payment provider confirms out-of-band.

Parameters:
  - context: context.Context
  - request: PaymentRequest

Returns:
  - *PaymentResult: Confirmation or redirect
  - error: apperr.Upstream with the backend's message, or transport failures
*/
func (client *Client) InitiatePayment(context context.Context, request PaymentRequest) (*PaymentResult, error) {

	var result PaymentResult
	if err := client.CallJSON(context, http.MethodPost, "/payment", &RequestOptions{JSON: request}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
