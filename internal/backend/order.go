// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
	"time"
)

// # Order Types

// OrderItem is one purchased line inside an order.
type OrderItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order mirrors the backend's order document.
type Order struct {
	ID          string      `json:"_id"`
	User        string      `json:"user"`
	Items       []OrderItem `json:"items"`
	OrderStatus string      `json:"orderStatus"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// # Shopper Operations

/*
MyOrders lists the authenticated shopper's order history.

GET /order/myorders
*/
func (client *Client) MyOrders(context context.Context) ([]Order, error) {

	var envelope struct {
		Orders []Order `json:"orders"`
	}

	if err := client.CallJSON(context, http.MethodGet, "/order/myorders", nil, &envelope); err != nil {
		return nil, err
	}

	return envelope.Orders, nil
}

/*
GetOrder fetches one order by ID.

GET /order/:id
*/
func (client *Client) GetOrder(context context.Context, orderID string) (*Order, error) {

	var envelope struct {
		Order
		Wrapped *Order `json:"order"`
	}

	if err := client.CallJSON(context, http.MethodGet, "/order/"+orderID, nil, &envelope); err != nil {
		return nil, err
	}

	if envelope.Wrapped != nil {
		return envelope.Wrapped, nil
	}
	return &envelope.Order, nil
}

/*
CancelOrder asks the backend to cancel an order.

Description: POST /order/cancel/:id. Whether cancellation is allowed (status,
time window, refunds) is entirely the backend's call; its rejection message is
surfaced verbatim to the shopper.
*/
func (client *Client) CancelOrder(context context.Context, orderID string) error {
	return client.CallJSON(context, http.MethodPost, "/order/cancel/"+orderID, nil, nil)
}

// # Admin Operations

/*
AllOrders lists every order in the store (admin).

GET /order/all
*/
func (client *Client) AllOrders(context context.Context) ([]Order, error) {

	var envelope struct {
		Orders []Order `json:"orders"`
	}

	if err := client.CallJSON(context, http.MethodGet, "/order/all", nil, &envelope); err != nil {
		return nil, err
	}

	return envelope.Orders, nil
}

/*
UpdateOrderStatus moves an order through its fulfillment pipeline (admin).

PATCH /order/status/:id
*/
func (client *Client) UpdateOrderStatus(context context.Context, orderID, status string) error {

	payload := map[string]string{"orderStatus": status}
	return client.CallJSON(context, http.MethodPatch, "/order/status/"+orderID, &RequestOptions{JSON: payload}, nil)
}
