// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package orders exposes the shopper-facing order history endpoints.

All endpoints require an authenticated session; order ownership itself is
enforced by the commerce backend, which scopes every query to the access
token it receives.
*/
package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/velora/internal/platform/apperr"
	requestutil "github.com/taibuivan/velora/internal/platform/request"
	"github.com/taibuivan/velora/internal/platform/respond"
	"github.com/taibuivan/velora/internal/session"
)

// # Definitions & Constructors

// Handler implements the shopper order endpoints.
type Handler struct {
	registry *session.Registry
}

// NewHandler constructs a new [Handler] over the session registry.
func NewHandler(registry *session.Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns a [chi.Router] configured with order routes.
//
// # Endpoints
//   - GET  /                   : The shopper's order history.
//   - GET  /{orderID}          : One order.
//   - POST /{orderID}/cancel   : Cancellation request.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.myOrders)
	router.Get("/{orderID}", handler.getOrder)
	router.Post("/{orderID}/cancel", handler.cancelOrder)

	return router
}

// resolveSession loads the caller's session and requires an identity.
func (handler *Handler) resolveSession(request *http.Request) (*session.Session, error) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		return nil, err
	}

	live, err := handler.registry.Session(request.Context(), sessionID)
	if err != nil {
		return nil, err
	}

	if live.Bootstrap(request.Context()) != session.StateAuthenticated {
		return nil, apperr.Unauthorized("Please log in to view your orders")
	}
	return live, nil
}

/*
MyOrders returns the shopper's order history.

GET /api/v1/orders

Response:
  - 200: Orders: The shopper's orders
  - 401: ErrUnauthorized: Anonymous session
*/
func (handler *Handler) myOrders(writer http.ResponseWriter, request *http.Request) {
	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orders, err := live.Client().MyOrders(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"orders": orders})
}

/*
GetOrder returns one order by ID.

GET /api/v1/orders/{orderID}

Response:
  - 200: Order: The order document
  - 404: ErrNotFound: Unknown order or not the shopper's
*/
func (handler *Handler) getOrder(writer http.ResponseWriter, request *http.Request) {
	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	order, err := live.Client().GetOrder(request.Context(), requestutil.Param(request, "orderID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"order": order})
}

/*
CancelOrder asks the backend to cancel an order.

POST /api/v1/orders/{orderID}/cancel

Description: Whether cancellation is allowed is the backend's decision; its
rejection message is relayed verbatim so the shopper sees the real reason.

Response:
  - 200: Success: Cancellation accepted
  - 422: ErrUnprocessable: Backend refused, with its reason
*/
func (handler *Handler) cancelOrder(writer http.ResponseWriter, request *http.Request) {
	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := live.Client().CancelOrder(request.Context(), requestutil.Param(request, "orderID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Order cancelled"})
}
