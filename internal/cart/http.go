// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/velora/internal/platform/request"
	"github.com/taibuivan/velora/internal/platform/respond"
	"github.com/taibuivan/velora/internal/platform/validate"
)

// # Definitions & Constructors

// Field identifiers used in validation messages.
const (
	FieldProductID = "productId"
	FieldName      = "name"
)

// StoreProvider resolves the cart [Store] owned by a shopper session.
// The session registry implements this; the handler stays decoupled
// from session lifecycle management.
type StoreProvider interface {
	CartStore(context context.Context, sessionID string) (*Store, error)
}

// Handler implements the shopping cart and wishlist HTTP endpoints.
//
// # Scope
//
// Every endpoint operates on the cart belonging to the caller's browser
// session. There is no cross-session access: the session cookie is the
// only addressing mechanism.
type Handler struct {
	provider StoreProvider
}

// NewHandler constructs a new [Handler] with its store provider.
func NewHandler(provider StoreProvider) *Handler {
	return &Handler{provider: provider}
}

// Routes returns a [chi.Router] configured with cart and wishlist routes.
//
// # Endpoints
//   - GET    /                    : Cart snapshot with totals.
//   - POST   /items               : Adds a product (or bumps its quantity).
//   - PATCH  /items/{productID}   : Sets a line item quantity.
//   - DELETE /items/{productID}   : Removes a line item.
//   - DELETE /                    : Empties the cart.
//   - GET    /wishlist            : Wishlisted product IDs.
//   - POST   /wishlist/toggle     : Toggles wishlist membership.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getCart)
	router.Delete("/", handler.clearCart)
	router.Post("/items", handler.addItem)
	router.Patch("/items/{productID}", handler.updateQuantity)
	router.Delete("/items/{productID}", handler.removeItem)
	router.Get("/wishlist", handler.getWishlist)
	router.Post("/wishlist/toggle", handler.toggleWishlist)

	return router
}

// # Request Payloads

type addItemRequest struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Color     string  `json:"color"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type toggleWishlistRequest struct {
	ProductID string `json:"productId"`
}

// resolveStore loads the caller's hydrated cart store or fails with the
// underlying session/storage error.
func (handler *Handler) resolveStore(request *http.Request) (*Store, error) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		return nil, err
	}
	return handler.provider.CartStore(request.Context(), sessionID)
}

/*
GetCart returns the full cart snapshot for the current session.

GET /api/v1/cart

Response:
  - 200: Cart: Line items, item count, and subtotal
*/
func (handler *Handler) getCart(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"items": store.Items(),
		"count": store.Count(),
		"total": store.Total(),
	})
}

/*
AddItem puts a product into the cart.

POST /api/v1/cart/items

Description: Adding a product already in the cart bumps its quantity by
one; the incoming payload's other fields are ignored for existing lines.
A new product always enters with quantity 1.

Request:
  - Body: addItemRequest (ID, Name, Price, Image, Color)

Response:
  - 200: Cart: Updated snapshot
  - 400: ErrInvalidJSON: Missing product ID
*/
func (handler *Handler) addItem(writer http.ResponseWriter, request *http.Request) {
	var input addItemRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldProductID, input.ProductID).
		Required(FieldName, input.Name)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = store.AddItem(request.Context(), Item{
		ProductID: input.ProductID,
		Name:      input.Name,
		Price:     input.Price,
		Image:     input.Image,
		Color:     input.Color,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"items": store.Items(),
		"count": store.Count(),
		"total": store.Total(),
	})
}

/*
UpdateQuantity sets the quantity of an existing line item.

PATCH /api/v1/cart/items/{productID}

Description: Quantities below 1 are clamped to 1; lowering a quantity
never removes the line item. Unknown product IDs are ignored.

Request:
  - Body: updateQuantityRequest (Quantity)

Response:
  - 200: Cart: Updated snapshot
*/
func (handler *Handler) updateQuantity(writer http.ResponseWriter, request *http.Request) {
	var input updateQuantityRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	productID := requestutil.Param(request, "productID")
	if err := store.UpdateQuantity(request.Context(), productID, input.Quantity); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"items": store.Items(),
		"count": store.Count(),
		"total": store.Total(),
	})
}

/*
RemoveItem deletes a line item from the cart.

DELETE /api/v1/cart/items/{productID}

Description: Removing a product that is not in the cart is a no-op.

Response:
  - 200: Cart: Updated snapshot
*/
func (handler *Handler) removeItem(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	productID := requestutil.Param(request, "productID")
	if err := store.RemoveItem(request.Context(), productID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"items": store.Items(),
		"count": store.Count(),
		"total": store.Total(),
	})
}

/*
ClearCart empties the cart for the current session.

DELETE /api/v1/cart

Response:
  - 204: No Content: Cart emptied
*/
func (handler *Handler) clearCart(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := store.Clear(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GetWishlist returns the wishlisted product IDs for the current session.

GET /api/v1/cart/wishlist

Response:
  - 200: Wishlist: Product ID list
*/
func (handler *Handler) getWishlist(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"items": store.Wishlist(),
	})
}

/*
ToggleWishlist flips a product in or out of the wishlist.

POST /api/v1/cart/wishlist/toggle

Request:
  - Body: toggleWishlistRequest (ProductID)

Response:
  - 200: Result: Whether the product is now wishlisted
  - 400: ErrInvalidJSON: Missing product ID
*/
func (handler *Handler) toggleWishlist(writer http.ResponseWriter, request *http.Request) {
	var input toggleWishlistRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldProductID, input.ProductID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	store, err := handler.resolveStore(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	added, err := store.ToggleWishlist(request.Context(), input.ProductID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"productId":  input.ProductID,
		"wishlisted": added,
	})
}
