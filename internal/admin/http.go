// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin exposes the management console endpoints.

Every route requires an authenticated session whose profile carries the admin
role. The gateway's check is a convenience for clean 403s; the commerce
backend independently enforces the same rule on its side.
*/
package admin

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/platform/apperr"
	requestutil "github.com/taibuivan/velora/internal/platform/request"
	"github.com/taibuivan/velora/internal/platform/respond"
	"github.com/taibuivan/velora/internal/platform/validate"
	"github.com/taibuivan/velora/internal/session"
	"github.com/taibuivan/velora/pkg/convert"
)

// # Definitions & Constructors

// Field identifiers used in validation messages.
const (
	FieldName   = "name"
	FieldPrice  = "price"
	FieldStatus = "orderStatus"
)

// uploadBodyLimit caps relayed product image uploads.
const uploadBodyLimit = 20 << 20 // 20 MiB

// Handler implements the admin console endpoints.
type Handler struct {
	registry *session.Registry
}

// NewHandler constructs a new [Handler] over the session registry.
func NewHandler(registry *session.Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns a [chi.Router] configured with the admin console routes.
//
// # Endpoints
//   - POST   /products               : Creates a product.
//   - PUT    /products/{id}          : Replaces a product.
//   - DELETE /products/{id}          : Removes a product.
//   - POST   /uploads                : Relays an image upload upstream.
//   - POST   /categories             : Creates a category.
//   - PATCH  /categories/{id}        : Renames a category.
//   - DELETE /categories/{id}        : Removes a category.
//   - GET    /orders                 : Every order in the store.
//   - PATCH  /orders/{id}/status     : Moves an order through fulfillment.
//   - GET    /users                  : All accounts.
//   - PATCH  /users/{id}             : Updates an account.
//   - DELETE /users/{id}             : Removes an account.
//   - GET    /analysis               : Dashboard metrics for a date range.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(handler.requireAdmin)

	router.Post("/products", handler.createProduct)
	router.Put("/products/{productID}", handler.updateProduct)
	router.Delete("/products/{productID}", handler.deleteProduct)
	router.Post("/uploads", handler.relayUpload)

	router.Post("/categories", handler.createCategory)
	router.Patch("/categories/{categoryID}", handler.updateCategory)
	router.Delete("/categories/{categoryID}", handler.deleteCategory)

	router.Get("/orders", handler.allOrders)
	router.Patch("/orders/{orderID}/status", handler.updateOrderStatus)

	router.Get("/users", handler.listUsers)
	router.Patch("/users/{userID}", handler.updateUser)
	router.Delete("/users/{userID}", handler.deleteUser)

	router.Get("/analysis", handler.analysis)

	return router
}

// # Access Control

type sessionContextKey struct{}

// requireAdmin resolves the session, bootstraps it, and rejects everyone
// without the admin role. The live session rides the request context so the
// endpoint handlers resolve it exactly once.
func (handler *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		sessionID, err := requestutil.RequiredSessionID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		live, err := handler.registry.Session(request.Context(), sessionID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		if live.Bootstrap(request.Context()) != session.StateAuthenticated {
			respond.Error(writer, request, apperr.Unauthorized("Please log in"))
			return
		}

		if !live.User().IsAdmin() {
			respond.Error(writer, request, apperr.Forbidden("Admin access required"))
			return
		}

		ctx := context.WithValue(request.Context(), sessionContextKey{}, live)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// liveSession pulls the admin session stashed by requireAdmin.
func liveSession(request *http.Request) *session.Session {
	return request.Context().Value(sessionContextKey{}).(*session.Session)
}

// # Request Payloads

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	Color       string   `json:"color"`
	Stock       int      `json:"stock"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type orderStatusRequest struct {
	OrderStatus string `json:"orderStatus"`
}

/*
CreateProduct adds a product to the catalog.

POST /api/v1/admin/products

Request:
  - Body: productRequest

Response:
  - 201: Product: The created document
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) createProduct(writer http.ResponseWriter, request *http.Request) {
	var input productRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Custom(FieldPrice, input.Price <= 0, "must be greater than zero")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := liveSession(request).Client().CreateProduct(request.Context(), backend.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Category:    input.Category,
		Color:       input.Color,
		Stock:       input.Stock,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"product": product})
}

/*
UpdateProduct replaces a product document.

PUT /api/v1/admin/products/{productID}
*/
func (handler *Handler) updateProduct(writer http.ResponseWriter, request *http.Request) {
	var input productRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err := liveSession(request).Client().UpdateProduct(request.Context(), requestutil.Param(request, "productID"), backend.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Category:    input.Category,
		Color:       input.Color,
		Stock:       input.Stock,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Product updated"})
}

/*
DeleteProduct removes a product from the catalog.

DELETE /api/v1/admin/products/{productID}
*/
func (handler *Handler) deleteProduct(writer http.ResponseWriter, request *http.Request) {
	err := liveSession(request).Client().DeleteProduct(request.Context(), requestutil.Param(request, "productID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
RelayUpload forwards a product image upload to the commerce backend.

POST /api/v1/admin/uploads

Description: The multipart body is relayed byte-for-byte with its original
Content-Type (the boundary must survive), and the upstream response is
streamed back unchanged. The gateway adds only authentication.

Response: Whatever the upstream returns.
*/
func (handler *Handler) relayUpload(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(io.LimitReader(request.Body, uploadBodyLimit))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Could not read upload body"))
		return
	}

	upstream, err := liveSession(request).Client().Do(request.Context(), http.MethodPost, "/upload", &backend.RequestOptions{
		Raw:         body,
		ContentType: request.Header.Get("Content-Type"),
	})
	if err != nil {
		respond.Error(writer, request, apperr.BadGateway(err))
		return
	}
	defer upstream.Body.Close()

	respond.Passthrough(writer, upstream)
}

/*
CreateCategory adds a category.

POST /api/v1/admin/categories
*/
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := liveSession(request).Client().CreateCategory(request.Context(), input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"category": category})
}

/*
UpdateCategory renames a category.

PATCH /api/v1/admin/categories/{categoryID}
*/
func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := liveSession(request).Client().UpdateCategory(request.Context(), requestutil.Param(request, "categoryID"), input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Category updated"})
}

/*
DeleteCategory removes a category.

DELETE /api/v1/admin/categories/{categoryID}
*/
func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	err := liveSession(request).Client().DeleteCategory(request.Context(), requestutil.Param(request, "categoryID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
AllOrders lists every order in the store.

GET /api/v1/admin/orders
*/
func (handler *Handler) allOrders(writer http.ResponseWriter, request *http.Request) {
	orders, err := liveSession(request).Client().AllOrders(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"orders": orders})
}

/*
UpdateOrderStatus moves an order through its fulfillment pipeline.

PATCH /api/v1/admin/orders/{orderID}/status

Request:
  - Body: orderStatusRequest (OrderStatus)
*/
func (handler *Handler) updateOrderStatus(writer http.ResponseWriter, request *http.Request) {
	var input orderStatusRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldStatus, input.OrderStatus).
		OneOf(FieldStatus, input.OrderStatus, "processing", "shipped", "delivered", "cancelled")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := liveSession(request).Client().UpdateOrderStatus(request.Context(), requestutil.Param(request, "orderID"), input.OrderStatus)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "Order status updated"})
}

/*
ListUsers returns every account in the store.

GET /api/v1/admin/users
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	users, err := liveSession(request).Client().ListUsers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"users": users})
}

/*
UpdateUser patches an account.

PATCH /api/v1/admin/users/{userID}

Description: The body is an arbitrary field map; the backend decides which
fields an admin may touch.
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	var fields map[string]any

	if err := requestutil.DecodeJSON(request, &fields); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if len(fields) == 0 {
		respond.Error(writer, request, apperr.ValidationError("Nothing to update"))
		return
	}

	user, err := liveSession(request).Client().UpdateUser(request.Context(), requestutil.Param(request, "userID"), fields)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"user": user})
}

/*
DeleteUser removes an account.

DELETE /api/v1/admin/users/{userID}
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	err := liveSession(request).Client().DeleteUser(request.Context(), requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Analysis returns the dashboard metrics for a date range.

GET /api/v1/admin/analysis?from=RFC3339&to=RFC3339
GET /api/v1/admin/analysis?days=7

Description: Explicit from/to bounds win; otherwise the range is the trailing
N days (default 30).
*/
func (handler *Handler) analysis(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	now := time.Now().UTC()
	days := convert.ToIntD(query.Get("days"), 30)
	from := now.AddDate(0, 0, -days)
	to := now

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Invalid 'from' timestamp"))
			return
		}
		from = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Invalid 'to' timestamp"))
			return
		}
		to = parsed
	}

	analysis, err := liveSession(request).Client().DashboardAnalysis(request.Context(), from, to)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"analysis": analysis})
}
