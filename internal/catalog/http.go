// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog exposes the public product and category browse endpoints.

Every endpoint is readable by anonymous shoppers. Requests are relayed to the
commerce backend through the caller's session client, so the shared upstream
rate limit and any attached identity apply automatically.
*/
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/velora/internal/backend"
	requestutil "github.com/taibuivan/velora/internal/platform/request"
	"github.com/taibuivan/velora/internal/platform/respond"
	"github.com/taibuivan/velora/internal/session"
	"github.com/taibuivan/velora/pkg/convert"
)

// # Definitions & Constructors

// Handler implements the catalog browse endpoints.
type Handler struct {
	registry *session.Registry
}

// NewHandler constructs a new [Handler] over the session registry.
func NewHandler(registry *session.Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns a [chi.Router] configured with catalog routes.
//
// # Endpoints
//   - GET /products          : Filtered product listing.
//   - GET /products/{id}     : Single product.
//   - GET /categories        : All categories.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/products", handler.listProducts)
	router.Get("/products/{productID}", handler.getProduct)
	router.Get("/categories", handler.listCategories)

	return router
}

// resolveClient loads the caller's upstream client.
func (handler *Handler) resolveClient(request *http.Request) (*backend.Client, error) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		return nil, err
	}

	live, err := handler.registry.Session(request.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	return live.Client(), nil
}

/*
ListProducts returns the catalog, narrowed by the storefront's filters.

GET /api/v1/catalog/products?category=&color=&minPrice=&maxPrice=&search=

Response:
  - 200: Products: Matching catalog entries
  - 502: ErrBadGateway: Upstream unreachable
*/
func (handler *Handler) listProducts(writer http.ResponseWriter, request *http.Request) {
	client, err := handler.resolveClient(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := request.URL.Query()
	products, err := client.ListProducts(request.Context(), backend.ProductFilters{
		Category: query.Get("category"),
		Color:    query.Get("color"),
		MinPrice: convert.ToFloat64(query.Get("minPrice")),
		MaxPrice: convert.ToFloat64(query.Get("maxPrice")),
		Search:   query.Get("search"),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"products": products})
}

/*
GetProduct returns one product by ID.

GET /api/v1/catalog/products/{productID}

Response:
  - 200: Product: The product document
  - 404: ErrNotFound: Unknown product
*/
func (handler *Handler) getProduct(writer http.ResponseWriter, request *http.Request) {
	client, err := handler.resolveClient(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	product, err := client.GetProduct(request.Context(), requestutil.Param(request, "productID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"product": product})
}

/*
ListCategories returns every category.

GET /api/v1/catalog/categories

Response:
  - 200: Categories: All categories
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	client, err := handler.resolveClient(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	categories, err := client.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"categories": categories})
}
