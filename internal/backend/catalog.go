// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// # Catalog Types

// Product mirrors the commerce backend's product document.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	Color       string   `json:"color,omitempty"`
	Stock       int      `json:"stock"`
}

// Category mirrors the backend's category document.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ProductFilters narrows a catalog listing. Zero values are omitted from the
// query string.
type ProductFilters struct {
	Category string
	Color    string
	MinPrice float64
	MaxPrice float64
	Search   string
}

// query converts the filters into URL query parameters.
func (filters ProductFilters) query() url.Values {
	values := url.Values{}
	if filters.Category != "" {
		values.Set("category", filters.Category)
	}
	if filters.Color != "" {
		values.Set("color", filters.Color)
	}
	if filters.MinPrice > 0 {
		values.Set("minPrice", strconv.FormatFloat(filters.MinPrice, 'f', -1, 64))
	}
	if filters.MaxPrice > 0 {
		values.Set("maxPrice", strconv.FormatFloat(filters.MaxPrice, 'f', -1, 64))
	}
	if filters.Search != "" {
		values.Set("search", filters.Search)
	}
	return values
}

// # Product Operations

/*
ListProducts fetches the catalog, optionally filtered.

GET /product?category=&color=&minPrice=&maxPrice=&search=
*/
func (client *Client) ListProducts(context context.Context, filters ProductFilters) ([]Product, error) {

	// The backend wraps lists in a "products" key.
	var envelope struct {
		Products []Product `json:"products"`
	}

	err := client.CallJSON(context, http.MethodGet, "/product", &RequestOptions{Query: filters.query()}, &envelope)
	if err != nil {
		return nil, err
	}

	return envelope.Products, nil
}

/*
GetProduct fetches a single product by ID.

Description: GET /product/:id. The backend is inconsistent about wrapping the
document in a "product" key; both shapes are accepted.
*/
func (client *Client) GetProduct(context context.Context, productID string) (*Product, error) {

	var envelope struct {
		Product
		Wrapped *Product `json:"product"`
	}

	if err := client.CallJSON(context, http.MethodGet, "/product/"+productID, nil, &envelope); err != nil {
		return nil, err
	}

	if envelope.Wrapped != nil {
		return envelope.Wrapped, nil
	}
	return &envelope.Product, nil
}

/*
CreateProduct adds a product to the catalog (admin).

POST /product/new
*/
func (client *Client) CreateProduct(context context.Context, product Product) (*Product, error) {

	var envelope struct {
		Product *Product `json:"product"`
	}

	if err := client.CallJSON(context, http.MethodPost, "/product/new", &RequestOptions{JSON: product}, &envelope); err != nil {
		return nil, err
	}

	return envelope.Product, nil
}

/*
UpdateProduct replaces a product document (admin).

PUT /product/:id
*/
func (client *Client) UpdateProduct(context context.Context, productID string, product Product) error {
	return client.CallJSON(context, http.MethodPut, "/product/"+productID, &RequestOptions{JSON: product}, nil)
}

/*
DeleteProduct removes a product from the catalog (admin).

DELETE /product/:id
*/
func (client *Client) DeleteProduct(context context.Context, productID string) error {
	return client.CallJSON(context, http.MethodDelete, "/product/"+productID, nil, nil)
}

// # Category Operations

/*
ListCategories fetches all categories.

GET /category
*/
func (client *Client) ListCategories(context context.Context) ([]Category, error) {

	var categories []Category
	if err := client.CallJSON(context, http.MethodGet, "/category", nil, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}

/*
CreateCategory adds a category (admin).

POST /category
*/
func (client *Client) CreateCategory(context context.Context, name string) (*Category, error) {

	var category Category
	payload := map[string]string{"name": name}

	if err := client.CallJSON(context, http.MethodPost, "/category", &RequestOptions{JSON: payload}, &category); err != nil {
		return nil, err
	}

	return &category, nil
}

/*
UpdateCategory renames a category (admin).

PATCH /category/:id
*/
func (client *Client) UpdateCategory(context context.Context, categoryID, name string) error {

	payload := map[string]string{"name": name}
	return client.CallJSON(context, http.MethodPatch, "/category/"+categoryID, &RequestOptions{JSON: payload}, nil)
}

/*
DeleteCategory removes a category (admin).

DELETE /category/:id
*/
func (client *Client) DeleteCategory(context context.Context, categoryID string) error {
	return client.CallJSON(context, http.MethodDelete, "/category/"+categoryID, nil, nil)
}
