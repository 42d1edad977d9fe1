// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/velora/internal/platform/apperr"
	"github.com/taibuivan/velora/internal/platform/ctxutil"
	"github.com/taibuivan/velora/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredSessionID ensures the request carries a storefront session.

Returns:
  - string: Session UUID
  - error: apperr.Unauthorized if the session cookie is missing
*/
func RequiredSessionID(request *http.Request) (string, error) {

	// Get the session minted by the middleware
	sessionID := ctxutil.GetSessionID(request.Context())

	// A missing session means the middleware chain is misconfigured or the
	// cookie was stripped; either way the request cannot be served.
	if sessionID == "" {
		return "", apperr.Unauthorized("Storefront session required")
	}

	return sessionID, nil
}
