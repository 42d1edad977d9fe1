// Copyright (c) 2026 Velora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/velora/internal/backend"
	"github.com/taibuivan/velora/internal/platform/apperr"
	requestutil "github.com/taibuivan/velora/internal/platform/request"
	"github.com/taibuivan/velora/internal/platform/respond"
	"github.com/taibuivan/velora/internal/platform/validate"
	"github.com/taibuivan/velora/internal/session"
)

// # HTTP Delivery

// Field identifiers used in validation messages.
const (
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldEmail         = "email"
	FieldStreet        = "street"
	FieldCity          = "city"
	FieldState         = "state"
	FieldZipCode       = "zipCode"
	FieldPaymentMethod = "paymentMethod"
)

// Handler implements the checkout HTTP endpoints.
type Handler struct {
	registry *session.Registry
	service  *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(registry *session.Registry, service *Service) *Handler {
	return &Handler{registry: registry, service: service}
}

// Routes returns a [chi.Router] configured with checkout routes.
//
// # Endpoints
//   - POST /quote : Prices the current cart without committing.
//   - POST /      : Places the order.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/quote", handler.quote)
	router.Post("/", handler.placeOrder)

	return router
}

// # Request Payloads

type quoteRequest struct {
	ShippingFee float64 `json:"shippingFee"`
	UseWallet   bool    `json:"useWallet"`
}

type placeOrderRequest struct {
	Address       backend.ShippingAddress `json:"address"`
	PaymentMethod string                  `json:"paymentMethod"`
	ShippingFee   float64                 `json:"shippingFee"`
	UseWallet     bool                    `json:"useWallet"`
}

// resolveSession loads the caller's live session and requires an identity:
// anonymous shoppers cannot check out.
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
		return nil, apperr.Unauthorized("Please log in to check out")
	}

	return live, nil
}

/*
Quote prices the current cart.

POST /api/v1/checkout/quote

Description: Returns the full amount breakdown (tax, shipping, wallet
deduction, payable) for the session's cart without placing an order. The
storefront renders this on the checkout page before the shopper commits.

Request:
  - Body: quoteRequest (ShippingFee, UseWallet)

Response:
  - 200: Quote: Amount breakdown
  - 401: ErrUnauthorized: Anonymous session
*/
func (handler *Handler) quote(writer http.ResponseWriter, request *http.Request) {
	var input quoteRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	walletBalance := 0.0
	if user := live.User(); user != nil {
		walletBalance = user.WalletBalance
	}

	respond.OK(writer, ComputeQuote(live.Cart().Total(), input.ShippingFee, walletBalance, input.UseWallet))
}

/*
PlaceOrder submits the cart as an order.

POST /api/v1/checkout

Description: Validates the shipping address and payment method, then hands the
cart to the checkout service. COD responses carry the confirmed order; Card
responses carry the external payment redirect.

Request:
  - Body: placeOrderRequest (Address, PaymentMethod, ShippingFee, UseWallet)

Response:
  - 200: PlaceOrderResult: Confirmation or redirect plus the quote
  - 400: ErrInvalidJSON: Validation failure or empty cart
  - 401: ErrUnauthorized: Anonymous session
*/
func (handler *Handler) placeOrder(writer http.ResponseWriter, request *http.Request) {
	var input placeOrderRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.Address.FirstName).
		Required(FieldLastName, input.Address.LastName).
		Required(FieldEmail, input.Address.Email).
		Email(FieldEmail, input.Address.Email).
		Required(FieldStreet, input.Address.Street).
		Required(FieldCity, input.Address.City).
		Required(FieldState, input.Address.State).
		Required(FieldZipCode, input.Address.ZipCode).
		Required(FieldPaymentMethod, input.PaymentMethod).
		OneOf(FieldPaymentMethod, input.PaymentMethod, backend.PaymentMethodCOD, backend.PaymentMethodCard)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	live, err := handler.resolveSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if len(live.Cart().Items()) == 0 {
		respond.Error(writer, request, apperr.ValidationError("Your cart is empty"))
		return
	}

	result, err := handler.service.PlaceOrder(request.Context(), live, PlaceOrderInput{
		Address:       input.Address,
		PaymentMethod: input.PaymentMethod,
		ShippingFee:   input.ShippingFee,
		UseWallet:     input.UseWallet,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
