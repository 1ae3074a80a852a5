// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package payment provides the HTTP interface for checkout and fulfillment.

It exposes the buyer-facing checkout endpoints plus the provider-facing
webhook receiver.

# Routing Strategy

  - Buyer (v1): Checkout/session/history endpoints requiring the User role.
  - Provider: The webhook receiver carries no bearer token; its authenticity
    comes from the provider signature over the raw body.
*/
package payment

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/coursio/internal/platform/constants"
	"github.com/taibuivan/coursio/internal/platform/middleware"
	requestutil "github.com/taibuivan/coursio/internal/platform/request"
	"github.com/taibuivan/coursio/internal/platform/respond"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the payment domain.
type Handler struct {
	service *Service
}

// NewHandler constructs a new payment [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the payment domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Provider Webhook (signature-authenticated, no bearer)
	router.Post("/webhook", handler.webhook)

	// ## Buyer Endpoints (User Protected)
	router.Group(func(user chi.Router) {
		user.Use(middleware.RequireRole(sec.RoleUser))

		user.Post("/checkout/{courseID}", handler.createCheckout)
		user.Get("/session/{sessionID}", handler.getSession)
		user.Get("/history", handler.history)
	})

	return router
}

// # Buyer Endpoints

/*
POST /api/v1/payments/checkout/{courseID}.

Description: Opens a hosted checkout session for a published course the
buyer does not yet own, and returns the redirect URL.

Request:
  - courseID: string (UUID)

Response:
  - 201: Session: Open session with redirect URL
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Course is a draft
  - 404: 404: ErrNotFound: Course not found
  - 409: 409: ErrConflict: Course already owned
  - 502: 502: UpstreamError: Payment provider unavailable
*/
func (handler *Handler) createCheckout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID := requestutil.ID(request, "courseID")

	session, err := handler.service.CreateCheckout(request.Context(), claims.UserID, courseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session)
}

/*
GET /api/v1/payments/session/{sessionID}.

Description: Returns the live provider-side state of one of the buyer's
own checkout sessions. Used by the storefront's success page.

Request:
  - sessionID: string (Provider session identifier)

Response:
  - 200: Session: Current session state
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 404: 404: ErrNotFound: Not the caller's session
  - 502: 502: UpstreamError: Payment provider unavailable
*/
func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.ID(request, "sessionID")

	session, err := handler.service.GetStatus(request.Context(), claims.UserID, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
GET /api/v1/payments/history.

Description: Returns the buyer's checkout attempts, newest first,
completed and abandoned alike.

Response:
  - 200: []Order: Order history
  - 401: 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orders, err := handler.service.History(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, orders)
}

// # Provider Webhook

/*
POST /api/v1/payments/webhook.

Description: Receives provider notifications. The RAW body is read
unmodified because the signature covers its exact bytes; the body is
capped to keep hostile payloads bounded. Verification failures return
400 so the provider does not retry a payload that can never verify.

Request:
  - Stripe-Signature: header (Signature over the raw body)
  - body: raw provider event JSON

Response:
  - 200: {received: true}: Event processed or skipped
  - 400: 400: UpstreamError: Signature verification failed
*/
func (handler *Handler) webhook(writer http.ResponseWriter, request *http.Request) {

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxWebhookBodySize)
	payload, err := io.ReadAll(request.Body)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("body", "Unreadable webhook payload"))
		return
	}

	signature := request.Header.Get("Stripe-Signature")

	if err := handler.service.HandleWebhook(request.Context(), payload, signature); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"received": true})
}
