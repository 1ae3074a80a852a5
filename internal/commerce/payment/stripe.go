// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/taibuivan/coursio/internal/platform/apperr"
)

// # Stripe Provider

// stripeProvider implements [Provider] on top of Stripe hosted checkout.
type stripeProvider struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeProvider configures the Stripe SDK and returns the production
// [Provider]. successURL/cancelURL are where the hosted page redirects the
// buyer after the attempt.
func NewStripeProvider(secretKey, webhookSecret, successURL, cancelURL string) Provider {
	stripe.Key = secretKey
	return &stripeProvider{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

/*
CreateSession opens a Stripe hosted checkout session.

Description: Builds a single-line-item payment session with inline price
data, so courses need no pre-registered Stripe products. The purchasing
user and course IDs travel in the session metadata and come back on the
completion webhook.

Parameters:
  - context: context.Context
  - input: CheckoutInput (Buyer, course, price)

Returns:
  - *Session: The open session with its redirect URL
  - error: UpstreamUnavailable when Stripe rejects or is unreachable
*/
func (provider *stripeProvider) CreateSession(context context.Context, input CheckoutInput) (*Session, error) {

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(provider.successURL),
		CancelURL:  stripe.String(provider.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(input.Currency),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(input.CourseTitle),
						Description: stripe.String(input.CourseDescription),
					},
				},
			},
		},
	}
	params.Context = context
	params.AddMetadata(MetadataUserID, input.UserID)
	params.AddMetadata(MetadataCourseID, input.CourseID)

	created, err := session.New(params)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("Payment provider unavailable", err)
	}

	return fromStripeSession(created), nil
}

/*
GetSession retrieves the provider-side state of a checkout session.

Parameters:
  - context: context.Context
  - sessionID: string (Stripe session identifier, cs_...)

Returns:
  - *Session: Current session state
  - error: UpstreamUnavailable when Stripe rejects or is unreachable
*/
func (provider *stripeProvider) GetSession(context context.Context, sessionID string) (*Session, error) {

	params := &stripe.CheckoutSessionParams{}
	params.Context = context

	fetched, err := session.Get(sessionID, params)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("Payment provider unavailable", err)
	}

	return fromStripeSession(fetched), nil
}

/*
VerifyEvent authenticates and decodes a Stripe webhook delivery.

Description: The raw body is checked against the Stripe-Signature header
using the endpoint's webhook secret. Nothing in the payload is trusted
until this verification passes. checkout.session.* events additionally
get their session object decoded.

Parameters:
  - payload: []byte (Raw request body, unmodified)
  - signature: string (Stripe-Signature header value)

Returns:
  - *Event: The verified event
  - error: UpstreamRejected when the signature does not verify
*/
func (provider *stripeProvider) VerifyEvent(payload []byte, signature string) (*Event, error) {

	stripeEvent, err := webhook.ConstructEvent(payload, signature, provider.webhookSecret)
	if err != nil {
		return nil, apperr.UpstreamRejected("Invalid webhook signature")
	}

	event := &Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}

	// Session decoding for the checkout lifecycle events
	switch event.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &checkoutSession); err != nil {
			return nil, apperr.UpstreamRejected("Malformed webhook payload")
		}
		event.Session = fromStripeSession(&checkoutSession)
	}

	return event, nil
}

// fromStripeSession maps the SDK session onto the domain type.
func fromStripeSession(source *stripe.CheckoutSession) *Session {
	return &Session{
		ID:            source.ID,
		URL:           source.URL,
		Status:        string(source.Status),
		PaymentStatus: string(source.PaymentStatus),
		AmountCents:   source.AmountTotal,
		Currency:      string(source.Currency),
		Metadata:      source.Metadata,
	}
}
