// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import "context"

// # Provider Contract

// Provider abstracts the hosted payment service.
//
// # Why an interface?
//
// The coordinator's correctness properties (signature-first webhooks,
// idempotent fulfillment, AlreadyOwned short-circuit) are independent of
// the concrete provider, so tests exercise them against a fake while
// production wires the Stripe implementation.
type Provider interface {

	/*
		CreateSession opens a hosted checkout session for one course.
		The session metadata carries the purchasing user and course IDs
		so fulfillment can tie the payment back to the entitlement.

		Parameters:
		  - context: context.Context
		  - input: CheckoutInput (Buyer, course, price)

		Returns:
		  - *Session: The provider session with its redirect URL
		  - error: UpstreamUnavailable on provider failures
	*/
	CreateSession(context context.Context, input CheckoutInput) (*Session, error)

	/*
		GetSession retrieves the provider-side state of a session.

		Parameters:
		  - context: context.Context
		  - sessionID: string (Provider session identifier)

		Returns:
		  - *Session: Current session state
		  - error: UpstreamUnavailable on provider failures
	*/
	GetSession(context context.Context, sessionID string) (*Session, error)

	/*
		VerifyEvent authenticates a raw webhook delivery against its
		signature header and decodes it. Verification happens before
		the payload is trusted in any way.

		Parameters:
		  - payload: []byte (Raw request body, unmodified)
		  - signature: string (Provider signature header)

		Returns:
		  - *Event: The verified, decoded event
		  - error: UpstreamRejected when the signature does not verify
	*/
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
