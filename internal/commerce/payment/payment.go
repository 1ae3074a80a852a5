// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package payment implements the checkout and fulfillment coordinator of the
Coursio commerce domain.

Money is handled by a hosted payment provider; this package creates checkout
sessions, records a local order trail, and converts provider webhook events
into idempotent entitlement grants.

Core Responsibility:

  - Checkout: Creates provider-hosted sessions carrying user/course metadata.
  - Fulfillment: Verifies webhook signatures FIRST, then grants entitlements.
  - History: Maintains the local commerce.order trail for the storefront.

The provider itself remains the system of record for the payment; the local
order row exists for history listings and reconciliation.
*/
package payment

import "time"

// # Domain Enums

// OrderStatus tracks the local lifecycle of a checkout attempt.
type OrderStatus string

const (
	// OrderStatusCreated marks a session handed to the provider, not yet paid.
	OrderStatusCreated OrderStatus = "created"

	// OrderStatusCompleted marks a paid and fulfilled checkout.
	OrderStatusCompleted OrderStatus = "completed"

	// OrderStatusExpired marks a session the provider timed out.
	OrderStatusExpired OrderStatus = "expired"

	// OrderStatusCanceled marks a session the buyer abandoned.
	OrderStatusCanceled OrderStatus = "canceled"
)

// # Core Entities

// Order is the local record of one checkout attempt.
type Order struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	CourseID          string      `json:"course_id"`
	CourseTitle       string      `json:"course_title,omitempty"` // Denormalized for history display
	CheckoutSessionID string      `json:"checkout_session_id"`
	AmountCents       int64       `json:"amount_cents"`
	Currency          string      `json:"currency"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// # Provider Types

// CheckoutInput carries everything the provider needs to host a session.
type CheckoutInput struct {
	UserID            string
	CourseID          string
	CourseTitle       string
	CourseDescription string
	ImageLink         string
	AmountCents       int64
	Currency          string
}

// Session mirrors the provider-side checkout session state.
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url,omitempty"`
	Status        string            `json:"status"`         // open, complete, expired
	PaymentStatus string            `json:"payment_status"` // paid, unpaid
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Event is a signature-verified provider webhook notification.
type Event struct {
	ID      string
	Type    string
	Session *Session // populated for checkout.session.* events
}

// Webhook event types the coordinator reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// Session metadata keys tying a provider session back to the purchase.
const (
	MetadataUserID   = "user_id"
	MetadataCourseID = "course_id"
)
