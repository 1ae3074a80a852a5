// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement defines the ownership ledger of the Coursio commerce domain.

An entitlement is the durable record that a user owns a course. The ledger has
set semantics: granting an already-held entitlement is a no-op, which is what
makes payment webhook redelivery harmless.

Core Responsibility:

  - Ledger: One row per (user, course); the single source of truth for access checks.
  - Idempotency: Grants converge regardless of how many times fulfillment fires.
  - Library: Joins entitlements back to the catalogue for the "my courses" view.
*/
package entitlement

import "time"

// # Domain Enums

// Source records how an entitlement was obtained.
type Source string

const (
	// SourceDirect marks grants from the direct purchase endpoint.
	SourceDirect Source = "direct"

	// SourceCheckout marks grants fulfilled by a payment provider webhook.
	SourceCheckout Source = "checkout"
)

// # Core Entities

// Entitlement is a single ownership record in the ledger.
type Entitlement struct {
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	Source    Source    `json:"source"`
	GrantedAt time.Time `json:"granted_at"`
}

// PurchasedCourse is a library entry: the owned course's display fields
// joined with the grant timestamp.
type PurchasedCourse struct {
	CourseID        string    `json:"course_id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	ImageLink       string    `json:"image_link"`
	Category        string    `json:"category"`
	Level           string    `json:"level"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	Currency        string    `json:"currency"`
	GrantedAt       time.Time `json:"granted_at"`
}
