// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"

	"github.com/taibuivan/coursio/internal/catalog/course"
	"github.com/taibuivan/coursio/internal/commerce/entitlement"
)

// # Order Data Access

// OrderRepository defines the data access contract for the local order trail.
type OrderRepository interface {

	/*
		Create persists a new order row in the 'created' state.

		Parameters:
		  - context: context.Context
		  - order: *Order (ID, UserID, CourseID, CheckoutSessionID, amount)

		Returns:
		  - error: Constraint or execution failures
	*/
	Create(context context.Context, order *Order) error

	/*
		FindBySessionID returns the order tied to a provider session.

		Parameters:
		  - context: context.Context
		  - sessionID: string (Provider session identifier)

		Returns:
		  - *Order: The matching order
		  - error: ErrNotFound if missing
	*/
	FindBySessionID(context context.Context, sessionID string) (*Order, error)

	/*
		UpdateStatusBySession transitions the order tied to a provider
		session. Missing orders are reported, not invented: a webhook for
		a session this system never created should not fabricate rows.

		Parameters:
		  - context: context.Context
		  - sessionID: string (Provider session identifier)
		  - status: OrderStatus (Target state)

		Returns:
		  - bool: true when a row was transitioned
		  - error: Execution failures
	*/
	UpdateStatusBySession(context context.Context, sessionID string, status OrderStatus) (bool, error)

	/*
		ListByUser returns the user's order history, newest first, with
		course titles denormalized for display.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)

		Returns:
		  - []*Order: Order history
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]*Order, error)
}

// # Cross-Domain Contracts

// CourseReader is the slice of the catalogue checkout needs for its
// preconditions and line-item content.
type CourseReader interface {
	FindByID(context context.Context, id string) (*course.Course, error)
}

// Ledger is the slice of the entitlement domain fulfillment writes to.
type Ledger interface {
	Has(context context.Context, userID, courseID string) (bool, error)
	Grant(context context.Context, userID, courseID string, source entitlement.Source) error
}
