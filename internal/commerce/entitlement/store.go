// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"

	"github.com/taibuivan/coursio/internal/catalog/course"
)

// # Entitlement Data Access

// EntitlementRepository defines the data access contract for the ownership ledger.
type EntitlementRepository interface {

	/*
		Has reports whether the user holds an entitlement for the course.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)
		  - courseID: string (UUID)

		Returns:
		  - bool: true when the ledger row exists
		  - error: Database retrieval failures
	*/
	Has(context context.Context, userID, courseID string) (bool, error)

	/*
		Grant inserts a ledger row if absent. ON CONFLICT DO NOTHING makes
		the operation idempotent under concurrent or repeated delivery.

		Parameters:
		  - context: context.Context
		  - grant: *Entitlement (UserID, CourseID, Source)

		Returns:
		  - bool: true when a new row was inserted, false when it already existed
		  - error: Constraint or execution failures
	*/
	Grant(context context.Context, grant *Entitlement) (bool, error)

	/*
		ListByUser returns the user's library joined to course display fields,
		newest grants first.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)

		Returns:
		  - []*PurchasedCourse: Owned course entries
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]*PurchasedCourse, error)
}

// # Cross-Domain Contracts

// CourseReader is the slice of the catalogue the ledger needs for
// purchase preconditions.
type CourseReader interface {
	FindByID(context context.Context, id string) (*course.Course, error)
}
