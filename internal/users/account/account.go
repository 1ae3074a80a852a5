// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management and the learner's course library.

It provides functionalities for users and admins to view and update their
private identity data, and for learners to browse and extend their purchased
course collection.

# Architecture

  - Domain: This package depends on the auth package for the Account entity
    and its repository; it owns no storage of its own.
  - Commerce: Library listing and direct purchase delegate to the
    entitlement ledger through the [Ledger] contract.
*/
package account

import (
	"context"

	"github.com/taibuivan/coursio/internal/commerce/entitlement"
)

// # Cross-Domain Contracts

// Ledger is the slice of the entitlement domain the profile surface needs:
// the learner's library and the direct purchase path.
type Ledger interface {

	/*
		ListPurchased returns the user's owned courses, newest grants first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*entitlement.PurchasedCourse: Library entries
		  - error: Repository failures
	*/
	ListPurchased(context context.Context, userID string) ([]*entitlement.PurchasedCourse, error)

	/*
		PurchaseDirect grants a published course to the user, rejecting
		re-purchase with a conflict.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - courseID: string

		Returns:
		  - error: NotFound, Forbidden, or Conflict per ledger rules
	*/
	PurchaseDirect(context context.Context, userID, courseID string) error
}

// # Input Types

// UpdateProfileInput defines the mutable subset of account profile fields.
// Nil pointers leave the stored value untouched.
type UpdateProfileInput struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}
