// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import "context"

// # Course Data Access

// CourseRepository defines the data access contract for the course domain.
type CourseRepository interface {

	/*
		List returns a filtered, paginated slice of courses and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Criteria for category, level, search, price, etc.)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Course: Slice of matching course records
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Course, int, error)

	/*
		FindByID returns the course with the given ID, hydrated with
		chapters and reviews.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Course: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Course, error)

	/*
		FindBySlug returns the course matching the unique SEO identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Course: The hydrated domain entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Course, error)

	/*
		Create persists a new course and its chapter list atomically.

		Parameters:
		  - context: context.Context
		  - course: *Course (Metadata, pricing, and initial chapter set)

		Returns:
		  - error: Storage or constraint failures
	*/
	Create(context context.Context, course *Course) error

	/*
		Update persists changes to an existing course's mutable fields.
		A non-nil Chapters slice fully replaces the stored curriculum.

		Parameters:
		  - context: context.Context
		  - course: *Course (Target ID and modified attributes)
		  - published: *bool (Tri-state publication toggle; nil leaves it unchanged)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	Update(context context.Context, course *Course, published *bool) error

	/*
		Delete removes a course and its dependent rows permanently.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: ErrNotFound if missing
	*/
	Delete(context context.Context, id string) error

	// # Reviews

	/*
		UpsertReview writes a review and adjusts the parent course's
		(rating, numberofreviews) accumulators in a single SQL statement,
		so concurrent writers never lose each other's contribution.

		Parameters:
		  - context: context.Context
		  - review: *Review (CourseID, UserID, Stars, Comment)

		Returns:
		  - error: ErrNotFound if the course is missing
	*/
	UpsertReview(context context.Context, review *Review) error

	/*
		ListReviews returns all reviews for a course, newest first,
		with reviewer names denormalized for display.

		Parameters:
		  - context: context.Context
		  - courseID: string (UUID)

		Returns:
		  - []*Review: Review collection
		  - error: Retrieval failures
	*/
	ListReviews(context context.Context, courseID string) ([]*Review, error)

	// # Instructor Analytics

	/*
		Analytics returns the enrollment, revenue, and rating metrics
		for a single course.

		Parameters:
		  - context: context.Context
		  - courseID: string (UUID)

		Returns:
		  - *Analytics: Aggregated dashboard metrics
		  - error: ErrNotFound if the course is missing
	*/
	Analytics(context context.Context, courseID string) (*Analytics, error)
}

// # Cross-Domain Contracts

// PurchaseChecker reports whether a user holds an entitlement for a course.
// Implemented by the commerce ledger; reviews are gated on it.
type PurchaseChecker interface {
	Has(context context.Context, userID, courseID string) (bool, error)
}
