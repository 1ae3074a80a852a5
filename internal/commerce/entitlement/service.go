// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"
	"log/slog"

	"github.com/taibuivan/coursio/internal/platform/apperr"
)

// # Service Layer

// Service orchestrates the business logic for the ownership ledger.
// It is the only writer of entitlement rows in the system.
type Service struct {
	ledgerRepo EntitlementRepository
	catalog    CourseReader
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(ledgerRepo EntitlementRepository, catalog CourseReader, logger *slog.Logger) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		catalog:    catalog,
		logger:     logger,
	}
}

// # Access Checks

/*
Has reports whether a user owns a course.

Description: This is the access check the catalogue and payment domains
depend on; it satisfies course.PurchaseChecker.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - courseID: string (UUID)

Returns:
  - bool: Ownership state
  - error: Repository failures
*/
func (service *Service) Has(context context.Context, userID, courseID string) (bool, error) {
	return service.ledgerRepo.Has(context, userID, courseID)
}

// # Grants

/*
Grant records ownership idempotently.

Description: Called by payment fulfillment. Granting an entitlement the
user already holds converges silently, so webhook redelivery and
concurrent fulfillment of the same purchase are harmless.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - courseID: string (UUID)
  - source: Source (How the entitlement was obtained)

Returns:
  - error: Repository failures
*/
func (service *Service) Grant(context context.Context, userID, courseID string, source Source) error {

	inserted, err := service.ledgerRepo.Grant(context, &Entitlement{
		UserID:   userID,
		CourseID: courseID,
		Source:   source,
	})
	if err != nil {
		return err
	}

	if inserted {
		service.logger.Info("entitlement_granted",
			slog.String("user_id", userID),
			slog.String("course_id", courseID),
			slog.String("source", string(source)),
		)
	}

	return nil
}

/*
PurchaseDirect grants a course to a user outside the checkout flow.

Description: Backs the storefront's direct purchase endpoint. Unlike the
silent fulfillment path, a user explicitly re-buying a course they own
is a client error and surfaces as a 409 Conflict. Only published courses
can be purchased.

Parameters:
  - context: context.Context
  - userID: string (The purchasing user)
  - courseID: string (UUID)

Returns:
  - error: NotFound for unknown courses, Forbidden for drafts,
    Conflict when already owned
*/
func (service *Service) PurchaseDirect(context context.Context, userID, courseID string) error {

	// Course precondition
	target, err := service.catalog.FindByID(context, courseID)
	if err != nil {
		return err
	}
	if !target.Published {
		return apperr.Forbidden("Course is not published")
	}

	inserted, err := service.ledgerRepo.Grant(context, &Entitlement{
		UserID:   userID,
		CourseID: courseID,
		Source:   SourceDirect,
	})
	if err != nil {
		return err
	}

	// Explicit re-purchase is a client error, not a silent no-op
	if !inserted {
		return apperr.Conflict("You already purchased this course")
	}

	service.logger.Info("entitlement_granted",
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
		slog.String("source", string(SourceDirect)),
	)

	return nil
}

// # Library

/*
ListPurchased returns the user's owned courses, newest first.

Parameters:
  - context: context.Context
  - userID: string (UUID)

Returns:
  - []*PurchasedCourse: Library entries
  - error: Repository failures
*/
func (service *Service) ListPurchased(context context.Context, userID string) ([]*PurchasedCourse, error) {
	return service.ledgerRepo.ListByUser(context, userID)
}
