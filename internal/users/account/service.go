// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"

	"github.com/taibuivan/coursio/internal/commerce/entitlement"
	"github.com/taibuivan/coursio/internal/platform/validate"
	"github.com/taibuivan/coursio/internal/users/auth"
	"github.com/taibuivan/coursio/pkg/pointer"
)

// # Service Layer

// Service orchestrates business logic for profiles and the learner library.
type Service struct {
	accountRepo auth.AccountRepository
	ledger      Ledger
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo auth.AccountRepository, ledger Ledger, logger *slog.Logger) *Service {
	return &Service{
		accountRepo: accountRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of an account.

Parameters:
  - context: context.Context
  - accountID: string (The authenticated subject)

Returns:
  - *auth.Account: The hydrated profile
  - error: NotFound or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (*auth.Account, error) {
	return service.accountRepo.FindByID(context, accountID)
}

/*
UpdateProfile applies a partial set of changes to an account's profile.

Description: Fetches the existing account state, overlays the provided
fields, and synchronizes the change to persistent storage. Email, role,
and credentials are never touched here; credentials move only through
the auth change-password flow.

Parameters:
  - context: context.Context
  - accountID: string (The authenticated subject)
  - input: UpdateProfileInput (Nil pointers preserve stored values)

Returns:
  - *auth.Account: The updated profile
  - error: Validation or persistence failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateProfileInput) (*auth.Account, error) {

	account, err := service.accountRepo.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	// Field overlay with validation
	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(auth.FieldName, *input.Name).MaxLen(auth.FieldName, *input.Name, auth.NameMaxLength)
	}
	account.Name = pointer.Fallback(input.Name, account.Name)
	account.Bio = pointer.Fallback(input.Bio, account.Bio)
	account.AvatarURL = pointer.Fallback(input.AvatarURL, account.AvatarURL)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.accountRepo.Update(context, account); err != nil {
		return nil, err
	}

	service.logger.Info("profile_updated", slog.String("account_id", accountID))

	return account, nil
}

// # Learner Library

/*
ListPurchasedCourses returns the learner's owned courses.

Parameters:
  - context: context.Context
  - userID: string (The authenticated learner)

Returns:
  - []*entitlement.PurchasedCourse: Library entries, newest grants first
  - error: Ledger failures
*/
func (service *Service) ListPurchasedCourses(context context.Context, userID string) ([]*entitlement.PurchasedCourse, error) {
	return service.ledger.ListPurchased(context, userID)
}

/*
PurchaseCourse grants a course to the learner outside the checkout flow.

Parameters:
  - context: context.Context
  - userID: string (The authenticated learner)
  - courseID: string (UUID)

Returns:
  - error: NotFound, Forbidden, or Conflict per ledger rules
*/
func (service *Service) PurchaseCourse(context context.Context, userID, courseID string) error {
	return service.ledger.PurchaseDirect(context, userID, courseID)
}
