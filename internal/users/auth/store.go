// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/coursio/internal/platform/sec"
)

// # Account Data Access

// AccountRepository defines the data access contract for identity accounts.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmailAndRole returns the account registered under the given
		email within the given role namespace.

		The email is expected to be lowercased by the caller.

		Parameters:
		  - context: context.Context
		  - email: string
		  - role: sec.UserRole

		Returns:
		  - *Account: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmailAndRole(context context.Context, email string, role sec.UserRole) (*Account, error)

	/*
		Create persists a brand-new account to the storage.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Persistence failures (Conflict on duplicate email+role)
	*/
	Create(context context.Context, account *Account) error

	/*
		Update persists changes to mutable profile fields (name, bio, avatar).

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, account *Account) error

	/*
		UpdatePassword replaces only the account's password hash.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, accountID, newHash string) error

	/*
		TouchLastAuthenticated stamps the account's lastauthenticatedat.

		Callers treat failures as advisory: a broken timestamp must never
		block a login or refresh.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: Persistence failures
	*/
	TouchLastAuthenticated(context context.Context, accountID string) error
}
