// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the identity storage layer.
//
// # Architecture
//
// Repositories here are strictly separated from domain logic. They implement
// domain-defined interfaces (e.g., [AccountRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or SQLSTATE 23505) are mapped
// to domain-friendly [apperr.AppError] types via [dberr.Wrap] to avoid
// leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/dberr"
	"github.com/taibuivan/coursio/internal/platform/sec"
)

// # Account Repository

// accountColumns is the canonical projection shared by all lookups.
const accountColumns = `
	id, name, email, passwordhash, role, bio, avatarurl,
	lastauthenticatedat, createdat, updatedat`

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
Create persists a new account record into the users.account table.

Description: Persists account identity, relying on the UNIQUE(email, role)
constraint to reject duplicates atomically.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: Conflict on duplicate (email, role), or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, name, email, passwordhash, role, bio, avatarurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Bio,
		account.AvatarURL,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "account_create")
	}

	return nil
}

/*
FindByEmailAndRole retrieves an account by email within a role namespace.

Description: The composite lookup mirrors the UNIQUE(email, role) constraint,
so the same address can resolve to different identities per namespace.

Parameters:
  - context: context.Context
  - email: string (lowercased by the caller)
  - role: sec.UserRole

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmailAndRole(context context.Context, email string, role sec.UserRole) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE email = $1 AND role = $2`

	return repository.scanOne(repository.pool.QueryRow(context, query, email, role), "Account")
}

/*
FindByID retrieves an account by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(context, query, id), "Account")
}

/*
Update persists changes to an account's mutable profile fields.

Description: Synchronizes name, bio, and avatar with the database,
refreshing the updatedat timestamp. Email and role are immutable.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, account *Account) error {
	const query = `
		UPDATE users.account
		SET name = $2, bio = $3, avatarurl = $4, updatedat = $5
		WHERE id = $1`

	account.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Name,
		account.Bio,
		account.AvatarURL,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "account_update")
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific account.

Parameters:
  - context: context.Context
  - accountID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, accountID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, accountID, newHash, time.Now())
	if err != nil {
		return dberr.Wrap(err, "account_update_password")
	}

	return nil
}

/*
TouchLastAuthenticated stamps the advisory authentication timestamp.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Execution errors (treated as advisory by callers)
*/
func (repository *PostgresAccountRepository) TouchLastAuthenticated(context context.Context, accountID string) error {
	const query = "UPDATE users.account SET lastauthenticatedat = NOW() WHERE id = $1"
	_, err := repository.pool.Exec(context, query, accountID)
	if err != nil {
		return dberr.Wrap(err, "account_touch_last_authenticated")
	}
	return nil
}

// scanOne hydrates a single account row.
func (repository *PostgresAccountRepository) scanOne(row pgx.Row, resource string) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Bio,
		&account.AvatarURL,
		&account.LastAuthenticatedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(resource)
		}
		return nil, dberr.Wrap(err, "account_scan")
	}

	return account, nil
}
