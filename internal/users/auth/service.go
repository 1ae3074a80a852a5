// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from account registration and secure password hashing to
the stateless session lifecycle built on paired JWTs (access + refresh).

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh).
  - Repository: Abstracted interface for Postgres (Accounts).
  - Security: Leverages Bcrypt hashing and HS256-signed JWTs with
    kind-specific secrets.

Sessions are fully stateless: nothing is stored server-side per login, and a
refresh token stays valid until its own expiry (no rotation, no revocation).
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/ctxutil"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the contract for minting and verifying session tokens.
type TokenIssuer interface {
	// Encode creates a signed token of the given kind for the account.
	Encode(userID string, role sec.UserRole, kind sec.TokenKind) (string, error)

	// Decode verifies a token of the expected kind and returns its claims.
	Decode(tokenString string, kind sec.TokenKind) (*sec.AuthClaims, error)

	// AccessTokenTTL reports the configured access token lifetime.
	AccessTokenTTL() time.Duration
}

// Service implements identity and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	accountRepository AccountRepository
	tokenIssuer       TokenIssuer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(accountRepo AccountRepository, tokenIssuer TokenIssuer) *Service {
	return &Service{
		accountRepository: accountRepo,
		tokenIssuer:       tokenIssuer,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     sec.UserRole
}

// AuthSession represents a successfully established stateless session.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	Account      *Account
}

/*
Register validates, hashes, and persists a brand new account.

Description: Enrolls a new identity into the role namespace given by
input.Role, handling password hashing and immediate token issuance.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthSession: Created account plus its first token pair
  - err: Conflict (if email+role exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*AuthSession, error) {

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Account entity. Time-sortable ID to prevent PG index fragmentation.
	account := &Account{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        normalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		Role:         input.Role,
	}

	// Persist the account. Uniqueness of (email, role) is enforced by the
	// database constraint, so the race between check and insert never exists.
	if err := service.accountRepository.Create(context, account); err != nil {
		if conflicted := apperr.As(err); conflicted != nil && conflicted.Code == "CONFLICT" {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return service.issueSession(account)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Role     sec.UserRole
}

/*
Login validates credentials and issues a fresh token pair.

Description: Verifies identity within the requested role namespace, performs
constant-time password comparison, and mints a stateless session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *AuthSession: Transport-ready session credentials
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*AuthSession, error) {
	account, err := service.accountRepository.FindByEmailAndRole(context, normalizeEmail(input.Email), input.Role)

	// If (err != nil) the account does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Advisory timestamp. Failures are logged but never block the login.
	service.touchLastAuthenticated(context, account.ID)

	return service.issueSession(account)
}

// # Session Management

// TokenRefresh holds a freshly minted access token.
type TokenRefresh struct {
	AccessToken string
	ExpiresIn   time.Duration
}

/*
Refresh exchanges a valid refresh token for a new access token.

Description: Verifies the refresh token signature and expiry, confirms the
account still exists in the namespace the endpoint is mounted under, and
mints a new access token. The refresh token itself is NOT rotated: it stays
valid until its own expiry.

Parameters:
  - context: context.Context
  - refreshToken: string
  - role: sec.UserRole (The namespace the refresh endpoint serves)

Returns:
  - *TokenRefresh: New access credentials
  - err: Unauthorized (missing, expired, forged, or cross-namespace token) or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string, role sec.UserRole) (*TokenRefresh, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperr.Unauthorized("Missing refresh token")
	}

	claims, err := service.tokenIssuer.Decode(refreshToken, sec.TokenKindRefresh)
	if err != nil {
		// Expired and forged collapse to one message: a refresh failure always
		// means the client must log in again.
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// The account must still exist. Deleted accounts lose refresh ability
	// even while their tokens are cryptographically valid.
	account, err := service.accountRepository.FindByID(context, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Namespaces are disjoint: a token minted under /users does not refresh
	// under /admins, even though no privilege could leak either way.
	if account.Role != role {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Role comes from the stored account, not the old claims, so a future
	// role migration propagates at refresh time.
	accessToken, err := service.tokenIssuer.Encode(account.ID, account.Role, sec.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_generation_failed: %w", err)
	}

	service.touchLastAuthenticated(context, account.ID)

	return &TokenRefresh{
		AccessToken: accessToken,
		ExpiresIn:   service.tokenIssuer.AccessTokenTTL(),
	}, nil
}

// # Credential Maintenance

/*
ChangePassword allows an authenticated account to update its credentials.

Description: Requires re-proof of the current password before applying the
new hash. Existing tokens stay valid until expiry (stateless sessions).

Parameters:
  - context: context.Context
  - accountID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, accountID, currentPassword, newPassword string) error {

	// Fetch account by ID
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, account.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.accountRepository.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

// # Internal Helpers

// issueSession mints the access/refresh pair for an account.
func (service *Service) issueSession(account *Account) (*AuthSession, error) {
	accessToken, err := service.tokenIssuer.Encode(account.ID, account.Role, sec.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenIssuer.Encode(account.ID, account.Role, sec.TokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &AuthSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    service.tokenIssuer.AccessTokenTTL(),
		Account:      account,
	}, nil
}

// touchLastAuthenticated stamps the advisory login timestamp without ever
// failing the calling operation.
func (service *Service) touchLastAuthenticated(context context.Context, accountID string) {
	if err := service.accountRepository.TouchLastAuthenticated(context, accountID); err != nil {
		ctxutil.GetLogger(context).Warn("auth_touch_last_authenticated_failed",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}
}

// normalizeEmail lowercases and trims the address so uniqueness is
// case-insensitive at the application boundary.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
