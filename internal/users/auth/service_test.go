// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/internal/users/auth"
)

// memoryAccountRepository is an in-memory AccountRepository mimicking the
// database's (email, role) uniqueness constraint.
type memoryAccountRepository struct {
	accounts map[string]*auth.Account // keyed by ID
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{accounts: map[string]*auth.Account{}}
}

func (r *memoryAccountRepository) FindByID(_ context.Context, id string) (*auth.Account, error) {
	if account, ok := r.accounts[id]; ok {
		return account, nil
	}
	return nil, apperr.NotFound("account")
}

func (r *memoryAccountRepository) FindByEmailAndRole(_ context.Context, email string, role sec.UserRole) (*auth.Account, error) {
	for _, account := range r.accounts {
		if account.Email == email && account.Role == role {
			return account, nil
		}
	}
	return nil, apperr.NotFound("account")
}

func (r *memoryAccountRepository) Create(_ context.Context, account *auth.Account) error {
	for _, existing := range r.accounts {
		if existing.Email == account.Email && existing.Role == account.Role {
			return apperr.Conflict("duplicate")
		}
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memoryAccountRepository) Update(_ context.Context, account *auth.Account) error {
	if _, ok := r.accounts[account.ID]; !ok {
		return apperr.NotFound("account")
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memoryAccountRepository) UpdatePassword(_ context.Context, accountID, newHash string) error {
	account, ok := r.accounts[accountID]
	if !ok {
		return apperr.NotFound("account")
	}
	account.PasswordHash = newHash
	return nil
}

func (r *memoryAccountRepository) TouchLastAuthenticated(_ context.Context, accountID string) error {
	if account, ok := r.accounts[accountID]; ok {
		now := time.Now()
		account.LastAuthenticatedAt = &now
	}
	return nil
}

func newAuthService(t *testing.T) (*auth.Service, *memoryAccountRepository) {
	t.Helper()
	tokens, err := sec.NewTokenService("test-access", "test-refresh", "coursio-test", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	repository := newMemoryAccountRepository()
	return auth.NewService(repository, tokens), repository
}

/*
TestService_RegisterThenLogin walks the happy path: an enrolled account can
immediately authenticate with the same credentials, and the issued pair
contains distinct access and refresh tokens.
*/
func TestService_RegisterThenLogin(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	session, err := service.Register(ctx, auth.RegisterInput{
		Name:     "Tai",
		Email:    "Tai@Coursio.com",
		Password: "s3cret-pass",
		Role:     sec.RoleUser,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.NotEqual(t, session.AccessToken, session.RefreshToken)
	assert.NotEmpty(t, session.Account.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", session.Account.PasswordHash)

	// Email lookup is case-insensitive: registration normalized it.
	login, err := service.Login(ctx, auth.LoginInput{
		Email:    "tai@coursio.com",
		Password: "s3cret-pass",
		Role:     sec.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, session.Account.ID, login.Account.ID)
}

/*
TestService_Register_DuplicateEmail verifies the (email, role) uniqueness:
same email twice in one namespace conflicts, but the same email in the
other role namespace registers fine.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	input := auth.RegisterInput{Name: "Tai", Email: "tai@coursio.com", Password: "s3cret-pass", Role: sec.RoleUser}
	_, err := service.Register(ctx, input)
	require.NoError(t, err)

	_, err = service.Register(ctx, input)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)

	input.Role = sec.RoleAdmin
	_, err = service.Register(ctx, input)
	assert.NoError(t, err)
}

/*
TestService_Login_Failures ensures wrong password, unknown email, and a
cross-namespace attempt all return the SAME generic unauthorized message,
so responses cannot be used to enumerate accounts.
*/
func TestService_Login_Failures(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{
		Name: "Tai", Email: "tai@coursio.com", Password: "s3cret-pass", Role: sec.RoleUser,
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input auth.LoginInput
	}{
		{"wrong_password", auth.LoginInput{Email: "tai@coursio.com", Password: "wrong", Role: sec.RoleUser}},
		{"unknown_email", auth.LoginInput{Email: "ghost@coursio.com", Password: "s3cret-pass", Role: sec.RoleUser}},
		{"wrong_namespace", auth.LoginInput{Email: "tai@coursio.com", Password: "s3cret-pass", Role: sec.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(ctx, tt.input)
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "UNAUTHORIZED", ae.Code)
			assert.Equal(t, "Invalid login credentials", ae.Message)
		})
	}
}

/*
TestService_Refresh covers the refresh exchange: a valid refresh token
mints a new access token, while an access token presented as a refresh
token, garbage, and a deleted account are all rejected.
*/
func TestService_Refresh(t *testing.T) {
	service, repository := newAuthService(t)
	ctx := context.Background()

	session, err := service.Register(ctx, auth.RegisterInput{
		Name: "Tai", Email: "tai@coursio.com", Password: "s3cret-pass", Role: sec.RoleUser,
	})
	require.NoError(t, err)

	refreshed, err := service.Refresh(ctx, session.RefreshToken, sec.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, 15*time.Minute, refreshed.ExpiresIn)

	_, err = service.Refresh(ctx, session.AccessToken, sec.RoleUser)
	assert.Error(t, err, "access token must not work as a refresh token")

	_, err = service.Refresh(ctx, "garbage", sec.RoleUser)
	assert.Error(t, err)

	// Namespaces stay disjoint at refresh time too: a user's refresh token
	// is rejected on the admin surface.
	_, err = service.Refresh(ctx, session.RefreshToken, sec.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Deleting the account invalidates refresh even though the token is
	// cryptographically valid.
	delete(repository.accounts, session.Account.ID)
	_, err = service.Refresh(ctx, session.RefreshToken, sec.RoleUser)
	assert.Error(t, err)
}

/*
TestService_ChangePassword requires re-proof of the current password and
makes the new one effective for subsequent logins.
*/
func TestService_ChangePassword(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	session, err := service.Register(ctx, auth.RegisterInput{
		Name: "Tai", Email: "tai@coursio.com", Password: "old-pass-123", Role: sec.RoleUser,
	})
	require.NoError(t, err)
	accountID := session.Account.ID

	err = service.ChangePassword(ctx, accountID, "wrong", "new-pass-456")
	require.Error(t, err)

	err = service.ChangePassword(ctx, accountID, "old-pass-123", "new-pass-456")
	require.NoError(t, err)

	_, err = service.Login(ctx, auth.LoginInput{Email: "tai@coursio.com", Password: "old-pass-123", Role: sec.RoleUser})
	assert.Error(t, err)

	_, err = service.Login(ctx, auth.LoginInput{Email: "tai@coursio.com", Password: "new-pass-456", Role: sec.RoleUser})
	assert.NoError(t, err)
}
