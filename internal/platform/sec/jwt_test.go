// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/coursio/internal/platform/sec"
)

func newTestService(t *testing.T, accessTTL time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(
		"access-secret-for-tests",
		"refresh-secret-for-tests",
		"coursio-test",
		accessTTL,
		time.Hour,
	)
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_SecretGuards verifies the constructor rejects
misconfigured signing secrets.
*/
func TestNewTokenService_SecretGuards(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
		wantErr       bool
	}{
		{"distinct_secrets", "aaa", "bbb", false},
		{"empty_access", "", "bbb", true},
		{"empty_refresh", "aaa", "", true},
		{"shared_secret", "same", "same", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.accessSecret, tt.refreshSecret, "iss", time.Minute, time.Hour)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestTokenService_RoundTrip encodes a token and decodes it back, checking
every claim survives the trip.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	token, err := service.Encode("user-123", sec.RoleUser, sec.TokenKindAccess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Decode(token, sec.TokenKindAccess)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, string(sec.RoleUser), claims.Role)
	assert.Equal(t, string(sec.TokenKindAccess), claims.Kind)
	assert.Equal(t, "coursio-test", claims.Issuer)
}

/*
TestTokenService_Expiry verifies an expired token surfaces ErrTokenExpired
rather than a generic failure, since clients branch on it to refresh.
*/
func TestTokenService_Expiry(t *testing.T) {
	service := newTestService(t, -time.Minute)

	token, err := service.Encode("user-123", sec.RoleUser, sec.TokenKindAccess)
	require.NoError(t, err)

	_, err = service.Decode(token, sec.TokenKindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_KindSeparation proves a refresh token cannot pass as an
access token and vice versa. The kinds use different signing secrets, so
cross-use must fail as invalid, not expired.
*/
func TestTokenService_KindSeparation(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	refreshToken, err := service.Encode("user-123", sec.RoleUser, sec.TokenKindRefresh)
	require.NoError(t, err)
	accessToken, err := service.Encode("user-123", sec.RoleUser, sec.TokenKindAccess)
	require.NoError(t, err)

	_, err = service.Decode(refreshToken, sec.TokenKindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = service.Decode(accessToken, sec.TokenKindRefresh)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_ForgedToken verifies a token signed by a different service
instance (different secrets) is rejected outright.
*/
func TestTokenService_ForgedToken(t *testing.T) {
	service := newTestService(t, 15*time.Minute)

	other, err := sec.NewTokenService("other-access", "other-refresh", "intruder", time.Minute, time.Hour)
	require.NoError(t, err)

	forged, err := other.Encode("user-123", sec.RoleAdmin, sec.TokenKindAccess)
	require.NoError(t, err)

	_, err = service.VerifyToken(forged)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = service.VerifyToken("not-even-a-jwt")
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}
