// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/coursio/internal/platform/middleware"
	"github.com/taibuivan/coursio/internal/platform/sec"
)

// stubVerifier maps token strings to canned outcomes.
type stubVerifier struct {
	claims map[string]*sec.AuthClaims
	err    map[string]error
}

func (v *stubVerifier) VerifyToken(tokenStr string) (*sec.AuthClaims, error) {
	if err, ok := v.err[tokenStr]; ok {
		return nil, err
	}
	if claims, ok := v.claims[tokenStr]; ok {
		return claims, nil
	}
	return nil, sec.ErrTokenInvalid
}

func userClaims(role sec.UserRole) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "u-1", Role: string(role), Kind: string(sec.TokenKindAccess)}
}

// echoUser records the claims the handler observed in context.
func echoUser(observed **sec.AuthClaims) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		*observed = middleware.GetUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	}
}

/*
TestAuthenticate covers the four outcomes of the authentication chain:
anonymous pass-through, malformed header, expired token, valid token.
*/
func TestAuthenticate(t *testing.T) {
	verifier := &stubVerifier{
		claims: map[string]*sec.AuthClaims{"good": userClaims(sec.RoleUser)},
		err:    map[string]error{"stale": sec.ErrTokenExpired},
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   bool
	}{
		{"anonymous", "", http.StatusOK, false},
		{"malformed_header", "Token abc", http.StatusUnauthorized, false},
		{"forged_token", "Bearer nonsense", http.StatusUnauthorized, false},
		{"expired_token", "Bearer stale", http.StatusUnauthorized, false},
		{"valid_token", "Bearer good", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var observed *sec.AuthClaims
			handler := middleware.Authenticate(verifier)(echoUser(&observed))

			request := httptest.NewRequest(http.MethodGet, "/courses", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantUser {
				require.NotNil(t, observed)
				assert.Equal(t, "u-1", observed.UserID)
			} else {
				assert.Nil(t, observed)
			}
		})
	}
}

/*
TestAuthenticate_ExpiredCode asserts the expired-token rejection carries
the TOKEN_EXPIRED code, which clients use to decide a refresh is worth
attempting.
*/
func TestAuthenticate_ExpiredCode(t *testing.T) {
	verifier := &stubVerifier{err: map[string]error{"stale": sec.ErrTokenExpired}}
	handler := middleware.Authenticate(verifier)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run for an expired token")
	}))

	request := httptest.NewRequest(http.MethodGet, "/courses", nil)
	request.Header.Set("Authorization", "Bearer stale")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "TOKEN_EXPIRED")
}

/*
TestRequireRole verifies exact-role gating: anonymous callers get 401,
authenticated callers with another role get 403, matches pass.
*/
func TestRequireRole(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.AuthClaims{
		"admin": userClaims(sec.RoleAdmin),
		"user":  userClaims(sec.RoleUser),
	}}

	tests := []struct {
		name       string
		token      string
		required   sec.UserRole
		wantStatus int
	}{
		{"anonymous", "", sec.RoleAdmin, http.StatusUnauthorized},
		{"wrong_role", "user", sec.RoleAdmin, http.StatusForbidden},
		{"admin_on_user_surface", "admin", sec.RoleUser, http.StatusForbidden},
		{"exact_match", "admin", sec.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(http.StatusOK)
			})
			handler := middleware.Authenticate(verifier)(middleware.RequireRole(tt.required)(final))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				request.Header.Set("Authorization", "Bearer "+tt.token)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
