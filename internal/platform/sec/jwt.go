// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [TokenProvider] interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Kinds

// TokenKind distinguishes the two credentials the platform issues.
//
// Access and refresh tokens are signed with DIFFERENT secrets, so a token of
// one kind presented where the other is required fails signature verification
// before any claim is even inspected.
type TokenKind string

const (
	// TokenKindAccess is the short-lived bearer credential for API calls.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is the long-lived credential used only to mint new access tokens.
	TokenKindRefresh TokenKind = "refresh"
)

// # Decode Failures

var (
	// ErrTokenExpired marks a structurally valid token past its expiry.
	// Clients receiving this on an access token should attempt a refresh.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid marks any signature or structure mismatch.
	// This is a hard authentication failure with no recovery path.
	ErrTokenInvalid = errors.New("sec: token malformed or forged")
)

// AuthClaims represents the payload embedded inside a signed token.
//
// # Why custom claims?
//
// By embedding the UserID and Role directly inside the JWT, the
// [middleware.Authenticate] chain can reconstruct the active user context
// WITHOUT querying the database on every single API request. The flip side
// is an explicit trust boundary: a role change only takes effect once the
// tokens are re-issued.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Role   string `json:"rol"`
	Kind   string `json:"knd"`
}

// TokenService handles generation and verification of JWT tokens using HS256
// with kind-specific secrets and TTLs.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenService creates a new TokenService.
//
// The two secrets MUST differ: sharing one secret would collapse the
// access/refresh separation and let a refresh token pass as an access token.
func NewTokenService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: signing secrets must not be empty")
	}

	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("sec: access and refresh secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}, nil
}

// Encode mints a signed token of the given kind for a user.
func (service *TokenService) Encode(userID string, role UserRole, kind TokenKind) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl(kind))),
		},
		UserID: userID,
		Role:   string(role),
		Kind:   string(kind),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret(kind))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Decode verifies the signature and validity of a token of the expected kind.
//
// # Failure Modes
//   - [ErrTokenExpired]: valid signature, past expiry.
//   - [ErrTokenInvalid]: anything else (forged, malformed, wrong kind).
func (service *TokenService) Decode(tokenString string, kind TokenKind) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret(kind), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// Kind claim double-check. The secret split already rejects cross-use,
	// this only guards against secret misconfiguration.
	if claims.Kind != string(kind) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyToken checks an ACCESS token string and returns its claims.
//
// It satisfies the [middleware.TokenVerifier] contract used by the request
// authentication chain.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	return service.Decode(tokenString, TokenKindAccess)
}

// AccessTokenTTL exposes the configured access token lifetime.
func (service *TokenService) AccessTokenTTL() time.Duration {
	return service.accessTTL
}

// secret maps a token kind to its signing secret.
func (service *TokenService) secret(kind TokenKind) []byte {
	if kind == TokenKindRefresh {
		return service.refreshSecret
	}
	return service.accessSecret
}

// ttl maps a token kind to its configured lifetime.
func (service *TokenService) ttl(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return service.refreshTTL
	}
	return service.accessTTL
}
