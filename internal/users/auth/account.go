// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (Account) and logic for authentication,
authorization, and account lifecycle across the two credential namespaces
(admin and learner).

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/taibuivan/coursio/internal/platform/sec"
)

// # Domain Entities

// Account represents a registered identity on the Coursio platform.
//
// Admin and learner accounts share this shape but live in disjoint
// namespaces: the same email may exist once per role, and credentials
// issued for one role never work on the other's surface.
type Account struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	PasswordHash        string       `json:"-"` // Explicitly omitted from JSON for security.
	Role                sec.UserRole `json:"role"`
	Bio                 string       `json:"bio,omitempty"`
	AvatarURL           string       `json:"avatar_url,omitempty"`
	LastAuthenticatedAt *time.Time   `json:"last_authenticated_at,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldRefreshToken    = "refresh_token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldMessage         = "message"
)
