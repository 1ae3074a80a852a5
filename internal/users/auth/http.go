// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle, from account
creation to token refresh, mounted once per role namespace (/admins and
/users share this handler with a different role argument).

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Orchestrates the paired-JWT session (access + refresh in the body).
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/coursio/internal/platform/middleware"
	requestutil "github.com/taibuivan/coursio/internal/platform/request"
	"github.com/taibuivan/coursio/internal/platform/respond"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the account lifecycle entry points (Registration,
// Login, Refresh, Password change) for whichever role namespace it is
// mounted under.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Register mounts the authentication routes for one role namespace.
//
// # Endpoints
//   - POST /register        : Creates a new account in the namespace.
//   - POST /login           : Authenticates and returns a token pair.
//   - POST /refresh-token   : Exchanges a refresh token for a new access token.
//   - POST /change-password : Rotates the password (authenticated).
func (handler *Handler) Register(router chi.Router, role sec.UserRole) {

	// Public endpoints
	router.Post("/register", handler.register(role))
	router.Post("/login", handler.login(role))
	router.Post("/refresh-token", handler.refresh(role))

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(role))
		r.Post("/change-password", handler.changePassword)
	})
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
register handles the creation of a new account in the mounted namespace.

POST /api/v1/{admins|users}/register

Description: Validates input and persists a new account, then issues the
first token pair so the client is signed in immediately.

Request:
  - Body: registerRequest (Name, Email, Password)

Response:
  - 201: Session: Created account (keyed by role) plus token pair
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already registered in this namespace
*/
func (handler *Handler) register(role sec.UserRole) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var input registerRequest

		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}

		validator := &validate.Validator{}
		validator.Required(FieldName, input.Name).
			MaxLen(FieldName, input.Name, NameMaxLength).
			Required(FieldEmail, input.Email).
			Email(FieldEmail, input.Email).
			Required(FieldPassword, input.Password).
			MinLen(FieldPassword, input.Password, PasswordMinLength)

		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}

		session, err := handler.authService.Register(request.Context(), RegisterInput{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
			Role:     role,
		})

		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.Created(writer, sessionPayload(session, role))
	}
}

/*
login authenticates an account and issues a token pair.

POST /api/v1/{admins|users}/login

Description: Verifies credentials within the namespace and mints a stateless
session. Unknown email and wrong password produce the same response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Account (keyed by role) plus token pair
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(role sec.UserRole) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var input loginRequest

		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}

		validator := &validate.Validator{}
		validator.Required(FieldEmail, input.Email)
		validator.Required(FieldPassword, input.Password)

		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}

		session, err := handler.authService.Login(request.Context(), LoginInput{
			Email:    input.Email,
			Password: input.Password,
			Role:     role,
		})
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, sessionPayload(session, role))
	}
}

/*
refresh issues a new access token using a valid refresh token.

POST /api/v1/{admins|users}/refresh-token

Description: Validates the refresh token from the request body and issues a
fresh access token. The refresh token itself is not rotated. The token must
belong to an account in the mounted namespace: a user's refresh token posted
to /admins/refresh-token is rejected.

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing, expired, forged, or cross-namespace refresh token
*/
func (handler *Handler) refresh(role sec.UserRole) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var input refreshRequest

		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}

		refreshed, err := handler.authService.Refresh(request.Context(), input.RefreshToken, role)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, map[string]any{
			FieldAccessToken: refreshed.AccessToken,
			FieldTokenType:   "Bearer",
			FieldExpiresIn:   refreshed.ExpiresIn / time.Second,
		})
	}
}

/*
changePassword updates the authenticated account's password.

POST /api/v1/{admins|users}/change-password

Description: Verifies the current password before applying a new one.
Existing tokens stay valid until expiry.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Current password incorrect or not authenticated
  - 400: ErrInvalidJSON: Weak password or validation failure
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLength)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		claims.UserID,
		input.CurrentPassword,
		input.NewPassword,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

// sessionPayload keys the account by its role name ("admin" or "user") to
// match what the web clients expect from each namespace.
func sessionPayload(session *AuthSession, role sec.UserRole) map[string]any {
	return map[string]any{
		string(role):      session.Account,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    session.ExpiresIn / time.Second,
	}
}
