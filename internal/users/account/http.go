// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides the HTTP delivery layer for profiles and the
learner's course library.

The same handler serves both credential namespaces: it is mounted once
under /admins and once under /users, each gated to exactly that role.
The library endpoints only exist on the learner mount.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/coursio/internal/platform/middleware"
	requestutil "github.com/taibuivan/coursio/internal/platform/request"
	"github.com/taibuivan/coursio/internal/platform/respond"
	"github.com/taibuivan/coursio/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for profile and library management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Register mounts the profile endpoints on the given namespace router,
// gated to exactly the given role. For the learner namespace it
// additionally mounts the library endpoints.
func (handler *Handler) Register(router chi.Router, role sec.UserRole) {
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireRole(role))

		protected.Get("/profile", handler.getProfile)
		protected.Put("/profile", handler.updateProfile)

		// Library surface exists only for learners
		if role == sec.RoleUser {
			protected.Get("/courses", handler.listPurchasedCourses)
			protected.Post("/courses/{courseID}/purchase", handler.purchaseCourse)
		}
	})
}

// # Profile Endpoints

/*
GET /api/v1/{admins|users}/profile.

Description: Returns the authenticated account's private profile.

Response:
  - 200: Account: The profile
  - 401: 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// updateProfileRequest defines the inbound JSON schema for profile updates.
// Pointer fields distinguish "leave unchanged" from "clear".
type updateProfileRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

/*
PUT /api/v1/{admins|users}/profile.

Description: Applies partial updates to the authenticated account's
profile. Omitted fields are preserved.

Request (Body):
  - updateProfileRequest: JSON object

Response:
  - 200: Account: The updated profile
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), accountID, UpdateProfileInput{
		Name:      input.Name,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Library Endpoints

/*
GET /api/v1/users/courses.

Description: Returns the learner's purchased courses, newest first.

Response:
  - 200: []PurchasedCourse: The library
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Non-learner token
*/
func (handler *Handler) listPurchasedCourses(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	purchased, err := handler.accountService.ListPurchasedCourses(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, purchased)
}

/*
POST /api/v1/users/courses/{courseID}/purchase.

Description: Grants a published course directly to the learner.
Re-purchasing an owned course is a conflict.

Request:
  - courseID: string (UUID)

Response:
  - 201: {course_id}: Grant confirmation
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Draft course
  - 404: 404: ErrNotFound: Course not found
  - 409: 409: ErrConflict: Course already owned
*/
func (handler *Handler) purchaseCourse(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID := requestutil.ID(request, "courseID")

	if err := handler.accountService.PurchaseCourse(request.Context(), userID, courseID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"course_id": courseID})
}
