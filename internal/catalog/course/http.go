// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package course provides the HTTP interface for discovery and management of the catalogue.

It exposes endpoints for browsing courses, managing curriculum by instructors,
and recording purchaser reviews.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /courses).
  - Restricted (v1): Mutative endpoints requiring the Admin role (POST, PUT, DELETE).
  - Purchaser (v1): Review submission requiring the User role plus an entitlement.

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package course

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/coursio/internal/platform/constants"
	"github.com/taibuivan/coursio/internal/platform/middleware"
	requestutil "github.com/taibuivan/coursio/internal/platform/request"
	"github.com/taibuivan/coursio/internal/platform/respond"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/internal/platform/validate"
	"github.com/taibuivan/coursio/pkg/convert"
	"github.com/taibuivan/coursio/pkg/pagination"
	"github.com/taibuivan/coursio/pkg/query"
	"github.com/taibuivan/coursio/pkg/slice"
)

// # Handler Implementation

// Handler implements the HTTP layer for course management and discovery.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
	images  *ImageStore
}

// NewHandler constructs a new course [Handler] with its dependencies.
func NewHandler(service *Service, images *ImageStore) *Handler {
	return &Handler{service: service, images: images}
}

// Routes returns a [chi.Router] configured with the course domain's endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Accessible by all visitors for browsing.
//   - Management (Restricted): Requires [sec.RoleAdmin] for state-mutating operations.
//   - Reviews (Purchaser): Requires [sec.RoleUser]; the entitlement gate lives in the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listCourses)

	// ## Instructor Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/admin/all", handler.listInstructorCourses)
		admin.Get("/admin/{courseID}/analytics", handler.courseAnalytics)

		admin.Post("/", handler.createCourse)
		admin.Put("/{courseID}", handler.updateCourse)
		admin.Delete("/{courseID}", handler.deleteCourse)
	})

	// ## Purchaser Reviews (User Protected)
	router.Group(func(user chi.Router) {
		user.Use(middleware.RequireRole(sec.RoleUser))

		user.Post("/{courseID}/reviews", handler.addReview)
	})

	// Param route registered last so /admin/* wins on literal match
	router.Get("/{identifier}", handler.getCourse)

	return router
}

// # Discovery Endpoints

/*
GET /api/v1/courses.

Description: Retrieves a paginated list of published courses. Admin viewers
may request drafts with unpublished=true. Supports filtering by category,
level, tags, price range, and keyword search.

Request:
  - q: string (Title/description search)
  - category: []string (development, business, design, ...)
  - level: []string (beginner, intermediate, advanced, all-levels)
  - tags: string (Comma-separated list)
  - price_min: int (cents)
  - price_max: int (cents)
  - sort: string (field:asc|desc, e.g. price:asc; default created:desc)
  - unpublished: bool (Admin only)
  - limit: int
  - page: int

Response:
  - 200: []Course: Paginated list of courses
*/
func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:              queryParams.Get("q"),
		Category:           parseCategorySlice(queryParams["category"]),
		Level:              parseLevelSlice(queryParams["level"]),
		Tags:               query.StringSlice(queryParams.Get("tags")),
		IncludeUnpublished: convert.ToBool(queryParams.Get("unpublished")),
	}
	filter.Sort, filter.SortDir = parseSortParam(queryParams.Get("sort"))

	if cents, err := strconv.ParseInt(queryParams.Get("price_min"), 10, 64); err == nil {
		filter.PriceMinCents = &cents
	}
	if cents, err := strconv.ParseInt(queryParams.Get("price_max"), 10, 64); err == nil {
		filter.PriceMaxCents = &cents
	}

	viewer := requestutil.Claims(request)
	courses, total, err := handler.service.ListCourses(request.Context(), viewer, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, courses, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/courses/{identifier}.

Description: Retrieves detailed metadata for a course (chapters and reviews
included) using either its UUID or unique title slug. Unpublished courses
are only visible to their instructor or any admin.

Request:
  - identifier: string (UUID or Slug)

Response:
  - 200: Course: Success
  - 403: 403: ErrForbidden: Draft hidden from the viewer
  - 404: 404: ErrNotFound: Course not found
*/
func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.ID(request, "identifier")

	course, err := handler.service.GetCourse(request.Context(), requestutil.Claims(request), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, course)
}

// # Instructor Endpoints

/*
GET /api/v1/courses/admin/all.

Description: Retrieves the requesting instructor's full catalogue, drafts
included, for the admin panel listing.

Response:
  - 200: []Course: Paginated instructor catalogue
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Non-admin token
*/
func (handler *Handler) listInstructorCourses(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	var filter Filter
	filter.Sort, filter.SortDir = parseSortParam(request.URL.Query().Get("sort"))

	courses, total, err := handler.service.ListInstructorCourses(request.Context(), claims, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, courses, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/courses/admin/{courseID}/analytics.

Description: Returns enrollment, revenue, and rating metrics for one of the
instructor's courses.

Request:
  - courseID: string (UUID)

Response:
  - 200: Analytics: Dashboard metrics
  - 403: 403: ErrForbidden: Not the owning instructor
  - 404: 404: ErrNotFound: Course not found
*/
func (handler *Handler) courseAnalytics(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID := requestutil.ID(request, "courseID")

	analytics, err := handler.service.CourseAnalytics(request.Context(), claims, courseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, analytics)
}

// # Request Payloads

// courseRequest defines the inbound JSON schema for course create/update.
// The same shape is reconstructed from multipart form fields when the
// request carries a cover image.
type courseRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PriceCents       *int64    `json:"price_cents"`
	Currency         string    `json:"currency"`
	ImageLink        string    `json:"image_link"`
	Published        *bool     `json:"published"`
	Category         Category  `json:"category"`
	Level            Level     `json:"level"`
	DurationMinutes  int       `json:"duration_minutes"`
	LearningOutcomes []string  `json:"learning_outcomes"`
	Prerequisites    []string  `json:"prerequisites"`
	Tags             []string  `json:"tags"`
	Chapters         []Chapter `json:"chapters"`
}

// toCourse maps the payload onto a domain entity. priceFallback supplies the
// sentinel used when price_cents is absent (0 for create, -1 for update).
func (input *courseRequest) toCourse(priceFallback int64) *Course {
	course := &Course{
		Title:            input.Title,
		Description:      input.Description,
		PriceCents:       priceFallback,
		Currency:         input.Currency,
		ImageLink:        input.ImageLink,
		Category:         input.Category,
		Level:            input.Level,
		DurationMinutes:  input.DurationMinutes,
		LearningOutcomes: input.LearningOutcomes,
		Prerequisites:    input.Prerequisites,
		Tags:             input.Tags,
		Chapters:         input.Chapters,
	}
	if input.PriceCents != nil {
		course.PriceCents = *input.PriceCents
	}
	return course
}

// # Mutation Endpoints

/*
POST /api/v1/courses.

Description: Creates a new course owned by the requesting admin. Accepts
either a JSON body or a multipart form carrying an 'image' file plus the
same fields; uploaded covers are stored under the configured upload
directory and linked from the course record.

Request (Body):
  - courseRequest: JSON object, or multipart/form-data with an image part

Response:
  - 201: Course: Created course object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Insufficient permissions
  - 409: 409: ErrConflict: Duplicate slug
*/
func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, image, err := handler.decodeCourseRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseDto := input.toCourse(0)
	if input.Published != nil {
		courseDto.Published = *input.Published
	}

	// Cover upload before persistence so the link lands in the insert
	if image != nil {
		link, err := handler.images.Save(image)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		courseDto.ImageLink = link
	}

	if err := handler.service.CreateCourse(request.Context(), claims.UserID, courseDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, courseDto)
}

/*
PUT /api/v1/courses/{courseID}.

Description: Applies partial updates to an existing course. Only the owning
instructor or an admin may modify a course. Accepts JSON or multipart with
a replacement cover image. A provided chapter list fully replaces the
stored curriculum.

Request:
  - courseID: string (UUID)
  - body: courseRequest (Partial JSON or multipart form)

Response:
  - 200: Course: Updated course object
  - 400: 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Not the owning instructor
  - 404: 404: ErrNotFound: Course not found
*/
func (handler *Handler) updateCourse(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID := requestutil.ID(request, "courseID")

	input, image, err := handler.decodeCourseRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseDto := input.toCourse(-1)
	courseDto.ID = courseID

	if image != nil {
		link, err := handler.images.Save(image)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		courseDto.ImageLink = link
	}

	if err := handler.service.UpdateCourse(request.Context(), claims, courseDto, input.Published); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.GetCourse(request.Context(), claims, courseID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/courses/{courseID}.

Description: Permanently removes a course. Only the owning instructor or
an admin may delete it.

Request:
  - courseID: string (UUID)

Response:
  - 204: No Content: Success
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Not the owning instructor
  - 404: 404: ErrNotFound: Course not found
*/
func (handler *Handler) deleteCourse(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID := requestutil.ID(request, "courseID")

	if err := handler.service.DeleteCourse(request.Context(), claims, courseID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Review Endpoints

// reviewRequest defines the inbound JSON schema for review submission.
type reviewRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

/*
POST /api/v1/courses/{courseID}/reviews.

Description: Records a star rating for a purchased course. Re-submitting
replaces the previous review rather than adding a second one.

Request:
  - courseID: string (UUID)
  - body: reviewRequest (stars 1..5, optional comment)

Response:
  - 201: Review: Recorded review
  - 400: 400: Validation: Stars out of range
  - 401: 401: ErrUnauthorized: Missing or invalid token
  - 403: 403: ErrForbidden: Course not purchased
  - 404: 404: ErrNotFound: Course not found
*/
func (handler *Handler) addReview(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courseID := requestutil.ID(request, "courseID")

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review := &Review{
		CourseID: courseID,
		Stars:    input.Stars,
		Comment:  input.Comment,
	}

	if err := handler.service.AddReview(request.Context(), claims.UserID, review); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, review)
}

// # Helpers

// decodeCourseRequest reads a course payload from either a JSON body or a
// multipart form. The returned file header is non-nil only when a multipart
// request carried an image part.
func (handler *Handler) decodeCourseRequest(request *http.Request) (*courseRequest, *multipart.FileHeader, error) {

	contentType := request.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var input courseRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			return nil, nil, err
		}
		return &input, nil, nil
	}

	// Multipart path: form fields mirror the JSON schema, arrays as
	// repeated fields, chapters as an embedded JSON string.
	if err := request.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, nil, validate.RequiredError("body", "Invalid multipart form")
	}

	input := &courseRequest{
		Title:            request.FormValue("title"),
		Description:      request.FormValue("description"),
		Currency:         request.FormValue("currency"),
		ImageLink:        request.FormValue("image_link"),
		Category:         Category(request.FormValue("category")),
		Level:            Level(request.FormValue("level")),
		LearningOutcomes: request.MultipartForm.Value["learning_outcomes"],
		Prerequisites:    request.MultipartForm.Value["prerequisites"],
		Tags:             request.MultipartForm.Value["tags"],
	}

	if cents, err := strconv.ParseInt(request.FormValue("price_cents"), 10, 64); err == nil {
		input.PriceCents = &cents
	}
	input.DurationMinutes = convert.ToInt(request.FormValue("duration_minutes"))
	if published, err := strconv.ParseBool(request.FormValue("published")); err == nil {
		input.Published = &published
	}
	if raw := request.FormValue("chapters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Chapters); err != nil {
			return nil, nil, validate.RequiredError(FieldChapters, "Chapters must be a valid JSON array")
		}
	}

	var image *multipart.FileHeader
	if files := request.MultipartForm.File[FieldImage]; len(files) > 0 {
		image = files[0]
	}

	return input, image, nil
}

// parseSortParam splits a "field:dir" sort expression into its parts.
func parseSortParam(value string) (sort, dir string) {
	if value == "" {
		return "", ""
	}
	parts := strings.SplitN(value, ":", 2)
	sort = parts[0]
	if len(parts) == 2 {
		dir = parts[1]
	}
	return sort, dir
}

// parseCategorySlice converts repeated query values to categories, dropping
// anything unrecognised.
func parseCategorySlice(values []string) []Category {
	categories := slice.Map(values, func(value string) Category { return Category(value) })
	return slice.Filter(categories, Category.IsValid)
}

// parseLevelSlice converts repeated query values to levels, dropping
// anything unrecognised.
func parseLevelSlice(values []string) []Level {
	levels := slice.Map(values, func(value string) Level { return Level(value) })
	return slice.Filter(levels, Level.IsValid)
}
