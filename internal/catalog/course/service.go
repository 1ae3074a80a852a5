// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"context"
	"log/slog"

	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/sec"
	"github.com/taibuivan/coursio/internal/platform/validate"
	"github.com/taibuivan/coursio/pkg/slug"
	"github.com/taibuivan/coursio/pkg/uuid"
)

// # Service Layer

// Service orchestrates the business logic for the course catalogue.
// It acts as the primary entry point for discovery, management, and reviews.
type Service struct {
	courseRepo CourseRepository
	purchases  PurchaseChecker
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(courseRepo CourseRepository, purchases PurchaseChecker, logger *slog.Logger) *Service {
	return &Service{
		courseRepo: courseRepo,
		purchases:  purchases,
		logger:     logger,
	}
}

// # Course Lookups

/*
ListCourses retrieves a paginated and filtered collection of courses.

Description: This method orchestrates the discovery phase of the catalogue.
Draft (unpublished) courses are only included when the viewer holds the
admin role; for everyone else the IncludeUnpublished flag is forcibly
cleared before the filter reaches the repository.

Parameters:
  - context: context.Context
  - viewer: *sec.AuthClaims (nil for anonymous visitors)
  - filter: Filter (Criteria for category, level, search, price, etc.)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Course: Slice of matching course records
  - int: Total count of records matching the filter (for pagination metadata)
  - error: System or repository level errors
*/
func (service *Service) ListCourses(context context.Context, viewer *sec.AuthClaims, filter Filter, limit, offset int) ([]*Course, int, error) {

	// Draft visibility is an admin privilege, never client input
	if !isAdmin(viewer) {
		filter.IncludeUnpublished = false
	}

	return service.courseRepo.List(context, filter, limit, offset)
}

/*
GetCourse fetches a single course by UUID or SEO slug.

Description: The service intelligently determines the lookup strategy.
If the identifier matches the UUID format, it performs a primary key
lookup; otherwise, it resolves via the unique URL slug. Unpublished
courses are only visible to their instructor or any admin.

Parameters:
  - context: context.Context
  - viewer: *sec.AuthClaims (nil for anonymous visitors)
  - identifier: string (UUID or Slug)

Returns:
  - *Course: The hydrated domain entity
  - error: ErrNotFound if no match, ErrForbidden for hidden drafts
*/
func (service *Service) GetCourse(context context.Context, viewer *sec.AuthClaims, identifier string) (*Course, error) {

	var course *Course
	var err error

	// Identity format detection
	if isUUID(identifier) {
		course, err = service.courseRepo.FindByID(context, identifier)
	} else {
		course, err = service.courseRepo.FindBySlug(context, identifier)
	}
	if err != nil {
		return nil, err
	}

	// Draft visibility rule
	if !course.Published && !canModify(viewer, course) {
		return nil, apperr.Forbidden("Course is not published")
	}

	return course, nil
}

/*
ListInstructorCourses returns every course owned by the requesting admin,
drafts included.

Parameters:
  - context: context.Context
  - viewer: *sec.AuthClaims (must carry the admin role)
  - filter: Filter (Additional criteria applied on top of ownership)
  - limit: int
  - offset: int

Returns:
  - []*Course: The instructor's catalogue
  - int: Total count
  - error: Repository level errors
*/
func (service *Service) ListInstructorCourses(context context.Context, viewer *sec.AuthClaims, filter Filter, limit, offset int) ([]*Course, int, error) {
	filter.InstructorID = viewer.UserID
	filter.IncludeUnpublished = true
	return service.courseRepo.List(context, filter, limit, offset)
}

// # Course Management

/*
CreateCourse initialises a new course record in the system.

Description: Performs deep business validation on the metadata,
generates a stable UUID v7 identity, and creates SEO-friendly
slugs before persisting to the repository. Chapter rows without
identities are assigned fresh UUIDs.

Parameters:
  - context: context.Context
  - instructorID: string (UUID of the owning admin)
  - course: *Course (The entity to be persisted)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateCourse(context context.Context, instructorID string, course *Course) error {

	// Business attribute validation
	validator := &validate.Validator{}
	validator.Required(FieldTitle, course.Title).MaxLen(FieldTitle, course.Title, TitleMaxLength)
	validator.Required(FieldDescription, course.Description)
	validator.Custom(FieldPriceCents, course.PriceCents < 0, "must not be negative")

	// Category & Level validation
	validator.Required(FieldCategory, string(course.Category)).
		Custom(FieldCategory, course.Category != "" && !course.Category.IsValid(), "is not a recognised category")
	validator.Custom(FieldLevel, course.Level != "" && !course.Level.IsValid(), "is not a recognised level")

	if err := validator.Err(); err != nil {
		return err
	}

	// Identity & Slug generation
	course.ID = uuid.New()
	course.InstructorID = instructorID
	if course.Slug == "" {
		course.Slug = slug.From(course.Title)
	}

	// Defaults
	if course.Currency == "" {
		course.Currency = DefaultCurrency
	}
	if course.Level == "" {
		course.Level = LevelAllLevels
	}
	assignChapterIdentities(course)

	// Persistence via Repository
	if err := service.courseRepo.Create(context, course); err != nil {
		return err
	}

	service.logger.Info("course_created",
		slog.String("course_id", course.ID),
		slog.String("instructor_id", instructorID),
		slog.String("title", course.Title),
	)

	return nil
}

/*
UpdateCourse applies modifications to an existing course.

Description: Supports partial updates. Non-empty fields in the input
entity overwrite existing values; the publication flag is tri-state so
drafts can be toggled without touching other fields. The caller must be
the owning instructor or hold the admin role.

Parameters:
  - context: context.Context
  - viewer: *sec.AuthClaims (The acting identity)
  - course: *Course (Target ID and updated attributes)
  - published: *bool (nil leaves publication state unchanged)

Returns:
  - error: Validation, authorization, or persistence errors
*/
func (service *Service) UpdateCourse(context context.Context, viewer *sec.AuthClaims, course *Course, published *bool) error {

	existing, err := service.courseRepo.FindByID(context, course.ID)
	if err != nil {
		return err
	}

	// Ownership gate
	if !canModify(viewer, existing) {
		return apperr.Forbidden("You do not own this course")
	}

	// Integrity validation for updated fields
	validator := &validate.Validator{}
	if course.Title != "" {
		validator.MaxLen(FieldTitle, course.Title, TitleMaxLength)
	}
	if course.Slug != "" {
		validator.Slug(FieldSlug, course.Slug)
	}
	validator.Custom(FieldCategory, course.Category != "" && !course.Category.IsValid(), "is not a recognised category")
	validator.Custom(FieldLevel, course.Level != "" && !course.Level.IsValid(), "is not a recognised level")

	if err := validator.Err(); err != nil {
		return err
	}

	assignChapterIdentities(course)

	if err := service.courseRepo.Update(context, course, published); err != nil {
		return err
	}

	service.logger.Info("course_updated", slog.String("course_id", course.ID))

	return nil
}

/*
DeleteCourse removes a course from the catalogue permanently.

Description: The caller must be the owning instructor or hold the
admin role. Purchased entitlements cascade away with the course.

Parameters:
  - context: context.Context
  - viewer: *sec.AuthClaims (The acting identity)
  - id: string (UUID)

Returns:
  - error: Authorization or persistence errors
*/
func (service *Service) DeleteCourse(context context.Context, viewer *sec.AuthClaims, id string) error {

	existing, err := service.courseRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if !canModify(viewer, existing) {
		return apperr.Forbidden("You do not own this course")
	}

	if err := service.courseRepo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("course_deleted", slog.String("course_id", id))

	return nil
}

// # Reviews

/*
AddReview records (or replaces) a purchaser's star rating for a course.

Description: Only users holding an entitlement for the course may review
it. The review row and the course's rating accumulators are written in a
single SQL statement so concurrent reviewers never lose each other's
contribution, and a reviewer re-submitting replaces their previous stars
rather than double-counting.

Parameters:
  - context: context.Context
  - userID: string (The reviewing purchaser)
  - review: *Review (CourseID, Stars, Comment)

Returns:
  - error: Validation, authorization, or persistence errors
*/
func (service *Service) AddReview(context context.Context, userID string, review *Review) error {

	// Rating bounds validation
	validator := &validate.Validator{}
	validator.Range(FieldStars, review.Stars, StarsMin, StarsMax)
	validator.MaxLen(FieldComment, review.Comment, CommentMaxLength)

	if err := validator.Err(); err != nil {
		return err
	}

	// Purchase gate
	owned, err := service.purchases.Has(context, userID, review.CourseID)
	if err != nil {
		return err
	}
	if !owned {
		return apperr.Forbidden("Only purchasers can review a course")
	}

	review.UserID = userID

	if err := service.courseRepo.UpsertReview(context, review); err != nil {
		return err
	}

	service.logger.Info("review_recorded",
		slog.String("course_id", review.CourseID),
		slog.String("user_id", userID),
		slog.Int("stars", review.Stars),
	)

	return nil
}

// # Analytics

/*
CourseAnalytics returns the instructor dashboard metrics for a course.

Description: Enrollment count, completed-order revenue, and average
rating. The caller must be the owning instructor or hold the admin role.

Parameters:
  - context: context.Context
  - viewer: *sec.AuthClaims (The acting identity)
  - courseID: string (UUID)

Returns:
  - *Analytics: Aggregated metrics
  - error: Authorization or persistence errors
*/
func (service *Service) CourseAnalytics(context context.Context, viewer *sec.AuthClaims, courseID string) (*Analytics, error) {

	existing, err := service.courseRepo.FindByID(context, courseID)
	if err != nil {
		return nil, err
	}

	if !canModify(viewer, existing) {
		return nil, apperr.Forbidden("You do not own this course")
	}

	return service.courseRepo.Analytics(context, courseID)
}

// # Internal Helpers

// isUUID returns true if the string matches the standard UUID length.
func isUUID(s string) bool {
	return len(s) == 36
}

// isAdmin reports whether the viewer is an authenticated admin.
func isAdmin(viewer *sec.AuthClaims) bool {
	return viewer != nil && sec.UserRole(viewer.Role).Is(sec.RoleAdmin)
}

// canModify reports whether the viewer may mutate or inspect a draft course.
// The owning instructor qualifies, as does any admin.
func canModify(viewer *sec.AuthClaims, course *Course) bool {
	if viewer == nil {
		return false
	}
	if viewer.UserID == course.InstructorID {
		return true
	}
	return sec.UserRole(viewer.Role).Is(sec.RoleAdmin)
}

// assignChapterIdentities fills in missing chapter IDs and back-references.
func assignChapterIdentities(course *Course) {
	for i := range course.Chapters {
		if course.Chapters[i].ID == "" {
			course.Chapters[i].ID = uuid.New()
		}
		course.Chapters[i].CourseID = course.ID
		if course.Chapters[i].ContentType == "" {
			course.Chapters[i].ContentType = ContentTypeVideo
		}
	}
}
