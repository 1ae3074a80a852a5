// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package course defines the core domain entities for the Coursio catalogue.

It manages the lifecycle of sellable courses including metadata, chapter
organization, pricing, and review metrics.

Core Responsibility:

  - Catalogue: Defines categories (Development, Business) and levels (Beginner, Advanced).
  - Discovery: Manages search, filtering, and publication visibility.
  - Analytics: Tracks enrollment, revenue, and rating accumulators for instructors.

This package acts as the source of truth for all content-related data models.
*/
package course

import "time"

// # Domain Enums

// Category classifies the subject area of a course.
type Category string

const (
	CategoryDevelopment Category = "development"
	CategoryBusiness    Category = "business"
	CategoryDesign      Category = "design"
	CategoryMarketing   Category = "marketing"
	CategoryPhotography Category = "photography"
	CategoryMusic       Category = "music"
	CategoryOther       Category = "other"
)

// IsValid reports whether c is a recognised [Category] value.
func (c Category) IsValid() bool {
	switch c {
	case
		CategoryDevelopment,
		CategoryBusiness,
		CategoryDesign,
		CategoryMarketing,
		CategoryPhotography,
		CategoryMusic,
		CategoryOther:
		return true
	}
	return false
}

// Level classifies the expected learner proficiency of a course.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelAllLevels    Level = "all-levels"
)

// IsValid reports whether l is a recognised [Level] value.
func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAllLevels:
		return true
	}
	return false
}

// ContentType describes the delivery format of a single chapter.
type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypeArticle ContentType = "article"
	ContentTypeQuiz    ContentType = "quiz"
)

// # Core Entities

// Course is the central aggregate of the Coursio domain.
// It represents a single sellable publication in the catalogue.
type Course struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"` // URL-safe identifier
	Description      string   `json:"description"`
	PriceCents       int64    `json:"price_cents"`
	Currency         string   `json:"currency"`
	ImageLink        string   `json:"image_link"`
	Published        bool     `json:"published"`
	InstructorID     string   `json:"instructor_id"`
	Category         Category `json:"category"`
	Level            Level    `json:"level"`
	DurationMinutes  int      `json:"duration_minutes"`
	LearningOutcomes []string `json:"learning_outcomes"`
	Prerequisites    []string `json:"prerequisites"`
	Tags             []string `json:"tags,omitempty"`

	// # Curriculum
	// Hydrated on detail lookups; accepted as input on create/update.
	Chapters []Chapter `json:"chapters,omitempty"`

	// # Review Aggregates
	// Rating is a running sum of stars maintained atomically alongside
	// each review write. AverageRating is derived, never stored.
	Rating          int      `json:"-"`
	NumberOfReviews int      `json:"number_of_reviews"`
	AverageRating   float64  `json:"average_rating"`
	Reviews         []Review `json:"reviews,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComputeAverageRating refreshes the derived AverageRating field from the
// stored accumulators. Zero when the course has no reviews.
func (c *Course) ComputeAverageRating() {
	if c.NumberOfReviews == 0 {
		c.AverageRating = 0
		return
	}
	c.AverageRating = float64(c.Rating) / float64(c.NumberOfReviews)
}

// Chapter represents a single ordered unit of course curriculum.
type Chapter struct {
	ID              string      `json:"id"`
	CourseID        string      `json:"course_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	VideoURL        string      `json:"video_url,omitempty"`
	ContentType     ContentType `json:"content_type"`
	IsFree          bool        `json:"is_free"` // Free-preview chapters are visible pre-purchase
	DurationMinutes int         `json:"duration_minutes"`
	SortOrder       int         `json:"sort_order"`
}

// Review represents a star rating left by a purchaser.
// One review per (course, user); re-submitting replaces the previous one.
type Review struct {
	CourseID  string    `json:"course_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"` // Denormalized for display
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Analytics holds the per-course instructor dashboard metrics.
type Analytics struct {
	CourseID        string  `json:"course_id"`
	Enrolled        int     `json:"enrolled"`
	RevenueCents    int64   `json:"revenue_cents"`
	NumberOfReviews int     `json:"number_of_reviews"`
	AverageRating   float64 `json:"average_rating"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered course list query.
type Filter struct {
	Query         string     `json:"q,omitempty"` // Title/description search term
	Category      []Category `json:"category,omitempty"`
	Level         []Level    `json:"level,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	PriceMinCents *int64     `json:"price_min_cents,omitempty"`
	PriceMaxCents *int64     `json:"price_max_cents,omitempty"`
	InstructorID  string     `json:"instructor_id,omitempty"`

	// IncludeUnpublished widens the listing to drafts. Only ever set by
	// the handler for admin viewers; never taken from client input.
	IncludeUnpublished bool `json:"-"`

	Sort    string `json:"sort,omitempty"`     // created, price, rating, title
	SortDir string `json:"sort_dir,omitempty"` // "asc" or "desc"
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID              = "id"
	FieldTitle           = "title"
	FieldSlug            = "slug"
	FieldDescription     = "description"
	FieldPriceCents      = "price_cents"
	FieldCurrency        = "currency"
	FieldImageLink       = "image_link"
	FieldPublished       = "published"
	FieldInstructorID    = "instructor_id"
	FieldCategory        = "category"
	FieldLevel           = "level"
	FieldDurationMinutes = "duration_minutes"
	FieldChapters        = "chapters"
	FieldImage           = "image"
)

// Field identifiers for the [Review] domain.
const (
	FieldStars   = "stars"
	FieldComment = "comment"
)
