// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package course provides the PostgreSQL implementation for the catalogue's data access.

It utilizes advanced Postgres features to deliver a high-performance discovery experience:
  - JSON Aggregation: Retrieves complex nested data (chapters, reviews) in a single round-trip.
  - Window Functions: Calculates total result counts without requiring a separate 'COUNT' query.
  - Writable CTEs: Folds a review upsert and the parent rating accumulator update into one statement.
  - ACID Transactions: Ensures atomicity when updating courses and their chapter lists.

The repository follows an "Aggregate" pattern where sub-resources are managed
through the main repository instance to maintain domain integrity.
*/
package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/database/schema"
	"github.com/taibuivan/coursio/internal/platform/dberr"
)

// # PostgreSQL Repositories

// courseRepository implements the [CourseRepository] interface using pgx.
type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository constructs a PostgreSQL backed course store.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

// # Course Repository Implementation

/*
List returns a filtered, paginated slice of courses and the total count.

Description: This high-performance query utilizes several PostgreSQL advanced
features:
  - Window Function: Uses COUNT(*) OVER() to retrieve total record counts
    without a second query.
  - Set Operations: Uses ANY($n) for category/level filtering and the array
    overlap operator (&&) for tag filtering.

Parameters:
  - context: context.Context
  - filter: Filter (Search, category, level, price range, sorting)
  - limit: int
  - offset: int

Returns:
  - []*Course: Slice of hydrated course entities (without curriculum)
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *courseRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Course, int, error) {

	// Query build initialization
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	// Using Window Function to get total count
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s,
			COUNT(*) OVER() AS total_count
		FROM %s c
		WHERE TRUE
	`,
		schema.CatalogCourse.ID,
		schema.CatalogCourse.Title,
		schema.CatalogCourse.Slug,
		schema.CatalogCourse.Description,
		schema.CatalogCourse.PriceCents,
		schema.CatalogCourse.Currency,
		schema.CatalogCourse.ImageLink,
		schema.CatalogCourse.Published,
		schema.CatalogCourse.InstructorID,
		schema.CatalogCourse.Category,
		schema.CatalogCourse.Level,
		schema.CatalogCourse.DurationMinutes,
		schema.CatalogCourse.LearningOutcomes,
		schema.CatalogCourse.Prerequisites,
		schema.CatalogCourse.Tags,
		schema.CatalogCourse.Rating,
		schema.CatalogCourse.NumberOfReviews,
		schema.CatalogCourse.CreatedAt,
		schema.CatalogCourse.UpdatedAt,
		schema.CatalogCourse.Table,
	))

	// Publication Visibility
	if !filter.IncludeUnpublished {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = TRUE", schema.CatalogCourse.Published))
	}

	// Category Filtering
	if len(filter.Category) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = ANY($%d)", schema.CatalogCourse.Category, argID))
		args = append(args, filter.Category)
		argID++
	}

	// Level Filtering
	if len(filter.Level) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = ANY($%d)", schema.CatalogCourse.Level, argID))
		args = append(args, filter.Level)
		argID++
	}

	// Tag Filtering (overlap: any shared tag matches)
	if len(filter.Tags) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s && $%d", schema.CatalogCourse.Tags, argID))
		args = append(args, filter.Tags)
		argID++
	}

	// Instructor Filtering
	if filter.InstructorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CatalogCourse.InstructorID, argID))
		args = append(args, filter.InstructorID)
		argID++
	}

	// Price Range Filtering
	if filter.PriceMinCents != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s >= $%d", schema.CatalogCourse.PriceCents, argID))
		args = append(args, *filter.PriceMinCents)
		argID++
	}
	if filter.PriceMaxCents != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s <= $%d", schema.CatalogCourse.PriceCents, argID))
		args = append(args, *filter.PriceMaxCents)
		argID++
	}

	// Search Query Filtering
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (c.%s ILIKE $%d OR c.%s ILIKE $%d)",
			schema.CatalogCourse.Title, argID, schema.CatalogCourse.Description, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	// Apply Sorting Logic
	sort := fmt.Sprintf("c.%s", schema.CatalogCourse.CreatedAt) // default
	switch filter.Sort {
	// Price
	case "price":
		sort = fmt.Sprintf("c.%s", schema.CatalogCourse.PriceCents)
	// Rating (derived average, not the raw sum)
	case "rating":
		sort = fmt.Sprintf("(c.%s::float / NULLIF(c.%s, 0))", schema.CatalogCourse.Rating, schema.CatalogCourse.NumberOfReviews)
	// Alphabetical Order
	case "title":
		sort = fmt.Sprintf("c.%s", schema.CatalogCourse.Title)
	// Creation Time
	case "created", "createdat":
		sort = fmt.Sprintf("c.%s", schema.CatalogCourse.CreatedAt)
	}

	// Apply Sorting Direction
	sortDir := "DESC"
	if strings.ToLower(filter.SortDir) == "asc" {
		sortDir = "ASC"
	}

	// Apply Sorting (NULLS LAST keeps unreviewed courses at the tail)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s NULLS LAST, c.%s DESC", sort, sortDir, schema.CatalogCourse.ID))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query Execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list courses: %w", err)
	}
	defer rows.Close()

	// Initialize variables
	var courses []*Course
	var totalCount int

	// Iterate over rows
	for rows.Next() {
		course := &Course{}
		err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Slug,
			&course.Description,
			&course.PriceCents,
			&course.Currency,
			&course.ImageLink,
			&course.Published,
			&course.InstructorID,
			&course.Category,
			&course.Level,
			&course.DurationMinutes,
			&course.LearningOutcomes,
			&course.Prerequisites,
			&course.Tags,
			&course.Rating,
			&course.NumberOfReviews,
			&course.CreatedAt,
			&course.UpdatedAt,
			&totalCount,
		)

		// Check for errors during row scanning
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan course: %w", err)
		}

		course.ComputeAverageRating()
		courses = append(courses, course)
	}

	// Return the list of courses and total count
	return courses, totalCount, nil
}

/*
FindByID retrieves a course record by its primary key.

Description: Performs a single-row lookup to retrieve core course metadata.
In addition to the core fields, this query utilizes PostgreSQL's JSON
aggregation capabilities (json_agg and json_build_object) natively to
retrieve the associated chapters and reviews in a single database
round-trip. This avoids the classic N+1 query problem and optimizes
domain hydration performance for standard application workflows.

Parameters:
  - context: context.Context for request scoping, deadlines, and cancellation tracking
  - id: string representing the UUID primary key of the target course

Returns:
  - *Course: The fully hydrated course entity (including curriculum), or nil if not found
  - error: Returns apperr.NotFound if the course does not exist, or an internal error upon failure
*/
func (repository *courseRepository) FindByID(context context.Context, id string) (*Course, error) {
	query := repository.detailQuery(schema.CatalogCourse.ID)
	return repository.findOne(context, query, id)
}

/*
FindBySlug retrieves a course record using its unique SEO URL slug.

Description: Used primarily for public/SEO discovery where the application's
internal UUID is not present in the frontend URL schema. Operates identically
to FindByID, continuing to utilize Postgres json_agg sub-queries for chapter
and review hydration.

Parameters:
  - context: context.Context lifecycle and timeout boundaries
  - slug: string human-readable URL-compliant identifier

Returns:
  - *Course: Completely hydrated domain entity
  - error: apperr.NotFound on unknown slug
*/
func (repository *courseRepository) FindBySlug(context context.Context, slug string) (*Course, error) {
	query := repository.detailQuery(schema.CatalogCourse.Slug)
	return repository.findOne(context, query, slug)
}

// detailQuery builds the hydrating single-course lookup keyed by the given column.
func (repository *courseRepository) detailQuery(keyColumn string) string {
	return fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s,
			COALESCE((
				SELECT json_agg(json_build_object(
					'id', ch.%s, 'course_id', ch.%s, 'title', ch.%s,
					'description', ch.%s, 'video_url', ch.%s, 'content_type', ch.%s,
					'is_free', ch.%s, 'duration_minutes', ch.%s, 'sort_order', ch.%s
				) ORDER BY ch.%s)
				FROM %s ch
				WHERE ch.%s = c.%s
			), '[]') AS chapters,
			COALESCE((
				SELECT json_agg(json_build_object(
					'course_id', r.%s, 'user_id', r.%s, 'user_name', a.%s,
					'stars', r.%s, 'comment', r.%s,
					'created_at', r.%s, 'updated_at', r.%s
				) ORDER BY r.%s DESC)
				FROM %s r
				JOIN %s a ON a.%s = r.%s
				WHERE r.%s = c.%s
			), '[]') AS reviews
		FROM %s c
		WHERE c.%s = $1
	`,
		schema.CatalogCourse.ID,
		schema.CatalogCourse.Title,
		schema.CatalogCourse.Slug,
		schema.CatalogCourse.Description,
		schema.CatalogCourse.PriceCents,
		schema.CatalogCourse.Currency,
		schema.CatalogCourse.ImageLink,
		schema.CatalogCourse.Published,
		schema.CatalogCourse.InstructorID,
		schema.CatalogCourse.Category,
		schema.CatalogCourse.Level,
		schema.CatalogCourse.DurationMinutes,
		schema.CatalogCourse.LearningOutcomes,
		schema.CatalogCourse.Prerequisites,
		schema.CatalogCourse.Tags,
		schema.CatalogCourse.Rating,
		schema.CatalogCourse.NumberOfReviews,
		schema.CatalogCourse.CreatedAt,
		schema.CatalogCourse.UpdatedAt,
		schema.CatalogChapter.ID, schema.CatalogChapter.CourseID, schema.CatalogChapter.Title,
		schema.CatalogChapter.Description, schema.CatalogChapter.VideoURL, schema.CatalogChapter.ContentType,
		schema.CatalogChapter.IsFree, schema.CatalogChapter.DurationMinutes, schema.CatalogChapter.SortOrder,
		schema.CatalogChapter.SortOrder,
		schema.CatalogChapter.Table,
		schema.CatalogChapter.CourseID, schema.CatalogCourse.ID,
		schema.CatalogReview.CourseID, schema.CatalogReview.UserID, schema.UserAccount.Name,
		schema.CatalogReview.Stars, schema.CatalogReview.Comment,
		schema.CatalogReview.CreatedAt, schema.CatalogReview.UpdatedAt,
		schema.CatalogReview.CreatedAt,
		schema.CatalogReview.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CatalogReview.UserID,
		schema.CatalogReview.CourseID, schema.CatalogCourse.ID,
		schema.CatalogCourse.Table,
		keyColumn,
	)
}

// findOne executes a detail query and hydrates the aggregated JSON columns.
func (repository *courseRepository) findOne(context context.Context, query string, key any) (*Course, error) {

	course := &Course{}
	var chaptersJSON, reviewsJSON []byte

	err := repository.pool.QueryRow(context, query, key).Scan(
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.PriceCents,
		&course.Currency,
		&course.ImageLink,
		&course.Published,
		&course.InstructorID,
		&course.Category,
		&course.Level,
		&course.DurationMinutes,
		&course.LearningOutcomes,
		&course.Prerequisites,
		&course.Tags,
		&course.Rating,
		&course.NumberOfReviews,
		&course.CreatedAt,
		&course.UpdatedAt,
		&chaptersJSON,
		&reviewsJSON,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("course")
		}
		return nil, fmt.Errorf("postgres: failed to find course: %w", err)
	}

	// Curriculum Hydration
	if err := json.Unmarshal(chaptersJSON, &course.Chapters); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal chapters: %w", err)
	}

	// Review Hydration
	if err := json.Unmarshal(reviewsJSON, &course.Reviews); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal reviews: %w", err)
	}

	course.ComputeAverageRating()
	return course, nil
}

/*
Create persists a new course entity and its chapter list.

Description: Executes the insertion within a single ACID-compliant PostgreSQL
transaction. If the insertion of the core record or any chapter row fails due
to constraints or network issues, the entire operation is rolled back. This
prevents orphaned curriculum rows and partial saves.

Parameters:
  - context: context.Context for request scoping and database timeout tracking
  - course: *Course (The domain entity containing core metadata and chapters)

Returns:
  - error: apperr.Conflict on duplicate slug, otherwise execution errors
*/
func (repository *courseRepository) Create(context context.Context, course *Course) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		schema.CatalogCourse.Table,
		schema.CatalogCourse.ID, schema.CatalogCourse.Title, schema.CatalogCourse.Slug,
		schema.CatalogCourse.Description, schema.CatalogCourse.PriceCents, schema.CatalogCourse.Currency,
		schema.CatalogCourse.ImageLink,
		schema.CatalogCourse.Published, schema.CatalogCourse.InstructorID, schema.CatalogCourse.Category,
		schema.CatalogCourse.Level, schema.CatalogCourse.DurationMinutes, schema.CatalogCourse.LearningOutcomes,
		schema.CatalogCourse.Prerequisites, schema.CatalogCourse.Tags,
	)

	_, err = transaction.Exec(context, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.PriceCents,
		course.Currency,
		course.ImageLink,
		course.Published,
		course.InstructorID,
		course.Category,
		course.Level,
		course.DurationMinutes,
		course.LearningOutcomes,
		course.Prerequisites,
		course.Tags,
	)
	if err != nil {
		return dberr.Wrap(err, "course_create")
	}

	// Curriculum Synchronization
	if len(course.Chapters) > 0 {
		if err := repository.syncChapters(context, transaction, course.ID, course.Chapters); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit create transaction: %w", err)
	}

	return nil
}

/*
Update persists metadata modifications to an existing course record.

Description: Utilizes a dynamic SQL strings.Builder to construct a PATCH-style
partial update query. It systematically checks which fields are populated in
the entity and appends them to the SET block dynamically. When a chapter list
is provided, the stored curriculum is fully replaced inside the same
transactional boundary to maintain 1-to-1 sync.

Parameters:
  - context: context.Context handling the database operation lifecycle
  - course: *Course (Target UUID and updated fields)
  - published: *bool (Tri-state toggle; nil preserves the stored value)

Returns:
  - error: apperr.NotFound if the target record does not exist, or native execution errors
*/
func (repository *courseRepository) Update(context context.Context, course *Course, published *bool) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.CatalogCourse.Table, schema.CatalogCourse.UpdatedAt))

	var args []any
	argID := 1

	// Applying variable states individually. This avoids overwriting
	// existing DB columns with zero values.
	if course.Title != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Title, argID))
		args = append(args, course.Title)
		argID++
	}

	// Slug
	if course.Slug != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Slug, argID))
		args = append(args, course.Slug)
		argID++
	}

	// Description
	if course.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Description, argID))
		args = append(args, course.Description)
		argID++
	}

	// PriceCents (negative means unset)
	if course.PriceCents >= 0 {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.PriceCents, argID))
		args = append(args, course.PriceCents)
		argID++
	}

	// Currency
	if course.Currency != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Currency, argID))
		args = append(args, course.Currency)
		argID++
	}

	// ImageLink
	if course.ImageLink != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.ImageLink, argID))
		args = append(args, course.ImageLink)
		argID++
	}

	// Published
	if published != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Published, argID))
		args = append(args, *published)
		argID++
	}

	// Category
	if course.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Category, argID))
		args = append(args, course.Category)
		argID++
	}

	// Level
	if course.Level != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Level, argID))
		args = append(args, course.Level)
		argID++
	}

	// DurationMinutes
	if course.DurationMinutes > 0 {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.DurationMinutes, argID))
		args = append(args, course.DurationMinutes)
		argID++
	}

	// LearningOutcomes
	if course.LearningOutcomes != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.LearningOutcomes, argID))
		args = append(args, course.LearningOutcomes)
		argID++
	}

	// Prerequisites
	if course.Prerequisites != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Prerequisites, argID))
		args = append(args, course.Prerequisites)
		argID++
	}

	// Tags
	if course.Tags != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCourse.Tags, argID))
		args = append(args, course.Tags)
		argID++
	}

	// Bounds the update to a single primary key
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d", schema.CatalogCourse.ID, argID))
	args = append(args, course.ID)

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: update transaction begin failed: %w", err)
	}
	defer transaction.Rollback(context)

	response, err := transaction.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "course_update")
	}

	if response.RowsAffected() == 0 {
		return apperr.NotFound("course")
	}

	// Curriculum Replacement
	if course.Chapters != nil {
		if err := repository.syncChapters(context, transaction, course.ID, course.Chapters); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: update transaction commit failed: %w", err)
	}

	return nil
}

/*
syncChapters replaces the stored curriculum for a course.

Description: Implements a "Clear and Insert" bulk execution strategy. First it
flushes all chapter rows belonging to the course, then queues the replacement
rows through the native `pgx.Batch` pipeline. This bounds multiple network
trips into a single optimized database sequence.

Parameters:
  - context: context.Context lifecycle mapping
  - transaction: pgx.Tx (The actively executed transaction boundary)
  - courseID: string (UUID of the parent course)
  - chapters: []Chapter (The replacement curriculum, ordered by SortOrder)

Returns:
  - error: Structural execution constraints or failure states
*/
func (repository *courseRepository) syncChapters(context context.Context, transaction pgx.Tx, courseID string, chapters []Chapter) error {

	// Clear Phase
	delQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.CatalogChapter.Table, schema.CatalogChapter.CourseID)
	if _, err := transaction.Exec(context, delQuery, courseID); err != nil {
		return fmt.Errorf("postgres: failed to clear chapters: %w", err)
	}

	if len(chapters) == 0 {
		return nil
	}

	// Batch Insert Phase
	insQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		schema.CatalogChapter.Table,
		schema.CatalogChapter.ID, schema.CatalogChapter.CourseID, schema.CatalogChapter.Title,
		schema.CatalogChapter.Description, schema.CatalogChapter.VideoURL, schema.CatalogChapter.ContentType,
		schema.CatalogChapter.IsFree, schema.CatalogChapter.DurationMinutes, schema.CatalogChapter.SortOrder,
	)

	batch := &pgx.Batch{}
	for _, chapter := range chapters {
		batch.Queue(insQuery,
			chapter.ID, courseID, chapter.Title,
			chapter.Description, chapter.VideoURL, chapter.ContentType,
			chapter.IsFree, chapter.DurationMinutes, chapter.SortOrder,
		)
	}

	response := transaction.SendBatch(context, batch)
	if err := response.Close(); err != nil {
		return fmt.Errorf("postgres: failed to batch insert chapters: %w", err)
	}

	return nil
}

/*
Delete removes a course permanently.

Description: Dependent chapter, review, and entitlement rows are removed by
ON DELETE CASCADE constraints defined in the migrations, so a single
statement suffices.

Parameters:
  - context: context.Context lifecycle and network tracking
  - id: string target unique identifier

Returns:
  - error: apperr.NotFound if missing, otherwise execution errors
*/
func (repository *courseRepository) Delete(context context.Context, id string) error {

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.CatalogCourse.Table, schema.CatalogCourse.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("course")
	}

	return nil
}

// # Review Repository Implementation

// reviewUpsertQuery is the single writable-CTE statement behind
// UpsertReview. Package-level so its accumulator arithmetic can be
// asserted without a database.
var reviewUpsertQuery = fmt.Sprintf(`
		WITH previous AS (
			SELECT %s FROM %s WHERE %s = $1 AND %s = $2
		), written AS (
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			ON CONFLICT (%s, %s) DO UPDATE
			SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
			RETURNING %s
		)
		UPDATE %s c SET
			%s = c.%s + $3 - COALESCE((SELECT %s FROM previous), 0),
			%s = c.%s + CASE WHEN EXISTS (SELECT 1 FROM previous) THEN 0 ELSE 1 END,
			%s = NOW()
		WHERE c.%s = $1
	`,
	schema.CatalogReview.Stars, schema.CatalogReview.Table, schema.CatalogReview.CourseID, schema.CatalogReview.UserID,
	schema.CatalogReview.Table,
	schema.CatalogReview.CourseID, schema.CatalogReview.UserID, schema.CatalogReview.Stars,
	schema.CatalogReview.Comment, schema.CatalogReview.CreatedAt, schema.CatalogReview.UpdatedAt,
	schema.CatalogReview.CourseID, schema.CatalogReview.UserID,
	schema.CatalogReview.Stars, schema.CatalogReview.Stars,
	schema.CatalogReview.Comment, schema.CatalogReview.Comment,
	schema.CatalogReview.UpdatedAt,
	schema.CatalogReview.Stars,
	schema.CatalogCourse.Table,
	schema.CatalogCourse.Rating, schema.CatalogCourse.Rating, schema.CatalogReview.Stars,
	schema.CatalogCourse.NumberOfReviews, schema.CatalogCourse.NumberOfReviews,
	schema.CatalogCourse.UpdatedAt,
	schema.CatalogCourse.ID,
)

/*
UpsertReview writes a review and its course accumulator update atomically.

Description: A single writable-CTE statement performs three things at once:
reads the reviewer's previous stars (if any), inserts or replaces the review
row, and adjusts the parent course's (rating, numberofreviews) accumulators
by the delta. Because it is one statement, two concurrent reviews from
different users both land and neither accumulator update is lost.

Parameters:
  - context: context.Context
  - review: *Review (CourseID, UserID, Stars, Comment)

Returns:
  - error: apperr.NotFound if the course row is missing, otherwise execution errors
*/
func (repository *courseRepository) UpsertReview(context context.Context, review *Review) error {

	result, err := repository.pool.Exec(context, reviewUpsertQuery,
		review.CourseID,
		review.UserID,
		review.Stars,
		review.Comment,
	)
	if err != nil {
		return dberr.Wrap(err, "review_upsert")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("course")
	}

	return nil
}

/*
ListReviews returns all reviews for a course ordered by recency.

Parameters:
  - context: context.Context
  - courseID: string (UUID)

Returns:
  - []*Review: Reviews with reviewer names joined in
  - error: Execution failures
*/
func (repository *courseRepository) ListReviews(context context.Context, courseID string) ([]*Review, error) {

	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, a.%s, r.%s, r.%s, r.%s, r.%s
		FROM %s r
		JOIN %s a ON a.%s = r.%s
		WHERE r.%s = $1
		ORDER BY r.%s DESC
	`,
		schema.CatalogReview.CourseID, schema.CatalogReview.UserID, schema.UserAccount.Name,
		schema.CatalogReview.Stars, schema.CatalogReview.Comment,
		schema.CatalogReview.CreatedAt, schema.CatalogReview.UpdatedAt,
		schema.CatalogReview.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CatalogReview.UserID,
		schema.CatalogReview.CourseID,
		schema.CatalogReview.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		review := &Review{}
		if err := rows.Scan(
			&review.CourseID,
			&review.UserID,
			&review.UserName,
			&review.Stars,
			&review.Comment,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}

// # Analytics Repository Implementation

/*
Analytics returns the instructor dashboard metrics for a single course.

Description: Aggregates across three tables in one round-trip. Enrollment is
the entitlement count, revenue sums completed orders, and the rating figures
come straight from the course accumulators.

Parameters:
  - context: context.Context
  - courseID: string (UUID)

Returns:
  - *Analytics: Aggregated metrics
  - error: apperr.NotFound if the course is missing
*/
func (repository *courseRepository) Analytics(context context.Context, courseID string) (*Analytics, error) {

	query := fmt.Sprintf(`
		SELECT
			c.%s,
			(SELECT COUNT(*) FROM %s e WHERE e.%s = c.%s) AS enrolled,
			(SELECT COALESCE(SUM(o.%s), 0) FROM %s o WHERE o.%s = c.%s AND o.%s = 'completed') AS revenue,
			c.%s, c.%s
		FROM %s c
		WHERE c.%s = $1
	`,
		schema.CatalogCourse.ID,
		schema.CommerceEntitlement.Table, schema.CommerceEntitlement.CourseID, schema.CatalogCourse.ID,
		schema.CommerceOrder.AmountCents, schema.CommerceOrder.Table, schema.CommerceOrder.CourseID, schema.CatalogCourse.ID, schema.CommerceOrder.Status,
		schema.CatalogCourse.Rating, schema.CatalogCourse.NumberOfReviews,
		schema.CatalogCourse.Table,
		schema.CatalogCourse.ID,
	)

	analytics := &Analytics{}
	var ratingSum int

	err := repository.pool.QueryRow(context, query, courseID).Scan(
		&analytics.CourseID,
		&analytics.Enrolled,
		&analytics.RevenueCents,
		&ratingSum,
		&analytics.NumberOfReviews,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("course")
		}
		return nil, fmt.Errorf("postgres: failed to load course analytics: %w", err)
	}

	if analytics.NumberOfReviews > 0 {
		analytics.AverageRating = float64(ratingSum) / float64(analytics.NumberOfReviews)
	}

	return analytics, nil
}
