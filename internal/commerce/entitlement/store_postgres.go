// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taibuivan/coursio/internal/platform/database/schema"
	"github.com/taibuivan/coursio/internal/platform/dberr"
)

// # PostgreSQL Repository

// entitlementRepository implements the [EntitlementRepository] interface using pgx.
type entitlementRepository struct {
	pool *pgxpool.Pool
}

// NewEntitlementRepository constructs a PostgreSQL backed ledger store.
func NewEntitlementRepository(pool *pgxpool.Pool) EntitlementRepository {
	return &entitlementRepository{pool: pool}
}

/*
Has reports whether a (user, course) ledger row exists.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - courseID: string (UUID)

Returns:
  - bool: Ownership state
  - error: Execution failures
*/
func (repository *entitlementRepository) Has(context context.Context, userID, courseID string) (bool, error) {

	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)",
		schema.CommerceEntitlement.Table,
		schema.CommerceEntitlement.UserID,
		schema.CommerceEntitlement.CourseID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check entitlement: %w", err)
	}

	return exists, nil
}

/*
Grant inserts a ledger row, converging silently when it already exists.

Description: The (userid, courseid) primary key plus ON CONFLICT DO NOTHING
gives the grant set semantics: two concurrent fulfillments of the same
purchase insert exactly one row, and redelivered webhooks are harmless.

Parameters:
  - context: context.Context
  - grant: *Entitlement (UserID, CourseID, Source)

Returns:
  - bool: true when this call inserted the row
  - error: apperr.Unprocessable when user or course is missing, execution errors otherwise
*/
func (repository *entitlementRepository) Grant(context context.Context, grant *Entitlement) (bool, error) {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (%s, %s) DO NOTHING
	`,
		schema.CommerceEntitlement.Table,
		schema.CommerceEntitlement.UserID, schema.CommerceEntitlement.CourseID,
		schema.CommerceEntitlement.Source, schema.CommerceEntitlement.GrantedAt,
		schema.CommerceEntitlement.UserID, schema.CommerceEntitlement.CourseID,
	)

	result, err := repository.pool.Exec(context, query, grant.UserID, grant.CourseID, grant.Source)
	if err != nil {
		return false, dberr.Wrap(err, "entitlement_grant")
	}

	return result.RowsAffected() > 0, nil
}

/*
ListByUser returns the user's library, newest grants first.

Parameters:
  - context: context.Context
  - userID: string (UUID)

Returns:
  - []*PurchasedCourse: Library entries joined to course display fields
  - error: Execution failures
*/
func (repository *entitlementRepository) ListByUser(context context.Context, userID string) ([]*PurchasedCourse, error) {

	query := fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			e.%s
		FROM %s e
		JOIN %s c ON c.%s = e.%s
		WHERE e.%s = $1
		ORDER BY e.%s DESC
	`,
		schema.CatalogCourse.ID, schema.CatalogCourse.Title, schema.CatalogCourse.Slug,
		schema.CatalogCourse.Description, schema.CatalogCourse.ImageLink, schema.CatalogCourse.Category,
		schema.CatalogCourse.Level, schema.CatalogCourse.DurationMinutes,
		schema.CatalogCourse.PriceCents, schema.CatalogCourse.Currency,
		schema.CommerceEntitlement.GrantedAt,
		schema.CommerceEntitlement.Table,
		schema.CatalogCourse.Table, schema.CatalogCourse.ID, schema.CommerceEntitlement.CourseID,
		schema.CommerceEntitlement.UserID,
		schema.CommerceEntitlement.GrantedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list entitlements: %w", err)
	}
	defer rows.Close()

	var purchased []*PurchasedCourse
	for rows.Next() {
		entry := &PurchasedCourse{}
		if err := rows.Scan(
			&entry.CourseID,
			&entry.Title,
			&entry.Slug,
			&entry.Description,
			&entry.ImageLink,
			&entry.Category,
			&entry.Level,
			&entry.DurationMinutes,
			&entry.PriceCents,
			&entry.Currency,
			&entry.GrantedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan entitlement: %w", err)
		}
		purchased = append(purchased, entry)
	}

	return purchased, nil
}
