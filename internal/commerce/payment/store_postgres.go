// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/internal/platform/database/schema"
	"github.com/taibuivan/coursio/internal/platform/dberr"
)

// # PostgreSQL Repository

// orderColumns is the shared projection for order lookups.
var orderColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.CommerceOrder.ID, schema.CommerceOrder.UserID, schema.CommerceOrder.CourseID,
	schema.CommerceOrder.CheckoutSessionID, schema.CommerceOrder.AmountCents, schema.CommerceOrder.Currency,
	schema.CommerceOrder.Status, schema.CommerceOrder.CreatedAt, schema.CommerceOrder.UpdatedAt,
)

// orderRepository implements the [OrderRepository] interface using pgx.
type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository constructs a PostgreSQL backed order store.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

/*
Create persists a new order row.

Parameters:
  - context: context.Context
  - order: *Order (Fully populated except timestamps)

Returns:
  - error: apperr.Conflict on duplicate session id, execution errors otherwise
*/
func (repository *orderRepository) Create(context context.Context, order *Order) error {

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`,
		schema.CommerceOrder.Table,
		schema.CommerceOrder.ID, schema.CommerceOrder.UserID, schema.CommerceOrder.CourseID,
		schema.CommerceOrder.CheckoutSessionID, schema.CommerceOrder.AmountCents, schema.CommerceOrder.Currency,
		schema.CommerceOrder.Status, schema.CommerceOrder.CreatedAt, schema.CommerceOrder.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		order.ID,
		order.UserID,
		order.CourseID,
		order.CheckoutSessionID,
		order.AmountCents,
		order.Currency,
		order.Status,
	)
	if err != nil {
		return dberr.Wrap(err, "order_create")
	}

	return nil
}

/*
FindBySessionID returns the order tied to a provider session.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - *Order: Matching order
  - error: apperr.NotFound if missing
*/
func (repository *orderRepository) FindBySessionID(context context.Context, sessionID string) (*Order, error) {

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		orderColumns, schema.CommerceOrder.Table, schema.CommerceOrder.CheckoutSessionID,
	)

	order := &Order{}
	err := repository.pool.QueryRow(context, query, sessionID).Scan(
		&order.ID,
		&order.UserID,
		&order.CourseID,
		&order.CheckoutSessionID,
		&order.AmountCents,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order")
		}
		return nil, fmt.Errorf("postgres: failed to find order by session: %w", err)
	}

	return order, nil
}

/*
UpdateStatusBySession transitions the order tied to a provider session.

Parameters:
  - context: context.Context
  - sessionID: string
  - status: OrderStatus

Returns:
  - bool: true when a row was transitioned
  - error: Execution failures
*/
func (repository *orderRepository) UpdateStatusBySession(context context.Context, sessionID string, status OrderStatus) (bool, error) {

	query := fmt.Sprintf("UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2",
		schema.CommerceOrder.Table,
		schema.CommerceOrder.Status, schema.CommerceOrder.UpdatedAt,
		schema.CommerceOrder.CheckoutSessionID,
	)

	result, err := repository.pool.Exec(context, query, status, sessionID)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to update order status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

/*
ListByUser returns the user's order history, newest first.

Parameters:
  - context: context.Context
  - userID: string (UUID)

Returns:
  - []*Order: History entries with course titles joined in
  - error: Execution failures
*/
func (repository *orderRepository) ListByUser(context context.Context, userID string) ([]*Order, error) {

	query := fmt.Sprintf(`
		SELECT
			o.%s, o.%s, o.%s, c.%s, o.%s, o.%s, o.%s, o.%s, o.%s, o.%s
		FROM %s o
		JOIN %s c ON c.%s = o.%s
		WHERE o.%s = $1
		ORDER BY o.%s DESC
	`,
		schema.CommerceOrder.ID, schema.CommerceOrder.UserID, schema.CommerceOrder.CourseID,
		schema.CatalogCourse.Title,
		schema.CommerceOrder.CheckoutSessionID, schema.CommerceOrder.AmountCents, schema.CommerceOrder.Currency,
		schema.CommerceOrder.Status, schema.CommerceOrder.CreatedAt, schema.CommerceOrder.UpdatedAt,
		schema.CommerceOrder.Table,
		schema.CatalogCourse.Table, schema.CatalogCourse.ID, schema.CommerceOrder.CourseID,
		schema.CommerceOrder.UserID,
		schema.CommerceOrder.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		order := &Order{}
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.CourseID,
			&order.CourseTitle,
			&order.CheckoutSessionID,
			&order.AmountCents,
			&order.Currency,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}
