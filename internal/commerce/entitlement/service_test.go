// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/coursio/internal/catalog/course"
	"github.com/taibuivan/coursio/internal/commerce/entitlement"
	"github.com/taibuivan/coursio/internal/platform/apperr"
)

// memoryLedger is an in-memory EntitlementRepository with the same
// insert-once semantics as the (userid, courseid) primary key.
type memoryLedger struct {
	grants map[string]*entitlement.Entitlement // "userID/courseID"
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{grants: map[string]*entitlement.Entitlement{}}
}

func (l *memoryLedger) Has(_ context.Context, userID, courseID string) (bool, error) {
	_, ok := l.grants[userID+"/"+courseID]
	return ok, nil
}

func (l *memoryLedger) Grant(_ context.Context, e *entitlement.Entitlement) (bool, error) {
	key := e.UserID + "/" + e.CourseID
	if _, ok := l.grants[key]; ok {
		return false, nil
	}
	e.GrantedAt = time.Now()
	l.grants[key] = e
	return true, nil
}

func (l *memoryLedger) ListByUser(_ context.Context, userID string) ([]*entitlement.PurchasedCourse, error) {
	var owned []*entitlement.PurchasedCourse
	for _, e := range l.grants {
		if e.UserID == userID {
			owned = append(owned, &entitlement.PurchasedCourse{CourseID: e.CourseID, GrantedAt: e.GrantedAt})
		}
	}
	return owned, nil
}

// stubCatalog serves a fixed set of courses.
type stubCatalog struct {
	courses map[string]*course.Course
}

func (c *stubCatalog) FindByID(_ context.Context, id string) (*course.Course, error) {
	if found, ok := c.courses[id]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("course")
}

func newLedgerService(t *testing.T) (*entitlement.Service, *memoryLedger, *stubCatalog) {
	t.Helper()
	ledger := newMemoryLedger()
	catalog := &stubCatalog{courses: map[string]*course.Course{}}
	service := entitlement.NewService(ledger, catalog, slog.New(slog.DiscardHandler))
	return service, ledger, catalog
}

/*
TestService_Grant_Idempotent verifies the fulfillment path converges
silently: granting an entitlement the user already holds is a no-op,
regardless of source.
*/
func TestService_Grant_Idempotent(t *testing.T) {
	service, ledger, _ := newLedgerService(t)
	ctx := context.Background()

	err := service.Grant(ctx, "user-1", "course-1", entitlement.SourceCheckout)
	require.NoError(t, err)

	// Webhook redelivery grants again. Still no error, still one row.
	err = service.Grant(ctx, "user-1", "course-1", entitlement.SourceCheckout)
	require.NoError(t, err)
	assert.Len(t, ledger.grants, 1)

	// The original source is preserved, not overwritten.
	assert.Equal(t, entitlement.SourceCheckout, ledger.grants["user-1/course-1"].Source)

	owned, err := service.Has(ctx, "user-1", "course-1")
	require.NoError(t, err)
	assert.True(t, owned)
}

/*
TestService_PurchaseDirect covers the explicit storefront purchase:
unknown courses 404, drafts 403, re-purchase 409, and the happy path
records a direct-source grant.
*/
func TestService_PurchaseDirect(t *testing.T) {
	service, ledger, catalog := newLedgerService(t)
	ctx := context.Background()

	catalog.courses["live"] = &course.Course{Title: "Live", Published: true}
	catalog.courses["draft"] = &course.Course{Title: "Draft", Published: false}

	t.Run("unknown_course", func(t *testing.T) {
		err := service.PurchaseDirect(ctx, "user-1", "ghost")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("draft_course", func(t *testing.T) {
		err := service.PurchaseDirect(ctx, "user-1", "draft")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Empty(t, ledger.grants)
	})

	t.Run("happy_path", func(t *testing.T) {
		err := service.PurchaseDirect(ctx, "user-1", "live")
		require.NoError(t, err)
		assert.Equal(t, entitlement.SourceDirect, ledger.grants["user-1/live"].Source)
	})

	t.Run("repurchase_conflicts", func(t *testing.T) {
		err := service.PurchaseDirect(ctx, "user-1", "live")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		assert.Len(t, ledger.grants, 1)
	})
}

/*
TestService_ListPurchased returns only the requesting user's library.
*/
func TestService_ListPurchased(t *testing.T) {
	service, _, catalog := newLedgerService(t)
	ctx := context.Background()

	catalog.courses["c1"] = &course.Course{Published: true}
	catalog.courses["c2"] = &course.Course{Published: true}

	require.NoError(t, service.PurchaseDirect(ctx, "user-1", "c1"))
	require.NoError(t, service.PurchaseDirect(ctx, "user-1", "c2"))
	require.NoError(t, service.PurchaseDirect(ctx, "user-2", "c1"))

	owned, err := service.ListPurchased(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	owned, err = service.ListPurchased(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, owned)
}
