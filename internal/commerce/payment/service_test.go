// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/coursio/internal/catalog/course"
	"github.com/taibuivan/coursio/internal/commerce/entitlement"
	"github.com/taibuivan/coursio/internal/commerce/payment"
	"github.com/taibuivan/coursio/internal/platform/apperr"
)

// fakeProvider verifies events by comparing the signature against a fixed
// secret string and counts session creations.
type fakeProvider struct {
	createCalls int
	sessions    map[string]*payment.Session
	events      map[string]*payment.Event // keyed by signature
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		sessions: map[string]*payment.Session{},
		events:   map[string]*payment.Event{},
	}
}

func (p *fakeProvider) CreateSession(_ context.Context, input payment.CheckoutInput) (*payment.Session, error) {
	p.createCalls++
	session := &payment.Session{
		ID:          "cs_test_1",
		URL:         "https://checkout.test/cs_test_1",
		Status:      "open",
		AmountCents: input.AmountCents,
		Currency:    input.Currency,
	}
	p.sessions[session.ID] = session
	return session, nil
}

func (p *fakeProvider) GetSession(_ context.Context, sessionID string) (*payment.Session, error) {
	if session, ok := p.sessions[sessionID]; ok {
		return session, nil
	}
	return nil, apperr.NotFound("session")
}

func (p *fakeProvider) VerifyEvent(_ []byte, signature string) (*payment.Event, error) {
	if event, ok := p.events[signature]; ok {
		return event, nil
	}
	return nil, apperr.UpstreamRejected("Invalid webhook signature")
}

// memoryOrders is an in-memory OrderRepository keyed by session ID.
type memoryOrders struct {
	orders map[string]*payment.Order
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: map[string]*payment.Order{}}
}

func (r *memoryOrders) Create(_ context.Context, order *payment.Order) error {
	r.orders[order.CheckoutSessionID] = order
	return nil
}

func (r *memoryOrders) FindBySessionID(_ context.Context, sessionID string) (*payment.Order, error) {
	if order, ok := r.orders[sessionID]; ok {
		return order, nil
	}
	return nil, apperr.NotFound("order")
}

func (r *memoryOrders) UpdateStatusBySession(_ context.Context, sessionID string, status payment.OrderStatus) (bool, error) {
	order, ok := r.orders[sessionID]
	if !ok {
		return false, nil
	}
	order.Status = status
	return true, nil
}

func (r *memoryOrders) ListByUser(_ context.Context, userID string) ([]*payment.Order, error) {
	var owned []*payment.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			owned = append(owned, order)
		}
	}
	return owned, nil
}

// countingLedger backs payment.Ledger with grant bookkeeping. Setting
// failGrants makes that many Grant calls fail before recovering.
type countingLedger struct {
	grants     map[string]int // "userID/courseID" -> grant calls
	owned      map[string]bool
	lastSource entitlement.Source
	failGrants int
}

func newCountingLedger() *countingLedger {
	return &countingLedger{grants: map[string]int{}, owned: map[string]bool{}}
}

func (l *countingLedger) Has(_ context.Context, userID, courseID string) (bool, error) {
	return l.owned[userID+"/"+courseID], nil
}

func (l *countingLedger) Grant(_ context.Context, userID, courseID string, source entitlement.Source) error {
	if l.failGrants > 0 {
		l.failGrants--
		return assert.AnError
	}
	l.grants[userID+"/"+courseID]++
	l.owned[userID+"/"+courseID] = true
	l.lastSource = source
	return nil
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

// memoryTracker is a set-based DeliveryTracker; failing toggles an error.
type memoryTracker struct {
	seen    map[string]bool
	failing bool
}

func newMemoryTracker() *memoryTracker {
	return &memoryTracker{seen: map[string]bool{}}
}

func (tr *memoryTracker) AlreadyDelivered(_ context.Context, eventID string) (bool, error) {
	if tr.failing {
		return false, assert.AnError
	}
	return tr.seen[eventID], nil
}

func (tr *memoryTracker) MarkDelivered(_ context.Context, eventID string) error {
	if tr.failing {
		return assert.AnError
	}
	tr.seen[eventID] = true
	return nil
}

type paymentFixture struct {
	service  *payment.Service
	provider *fakeProvider
	orders   *memoryOrders
	ledger   *countingLedger
	catalog  *stubCatalog
	tracker  *memoryTracker
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	fixture := &paymentFixture{
		provider: newFakeProvider(),
		orders:   newMemoryOrders(),
		ledger:   newCountingLedger(),
		catalog:  &stubCatalog{courses: map[string]*course.Course{}},
		tracker:  newMemoryTracker(),
	}
	fixture.service = payment.NewService(
		fixture.provider, fixture.orders, fixture.ledger,
		fixture.catalog, fixture.tracker, slog.New(slog.DiscardHandler),
	)
	return fixture
}

func completedEvent(eventID, sessionID, userID, courseID, paymentStatus string) *payment.Event {
	return &payment.Event{
		ID:   eventID,
		Type: payment.EventCheckoutCompleted,
		Session: &payment.Session{
			ID:            sessionID,
			Status:        "complete",
			PaymentStatus: paymentStatus,
			Metadata: map[string]string{
				payment.MetadataUserID:   userID,
				payment.MetadataCourseID: courseID,
			},
		},
	}
}

/*
TestService_CreateCheckout covers the checkout preconditions: unknown
courses, drafts, and already-owned courses are all rejected BEFORE any
provider call, and the happy path records a created-state order.
*/
func TestService_CreateCheckout(t *testing.T) {
	fixture := newPaymentFixture(t)
	ctx := context.Background()

	fixture.catalog.courses["live"] = &course.Course{Title: "Live", Published: true, PriceCents: 4900, Currency: "usd"}
	fixture.catalog.courses["draft"] = &course.Course{Title: "Draft", Published: false}

	t.Run("unknown_course", func(t *testing.T) {
		_, err := fixture.service.CreateCheckout(ctx, "user-1", "ghost")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
		assert.Zero(t, fixture.provider.createCalls)
	})

	t.Run("draft_course", func(t *testing.T) {
		_, err := fixture.service.CreateCheckout(ctx, "user-1", "draft")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		assert.Zero(t, fixture.provider.createCalls)
	})

	t.Run("already_owned", func(t *testing.T) {
		fixture.ledger.owned["user-1/live"] = true
		_, err := fixture.service.CreateCheckout(ctx, "user-1", "live")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		assert.Zero(t, fixture.provider.createCalls, "ownership must short-circuit before the provider")
	})

	t.Run("happy_path", func(t *testing.T) {
		session, err := fixture.service.CreateCheckout(ctx, "user-2", "live")
		require.NoError(t, err)
		assert.Equal(t, 1, fixture.provider.createCalls)
		assert.NotEmpty(t, session.URL)

		order := fixture.orders.orders[session.ID]
		require.NotNil(t, order)
		assert.Equal(t, "user-2", order.UserID)
		assert.Equal(t, payment.OrderStatusCreated, order.Status)
		assert.Equal(t, int64(4900), order.AmountCents)
	})
}

/*
TestService_GetStatus scopes session lookups to their owner: another
user's session reads as missing, not forbidden.
*/
func TestService_GetStatus(t *testing.T) {
	fixture := newPaymentFixture(t)
	ctx := context.Background()

	fixture.catalog.courses["live"] = &course.Course{Title: "Live", Published: true, PriceCents: 100, Currency: "usd"}
	session, err := fixture.service.CreateCheckout(ctx, "user-1", "live")
	require.NoError(t, err)

	got, err := fixture.service.GetStatus(ctx, "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = fixture.service.GetStatus(ctx, "user-2", session.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_HandleWebhook_Signature proves an unverifiable payload is
rejected with zero side effects.
*/
func TestService_HandleWebhook_Signature(t *testing.T) {
	fixture := newPaymentFixture(t)

	err := fixture.service.HandleWebhook(context.Background(), []byte(`{}`), "bad-signature")
	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_ERROR", apperr.As(err).Code)

	assert.Empty(t, fixture.ledger.grants, "no grant on signature failure")
	assert.Empty(t, fixture.tracker.seen, "dedup marker untouched on signature failure")
}

/*
TestService_HandleWebhook_Fulfillment exercises the completed-session
path: the entitlement lands, the order completes, and both duplicate
deliveries and a dead dedup marker converge to a single grant state.
*/
func TestService_HandleWebhook_Fulfillment(t *testing.T) {
	fixture := newPaymentFixture(t)
	ctx := context.Background()

	fixture.catalog.courses["live"] = &course.Course{Title: "Live", Published: true, PriceCents: 100, Currency: "usd"}
	session, err := fixture.service.CreateCheckout(ctx, "user-1", "live")
	require.NoError(t, err)

	fixture.provider.events["sig-ok"] = completedEvent("evt_1", session.ID, "user-1", "live", "paid")

	err = fixture.service.HandleWebhook(ctx, []byte(`{}`), "sig-ok")
	require.NoError(t, err)
	assert.Equal(t, 1, fixture.ledger.grants["user-1/live"])
	assert.Equal(t, entitlement.SourceCheckout, fixture.ledger.lastSource)
	assert.Equal(t, payment.OrderStatusCompleted, fixture.orders.orders[session.ID].Status)

	// Redelivery of the same event ID is skipped by the marker.
	err = fixture.service.HandleWebhook(ctx, []byte(`{}`), "sig-ok")
	require.NoError(t, err)
	assert.Equal(t, 1, fixture.ledger.grants["user-1/live"])

	// Marker outage: the event is processed again, but the idempotent
	// grant keeps the ledger converged.
	fixture.tracker.failing = true
	err = fixture.service.HandleWebhook(ctx, []byte(`{}`), "sig-ok")
	require.NoError(t, err)
	assert.Equal(t, 2, fixture.ledger.grants["user-1/live"], "grant called again, converging idempotently")
	assert.True(t, fixture.ledger.owned["user-1/live"])
}

/*
TestService_HandleWebhook_RetryAfterGrantFailure drives a transient grant
failure followed by a redelivery of the same event. The failed delivery
must NOT consume the event: the retry has to land the entitlement and
complete the order.
*/
func TestService_HandleWebhook_RetryAfterGrantFailure(t *testing.T) {
	fixture := newPaymentFixture(t)
	ctx := context.Background()

	fixture.catalog.courses["live"] = &course.Course{Title: "Live", Published: true, PriceCents: 100, Currency: "usd"}
	session, err := fixture.service.CreateCheckout(ctx, "user-1", "live")
	require.NoError(t, err)

	fixture.provider.events["sig-ok"] = completedEvent("evt_1", session.ID, "user-1", "live", "paid")
	fixture.ledger.failGrants = 1

	// First delivery fails at the grant and surfaces the error so the
	// provider schedules a redelivery.
	err = fixture.service.HandleWebhook(ctx, []byte(`{}`), "sig-ok")
	require.Error(t, err)
	assert.False(t, fixture.ledger.owned["user-1/live"])
	assert.False(t, fixture.tracker.seen["evt_1"], "a failed delivery must stay unmarked")
	assert.Equal(t, payment.OrderStatusCreated, fixture.orders.orders[session.ID].Status)

	// The redelivered event must be processed, not skipped as a duplicate.
	err = fixture.service.HandleWebhook(ctx, []byte(`{}`), "sig-ok")
	require.NoError(t, err)
	assert.True(t, fixture.ledger.owned["user-1/live"], "redelivery must land the entitlement")
	assert.Equal(t, 1, fixture.ledger.grants["user-1/live"])
	assert.Equal(t, payment.OrderStatusCompleted, fixture.orders.orders[session.ID].Status)
	assert.True(t, fixture.tracker.seen["evt_1"], "marked only after fulfillment succeeded")
}

/*
TestService_HandleWebhook_Guards covers the fulfillment no-ops: unpaid
sessions, foreign sessions without metadata, and unsubscribed event
types are acknowledged without granting.
*/
func TestService_HandleWebhook_Guards(t *testing.T) {
	fixture := newPaymentFixture(t)
	ctx := context.Background()

	fixture.provider.events["unpaid"] = completedEvent("evt_1", "cs_1", "user-1", "live", "unpaid")
	fixture.provider.events["no-meta"] = &payment.Event{
		ID: "evt_2", Type: payment.EventCheckoutCompleted,
		Session: &payment.Session{ID: "cs_2", PaymentStatus: "paid", Metadata: map[string]string{}},
	}
	fixture.provider.events["other"] = &payment.Event{
		ID: "evt_3", Type: "charge.refunded",
		Session: &payment.Session{ID: "cs_3"},
	}

	for _, signature := range []string{"unpaid", "no-meta", "other"} {
		err := fixture.service.HandleWebhook(ctx, []byte(`{}`), signature)
		require.NoError(t, err, signature)
	}
	assert.Empty(t, fixture.ledger.grants)
}

/*
TestService_HandleWebhook_Expired transitions the order so history shows
the abandoned attempt.
*/
func TestService_HandleWebhook_Expired(t *testing.T) {
	fixture := newPaymentFixture(t)
	ctx := context.Background()

	fixture.catalog.courses["live"] = &course.Course{Title: "Live", Published: true, PriceCents: 100, Currency: "usd"}
	session, err := fixture.service.CreateCheckout(ctx, "user-1", "live")
	require.NoError(t, err)

	fixture.provider.events["expired"] = &payment.Event{
		ID: "evt_1", Type: payment.EventCheckoutExpired,
		Session: &payment.Session{ID: session.ID},
	}

	err = fixture.service.HandleWebhook(ctx, []byte(`{}`), "expired")
	require.NoError(t, err)
	assert.Equal(t, payment.OrderStatusExpired, fixture.orders.orders[session.ID].Status)
	assert.Empty(t, fixture.ledger.grants)

	history, err := fixture.service.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, payment.OrderStatusExpired, history[0].Status)
}
