// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"log/slog"

	"github.com/taibuivan/coursio/internal/commerce/entitlement"
	"github.com/taibuivan/coursio/internal/platform/apperr"
	"github.com/taibuivan/coursio/pkg/uuid"
)

// # Service Layer

// DeliveryTracker records processed webhook event IDs so duplicates can be
// skipped. Implemented by [EventMarker]; failures are advisory.
//
// An event must only be marked AFTER its side effects landed. Marking first
// would let a transient fulfillment failure consume the event: the provider
// redelivers, the marker says "seen", and the grant is lost.
type DeliveryTracker interface {
	AlreadyDelivered(context context.Context, eventID string) (bool, error)
	MarkDelivered(context context.Context, eventID string) error
}

// Service coordinates checkout creation and webhook fulfillment.
//
// # Trust Boundary
//
// Nothing from a webhook request is acted on before its signature
// verifies. After that, fulfillment converges through the ledger's
// idempotent grant, so provider retries and duplicate deliveries are safe.
type Service struct {
	provider  Provider
	orderRepo OrderRepository
	ledger    Ledger
	catalog   CourseReader
	events    DeliveryTracker
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(provider Provider, orderRepo OrderRepository, ledger Ledger, catalog CourseReader, events DeliveryTracker, logger *slog.Logger) *Service {
	return &Service{
		provider:  provider,
		orderRepo: orderRepo,
		ledger:    ledger,
		catalog:   catalog,
		events:    events,
		logger:    logger,
	}
}

// # Checkout

/*
CreateCheckout opens a hosted checkout session for a course.

Description: Validates every precondition BEFORE touching the provider:
the course must exist, be published, and not already be owned by the
buyer. An AlreadyOwned conflict therefore never creates a provider
session. On success a local order row is recorded in the 'created' state
so the session appears in the buyer's history immediately.

Parameters:
  - context: context.Context
  - userID: string (The purchasing user)
  - courseID: string (UUID)

Returns:
  - *Session: The open session with its redirect URL
  - error: NotFound, Forbidden, Conflict, or provider failures
*/
func (service *Service) CreateCheckout(context context.Context, userID, courseID string) (*Session, error) {

	// Course preconditions
	target, err := service.catalog.FindByID(context, courseID)
	if err != nil {
		return nil, err
	}
	if !target.Published {
		return nil, apperr.Forbidden("Course is not published")
	}

	// Ownership short-circuit, before any provider call
	owned, err := service.ledger.Has(context, userID, courseID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, apperr.Conflict("You already purchased this course")
	}

	// Provider session
	session, err := service.provider.CreateSession(context, CheckoutInput{
		UserID:            userID,
		CourseID:          courseID,
		CourseTitle:       target.Title,
		CourseDescription: target.Description,
		ImageLink:         target.ImageLink,
		AmountCents:       target.PriceCents,
		Currency:          target.Currency,
	})
	if err != nil {
		return nil, err
	}

	// Local order trail
	order := &Order{
		ID:                uuid.New(),
		UserID:            userID,
		CourseID:          courseID,
		CheckoutSessionID: session.ID,
		AmountCents:       target.PriceCents,
		Currency:          target.Currency,
		Status:            OrderStatusCreated,
	}
	if err := service.orderRepo.Create(context, order); err != nil {
		return nil, err
	}

	service.logger.Info("checkout_session_created",
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
		slog.String("session_id", session.ID),
	)

	return session, nil
}

/*
GetStatus returns the provider-side state of the buyer's own session.

Description: Read-through to the provider so the storefront's success
page shows live payment state even before the webhook lands. The local
order row scopes the lookup to its owner; other users' sessions read as
missing.

Parameters:
  - context: context.Context
  - userID: string (The requesting user)
  - sessionID: string (Provider session identifier)

Returns:
  - *Session: Current session state
  - error: NotFound when the session is not the caller's
*/
func (service *Service) GetStatus(context context.Context, userID, sessionID string) (*Session, error) {

	order, err := service.orderRepo.FindBySessionID(context, sessionID)
	if err != nil {
		return nil, err
	}

	// Another user's session reads as missing, not forbidden
	if order.UserID != userID {
		return nil, apperr.NotFound("order")
	}

	return service.provider.GetSession(context, sessionID)
}

/*
History returns the user's checkout attempts, newest first.

Parameters:
  - context: context.Context
  - userID: string (UUID)

Returns:
  - []*Order: Order history with course titles
  - error: Repository failures
*/
func (service *Service) History(context context.Context, userID string) ([]*Order, error) {
	return service.orderRepo.ListByUser(context, userID)
}

// # Fulfillment

/*
HandleWebhook processes a raw provider webhook delivery.

Description: Signature verification happens first; an unverifiable
payload is rejected with no side effects. Verified duplicates (by event
ID) are skipped via the Redis marker, which is written only AFTER the
side effects succeed: a failed fulfillment leaves the event unmarked so
the provider's redelivery retries it. A marker failure only logs; the
ledger's idempotent grant is what actually makes redelivery safe.

Completed checkout sessions grant the entitlement and complete the
order; expired sessions transition the order so history reflects the
abandoned attempt.

Parameters:
  - context: context.Context
  - payload: []byte (Raw request body, unmodified)
  - signature: string (Provider signature header)

Returns:
  - error: UpstreamRejected for bad signatures, grant failures otherwise
*/
func (service *Service) HandleWebhook(context context.Context, payload []byte, signature string) error {

	// ── 1. Signature Verification ─────────────────────────────────────────
	event, err := service.provider.VerifyEvent(payload, signature)
	if err != nil {
		service.logger.Warn("webhook_signature_rejected")
		return err
	}

	// ── 2. Duplicate Delivery Check ───────────────────────────────────────
	delivered, err := service.events.AlreadyDelivered(context, event.ID)
	if err != nil {
		// Marker unavailable: proceed, the ledger grant is idempotent
		service.logger.Warn("webhook_dedup_unavailable", slog.String("event_id", event.ID))
	} else if delivered {
		service.logger.Info("webhook_event_duplicate", slog.String("event_id", event.ID))
		return nil
	}

	// ── 3. Event Dispatch ─────────────────────────────────────────────────
	switch event.Type {
	case EventCheckoutCompleted:
		err = service.fulfill(context, event)
	case EventCheckoutExpired:
		err = service.expire(context, event)
	default:
		// Unsubscribed event types are acknowledged and dropped
		return nil
	}
	if err != nil {
		// The event stays unmarked so the provider's redelivery retries it
		return err
	}

	// ── 4. Delivery Record ────────────────────────────────────────────────
	// Marked only after the side effects landed. A marker failure here just
	// means a duplicate may get reprocessed, which the ledger absorbs.
	if err := service.events.MarkDelivered(context, event.ID); err != nil {
		service.logger.Warn("webhook_dedup_mark_failed", slog.String("event_id", event.ID))
	}

	return nil
}

// fulfill grants the entitlement for a completed, paid checkout session.
func (service *Service) fulfill(context context.Context, event *Event) error {

	session := event.Session

	if session.PaymentStatus != "paid" {
		service.logger.Warn("webhook_completed_unpaid", slog.String("session_id", session.ID))
		return nil
	}

	userID := session.Metadata[MetadataUserID]
	courseID := session.Metadata[MetadataCourseID]
	if userID == "" || courseID == "" {
		// A session this system did not create; acknowledge and move on
		service.logger.Warn("webhook_metadata_missing", slog.String("session_id", session.ID))
		return nil
	}

	// Idempotent grant: redelivery converges here
	if err := service.ledger.Grant(context, userID, courseID, entitlement.SourceCheckout); err != nil {
		return err
	}

	// Order trail transition is best-effort relative to the grant
	updated, err := service.orderRepo.UpdateStatusBySession(context, session.ID, OrderStatusCompleted)
	if err != nil {
		return err
	}
	if !updated {
		service.logger.Warn("webhook_order_missing", slog.String("session_id", session.ID))
	}

	service.logger.Info("checkout_fulfilled",
		slog.String("user_id", userID),
		slog.String("course_id", courseID),
		slog.String("session_id", session.ID),
	)

	return nil
}

// expire transitions the order for an abandoned checkout session.
func (service *Service) expire(context context.Context, event *Event) error {

	updated, err := service.orderRepo.UpdateStatusBySession(context, event.Session.ID, OrderStatusExpired)
	if err != nil {
		return err
	}
	if !updated {
		service.logger.Warn("webhook_order_missing", slog.String("session_id", event.Session.ID))
	}

	return nil
}
