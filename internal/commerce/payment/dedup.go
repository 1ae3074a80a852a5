// Copyright (c) 2026 Coursio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/taibuivan/coursio/internal/platform/constants"
)

// # Webhook Event Deduplication

// EventMarker records processed webhook event IDs in Redis.
//
// This is defense-in-depth, not the correctness mechanism: the entitlement
// ledger's set semantics already make redelivery harmless. The marker just
// lets the coordinator skip the work (and the log noise) on obvious
// duplicates. Failures here are logged and ignored by the caller.
//
// The check and the mark are deliberately separate calls: an event is
// recorded only after its fulfillment side effects succeed, so a transient
// failure leaves the event unclaimed for the provider's redelivery.
type EventMarker struct {
	client *redis.Client
}

// NewEventMarker constructs an [EventMarker] on the shared Redis client.
func NewEventMarker(client *redis.Client) *EventMarker {
	return &EventMarker{client: client}
}

/*
AlreadyDelivered reports whether an event ID was previously recorded.

Parameters:
  - context: context.Context
  - eventID: string (Provider event identifier)

Returns:
  - bool: true when the event was already processed to completion
  - error: Redis failures (callers treat these as "assume not delivered")
*/
func (marker *EventMarker) AlreadyDelivered(context context.Context, eventID string) (bool, error) {

	key := constants.RedisPrefixPaymentEvent + eventID

	found, err := marker.client.Exists(context, key).Result()
	if err != nil {
		return false, fmt.Errorf("payment: event dedup check failed: %w", err)
	}

	return found > 0, nil
}

/*
MarkDelivered records an event ID after its side effects have landed.

Parameters:
  - context: context.Context
  - eventID: string (Provider event identifier)

Returns:
  - error: Redis failures (callers log and continue)
*/
func (marker *EventMarker) MarkDelivered(context context.Context, eventID string) error {

	key := constants.RedisPrefixPaymentEvent + eventID

	if err := marker.client.Set(context, key, 1, constants.PaymentEventDedupTTL).Err(); err != nil {
		return fmt.Errorf("payment: event dedup mark failed: %w", err)
	}

	return nil
}
