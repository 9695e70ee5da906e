package push

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStore persists push subscriptions.
type SubscriptionStore interface {
	// Save stores a new subscription or refreshes an existing one with the
	// same endpoint, reactivating it for the given user.
	Save(ctx context.Context, sub Subscription) error

	// ActiveForUser returns the user's live subscriptions.
	ActiveForUser(ctx context.Context, userID string) ([]Subscription, error)

	// MarkSeen records the time of the latest successful delivery.
	MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) error

	// Deactivate clears the liveness flag. The record is kept.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Delete removes a subscription, for explicit client unsubscription.
	Delete(ctx context.Context, id uuid.UUID) error
}
