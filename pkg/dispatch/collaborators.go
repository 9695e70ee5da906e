package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/inbox"
)

// User is the display identity the email channel needs for a recipient.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Identity resolves user ids to display identities. Implemented by the
// host application; the dispatcher never guesses addresses.
type Identity interface {
	GetUsers(ctx context.Context, userIDs []string) ([]User, error)
}

// Presence pushes a freshly created in-app notification to a user's live
// sessions. Best effort and fire-and-forget: a failure here never affects
// the dispatch outcome.
type Presence interface {
	SendToUser(ctx context.Context, tenantID uuid.UUID, userID string, notif inbox.Notification) error
}

// NoopPresence is the Presence used when no live session channel exists.
type NoopPresence struct{}

func (NoopPresence) SendToUser(ctx context.Context, tenantID uuid.UUID, userID string, notif inbox.Notification) error {
	return nil
}
