package push

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriptionKeys are the per-subscription encryption keys handed over by
// the client at registration time.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is one push endpoint owned by a user. A user typically holds
// several, one per browser or device. Dead subscriptions are deactivated
// rather than deleted so the record stays auditable.
type Subscription struct {
	ID            uuid.UUID        `json:"id"`
	UserID        string           `json:"user_id"`
	Endpoint      string           `json:"endpoint"`
	Keys          SubscriptionKeys `json:"keys"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	LastSeenAt    *time.Time       `json:"last_seen_at,omitempty"`
	DeactivatedAt *time.Time       `json:"deactivated_at,omitempty"`
}

// Validate checks the subscription carries everything a provider needs.
func (s Subscription) Validate() error {
	if s.UserID == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(s.Endpoint) == "" {
		return ErrMissingEndpoint
	}
	if s.Keys.P256dh == "" || s.Keys.Auth == "" {
		return ErrMissingKeys
	}
	return nil
}
