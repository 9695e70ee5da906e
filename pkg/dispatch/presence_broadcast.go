package dispatch

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
	"github.com/dmitrymomot/notifykit/pkg/inbox"
)

// LiveNotification is the frame pushed to live sessions when an in-app
// notification is created. Session handlers filter on tenant and user.
type LiveNotification struct {
	TenantID     uuid.UUID          `json:"tenant_id"`
	UserID       string             `json:"user_id"`
	Notification inbox.Notification `json:"notification"`
}

// BroadcastPresence implements Presence on top of an in-process
// broadcaster. Session handlers subscribe and forward frames for their own
// user; slow consumers drop frames instead of blocking dispatch.
type BroadcastPresence struct {
	broadcaster broadcast.Broadcaster[LiveNotification]
}

// NewBroadcastPresence wraps a broadcaster as a presence channel.
func NewBroadcastPresence(b broadcast.Broadcaster[LiveNotification]) *BroadcastPresence {
	return &BroadcastPresence{broadcaster: b}
}

func (p *BroadcastPresence) SendToUser(ctx context.Context, tenantID uuid.UUID, userID string, notif inbox.Notification) error {
	return p.broadcaster.Broadcast(ctx, broadcast.Message[LiveNotification]{
		Data: LiveNotification{
			TenantID:     tenantID,
			UserID:       userID,
			Notification: notif,
		},
	})
}

// HubPresence implements Presence on top of a keyed hub so each session
// subscribes only to its own user's stream instead of filtering a shared
// feed. Keys are tenant-scoped; use PresenceKey on the subscribing side.
type HubPresence struct {
	hub *broadcast.Hub[LiveNotification]
}

// NewHubPresence wraps a hub as a presence channel.
func NewHubPresence(hub *broadcast.Hub[LiveNotification]) *HubPresence {
	return &HubPresence{hub: hub}
}

// PresenceKey is the hub key for one user's live stream within a tenant.
func PresenceKey(tenantID uuid.UUID, userID string) string {
	return tenantID.String() + ":" + userID
}

func (p *HubPresence) SendToUser(ctx context.Context, tenantID uuid.UUID, userID string, notif inbox.Notification) error {
	return p.hub.Publish(ctx, PresenceKey(tenantID, userID), LiveNotification{
		TenantID:     tenantID,
		UserID:       userID,
		Notification: notif,
	})
}
