// Package push delivers web push notifications to a user's registered
// subscriptions through a pluggable Provider.
//
// A Subscription is one endpoint plus its encryption keys, owned by a user
// who typically holds several. The Sender fans a rendered Payload out to
// all active subscriptions. When a provider reports an endpoint as
// permanently gone, the sender deactivates that subscription so later
// dispatches skip it; the record is kept for audit, never deleted on
// failure. Throttling and every other failure class are transient and only
// counted. Successful deliveries stamp the subscription's LastSeenAt so
// stale endpoints can be identified.
//
//	store := push.NewMemoryStore()
//	sender, err := push.NewSender(provider, store)
//
//	sent, failed, err := sender.SendToUser(ctx, "user-123", push.Payload{
//		Title: "Task overdue",
//		Body:  "Quarterly report was due yesterday",
//		RequireInteraction: true,
//	})
//
// Providers implement the single-method Provider interface; NewLogProvider
// suits local development. VAPID credentials live in Config; build the
// sender with NewSenderFromConfig so a misconfigured channel fails at
// startup, not per notification.
//
// QueueSender routes push through the delivery queue for callers that want
// it on the same retry machinery as email; dispatch sends push inline by
// default.
package push
