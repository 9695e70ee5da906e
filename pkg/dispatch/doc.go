// Package dispatch orchestrates notification delivery: given one event, it
// filters recipients per channel through their preferences, renders
// channel-specific payloads from the event data and fans out to the three
// channels, returning a per-channel result summary.
//
// Channel strategies differ on purpose. Email is submitted as delivery
// queue jobs so it gets retry and backoff; a submission failure counts as
// failed immediately. Push is delivered inline, concurrently per
// recipient, fanning out to each user's active subscriptions. In-app
// records are created synchronously and, when a presence channel is
// configured, pushed to the user's live sessions best effort.
//
// Dispatch returns an error only for structurally invalid events (unknown
// type, missing tenant, empty recipients). Per-recipient failures never
// abort other recipients or channels; they surface as counters in the
// result.
//
//	dispatcher, err := dispatch.New(evaluator, inboxSvc, enqueuer, pushSender, identity,
//		dispatch.WithPresence(dispatch.NewBroadcastPresence(broadcaster)),
//	)
//
//	result, err := dispatcher.Dispatch(ctx, notification.Event{
//		Type:       notification.EventTaskAssigned,
//		TenantID:   tenantID,
//		Recipients: []string{"user-1", "user-2"},
//		Data:       map[string]any{"taskTitle": "Quarterly report", "taskId": "t-42"},
//	})
//
// Content for the closed set of event types comes from DefaultRenderer,
// which renders per-type templates with a process-wide compiled template
// cache. Hosts with their own content pipeline implement Renderer and pass
// it via WithRenderer.
package dispatch
