// Package notification defines the shared domain vocabulary of the dispatch
// engine: the closed set of event types, the delivery channels, the Event
// input consumed by the dispatcher, and the per-channel Result summary it
// returns.
//
// The event type enumeration is deliberately closed. Content builders and
// preference gates switch exhaustively over it, so adding a type is a
// compile-time-checked, single-location change rather than a scattered
// string-keyed lookup.
//
// # Usage
//
//	event := notification.Event{
//	    Type:       notification.EventTaskAssigned,
//	    TenantID:   tenantID,
//	    Recipients: []string{"user-1", "user-2"},
//	    Data:       map[string]any{"task_title": "Quarterly report"},
//	}
//	if err := event.Validate(); err != nil {
//	    // malformed input, never enqueued
//	}
package notification
