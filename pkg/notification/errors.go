package notification

import "errors"

// Structural validation errors. These are the only errors a dispatch call
// raises synchronously; delivery failures are reported through Result counters.
var (
	// ErrUnknownEventType is returned when an event carries a type outside the closed set.
	ErrUnknownEventType = errors.New("notification: unknown event type")

	// ErrUnknownChannel is returned when an explicit channel override names an unknown channel.
	ErrUnknownChannel = errors.New("notification: unknown channel")

	// ErrMissingTenant is returned when an event has no tenant identifier.
	ErrMissingTenant = errors.New("notification: missing tenant id")

	// ErrNoRecipients is returned when an event has an empty recipient set.
	ErrNoRecipients = errors.New("notification: no recipients")
)
