package dispatch

import "errors"

var (
	// ErrEvaluatorNil is returned when a nil preference evaluator is provided.
	ErrEvaluatorNil = errors.New("dispatch: evaluator cannot be nil")

	// ErrInboxNil is returned when a nil in-app service is provided.
	ErrInboxNil = errors.New("dispatch: inbox service cannot be nil")

	// ErrEnqueuerNil is returned when a nil queue enqueuer is provided.
	ErrEnqueuerNil = errors.New("dispatch: enqueuer cannot be nil")

	// ErrPushSenderNil is returned when a nil push sender is provided.
	ErrPushSenderNil = errors.New("dispatch: push sender cannot be nil")

	// ErrIdentityNil is returned when a nil identity lookup is provided.
	ErrIdentityNil = errors.New("dispatch: identity lookup cannot be nil")

	// ErrRendererNil is returned when a nil renderer is provided.
	ErrRendererNil = errors.New("dispatch: renderer cannot be nil")

	// ErrUnknownEventType is returned when the renderer meets an event type
	// outside the closed enumeration.
	ErrUnknownEventType = errors.New("dispatch: unknown event type")
)
