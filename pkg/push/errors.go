package push

import "errors"

var (
	// ErrStoreNil is returned when a nil subscription store is provided.
	ErrStoreNil = errors.New("push: subscription store cannot be nil")

	// ErrProviderNil is returned when a nil provider is provided.
	ErrProviderNil = errors.New("push: provider cannot be nil")

	// ErrInvalidConfig is returned when the push configuration is
	// incomplete. The channel stays disabled until the config is fixed.
	ErrInvalidConfig = errors.New("push: invalid config")

	// ErrNotFound is returned when no subscription matches the id.
	ErrNotFound = errors.New("push: subscription not found")

	// ErrMissingUserID is returned when a subscription has no owner.
	ErrMissingUserID = errors.New("push: user id is required")

	// ErrMissingEndpoint is returned when a subscription has no endpoint.
	ErrMissingEndpoint = errors.New("push: endpoint is required")

	// ErrMissingKeys is returned when a subscription lacks its encryption
	// keys.
	ErrMissingKeys = errors.New("push: encryption keys are required")

	// ErrSubscriptionGone marks a provider response saying the endpoint is
	// permanently invalid. Providers wrap their errors with it; the sender
	// reacts by deactivating the subscription.
	ErrSubscriptionGone = errors.New("push: subscription gone")

	// ErrThrottled marks a provider response asking to slow down (429
	// class). Transient: the subscription stays active and the failure is
	// only counted.
	ErrThrottled = errors.New("push: delivery throttled by provider")
)
