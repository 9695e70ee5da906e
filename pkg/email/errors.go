package email

import "errors"

var (
	// ErrInvalidConfig is returned when the sender configuration is
	// incomplete or malformed.
	ErrInvalidConfig = errors.New("email: invalid config")

	// ErrInvalidMessage is returned when a message fails validation.
	ErrInvalidMessage = errors.New("email: invalid message")

	// ErrSendFailed is returned when the provider rejects or fails a send.
	ErrSendFailed = errors.New("email: failed to send")

	// ErrPermanentFailure marks provider rejections that retrying cannot
	// fix, such as an inactive or malformed recipient address.
	ErrPermanentFailure = errors.New("email: permanent delivery failure")
)
