package inbox

import "errors"

var (
	// ErrStorageNil is returned when a nil storage or pool is provided.
	ErrStorageNil = errors.New("inbox: storage cannot be nil")

	// ErrNotFound is returned when a notification does not exist for the user.
	ErrNotFound = errors.New("inbox: notification not found")

	// ErrMissingID is returned when a notification has no id.
	ErrMissingID = errors.New("inbox: notification id is required")

	// ErrMissingUserID is returned when a notification has no owner.
	ErrMissingUserID = errors.New("inbox: user id is required")

	// ErrInvalidPriority is returned when a priority is outside the known set.
	ErrInvalidPriority = errors.New("inbox: invalid priority")
)
