package prefs

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("prefs: storage cannot be nil")

	// ErrNotFound is returned by storages when no preference exists for a user.
	ErrNotFound = errors.New("prefs: preference not found")

	// ErrInvalidTimezone is returned when a quiet-hours timezone cannot be loaded.
	ErrInvalidTimezone = errors.New("prefs: invalid quiet hours timezone")

	// ErrInvalidTimeOfDay is returned when a quiet-hours boundary is not "HH:MM".
	ErrInvalidTimeOfDay = errors.New("prefs: invalid quiet hours time of day")

	// ErrUnknownChannel is returned when an operation names an unknown channel.
	ErrUnknownChannel = errors.New("prefs: unknown channel")
)
