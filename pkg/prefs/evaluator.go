package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Evaluator decides, per user, channel, and event type, whether a
// notification should be delivered. It accounts for channel opt-out,
// per-type allow lists, the email digest setting, and quiet hours.
type Evaluator struct {
	storage Storage
	log     *slog.Logger
	now     func() time.Time
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the logger for the evaluator.
func WithLogger(log *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock overrides the time source, used to pin quiet-hours tests.
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEvaluator creates a preference evaluator backed by the given storage.
func NewEvaluator(storage Storage, opts ...EvaluatorOption) (*Evaluator, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	e := &Evaluator{
		storage: storage,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Preferences returns the user's preference, lazily creating the system
// default on first access.
func (e *Evaluator) Preferences(ctx context.Context, userID string) (Preference, error) {
	pref, err := e.storage.Get(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Preference{}, err
	}

	pref = Default(userID)
	if err := e.storage.Upsert(ctx, pref); err != nil {
		return Preference{}, fmt.Errorf("prefs: create default preference: %w", err)
	}
	return pref, nil
}

// UpdatePreferences applies a partial update to the user's preference and
// returns the merged result.
func (e *Evaluator) UpdatePreferences(ctx context.Context, userID string, update Update) (Preference, error) {
	pref, err := e.Preferences(ctx, userID)
	if err != nil {
		return Preference{}, err
	}

	update.apply(&pref)
	pref.UpdatedAt = e.now()

	if err := e.storage.Upsert(ctx, pref); err != nil {
		return Preference{}, err
	}
	return pref, nil
}

// ToggleType enables or disables a single event type on one channel.
// Disabling a type on a channel that currently allows all types first
// materializes the full type list, then removes the one type.
func (e *Evaluator) ToggleType(ctx context.Context, userID string, channel notification.Channel, eventType notification.EventType, enabled bool) (Preference, error) {
	if !channel.Valid() {
		return Preference{}, ErrUnknownChannel
	}
	if !eventType.Valid() {
		return Preference{}, notification.ErrUnknownEventType
	}

	pref, err := e.Preferences(ctx, userID)
	if err != nil {
		return Preference{}, err
	}

	var target *ChannelPreference
	switch channel {
	case notification.ChannelEmail:
		target = &pref.Email
	case notification.ChannelPush:
		target = &pref.Push
	case notification.ChannelInApp:
		target = &pref.InApp
	}

	types := target.Types
	if len(types) == 0 {
		// "All types" sentinel: expand so a single type can be toggled off.
		types = append([]notification.EventType(nil), notification.EventTypes...)
	}

	filtered := types[:0]
	for _, t := range types {
		if t != eventType {
			filtered = append(filtered, t)
		}
	}
	if enabled {
		filtered = append(filtered, eventType)
	}
	target.Types = filtered

	pref.UpdatedAt = e.now()
	if err := e.storage.Upsert(ctx, pref); err != nil {
		return Preference{}, err
	}
	return pref, nil
}

// ResetPreferences restores the user's preference to system defaults.
func (e *Evaluator) ResetPreferences(ctx context.Context, userID string) error {
	return e.storage.Reset(ctx, userID)
}

// ShouldNotify reports whether a notification of the given type should be
// delivered to the user on the given channel.
//
// Quiet hours are checked first and apply to all channels uniformly: during
// the window the notification is dropped, not deferred. Outside the window
// the per-channel gate applies: the channel must be enabled, the event type
// must be on the channel's allow list (or the list empty, meaning all), and
// email additionally requires the digest setting not be "never".
func (e *Evaluator) ShouldNotify(ctx context.Context, userID string, eventType notification.EventType, channel notification.Channel) (bool, error) {
	if !channel.Valid() {
		return false, ErrUnknownChannel
	}

	pref, err := e.Preferences(ctx, userID)
	if err != nil {
		return false, err
	}

	suppressed, err := pref.QuietHours.Suppresses(e.now())
	if err != nil {
		return false, err
	}
	if suppressed {
		return false, nil
	}

	if channel == notification.ChannelEmail && pref.EmailDigest == DigestNever {
		return false, nil
	}

	return pref.channel(channel).AllowsType(eventType), nil
}

// FilterRecipients returns the subset of userIDs that should receive a
// notification of the given type on the given channel, preserving input
// order. Users are evaluated independently and concurrently; an evaluation
// error counts as "do not notify" and is logged rather than failing the
// whole batch.
func (e *Evaluator) FilterRecipients(ctx context.Context, userIDs []string, eventType notification.EventType, channel notification.Channel) ([]string, error) {
	if !channel.Valid() {
		return nil, ErrUnknownChannel
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	futures := make([]*async.Future[bool], len(userIDs))
	for i, userID := range userIDs {
		futures[i] = async.Run(ctx, userID, func(ctx context.Context, id string) (bool, error) {
			return e.ShouldNotify(ctx, id, eventType, channel)
		})
	}

	eligible := make([]string, 0, len(userIDs))
	for i, f := range futures {
		ok, err := f.Await()
		if err != nil {
			e.log.LogAttrs(ctx, slog.LevelWarn, "preference evaluation failed, skipping recipient",
				logger.UserID(userIDs[i]),
				logger.EventType(eventType.String()),
				logger.Channel(channel.String()),
				logger.Error(err),
			)
			continue
		}
		if ok {
			eligible = append(eligible, userIDs[i])
		}
	}

	return eligible, nil
}
