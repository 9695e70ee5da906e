package prefs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/prefs"
)

func fixedClock(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
	}
}

func TestShouldNotifyDefaults(t *testing.T) {
	t.Parallel()

	eval, err := prefs.NewEvaluator(prefs.NewMemoryStorage())
	require.NoError(t, err)

	// First access lazily creates defaults: everything enabled.
	for _, channel := range notification.Channels {
		ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, channel)
		require.NoError(t, err)
		assert.True(t, ok, "default preference must allow channel %s", channel)
	}
}

func TestShouldNotifyTypeAllowList(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	pref := prefs.Default("user-1")
	pref.Email.Types = []notification.EventType{notification.EventLeaveApproved}
	require.NoError(t, storage.Upsert(context.Background(), pref))

	eval, err := prefs.NewEvaluator(storage)
	require.NoError(t, err)

	ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventLeaveApproved, notification.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, ok, "types outside the allow list must be gated")

	// The allow list is per channel; in-app still allows everything.
	ok, err = eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelInApp)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldNotifyChannelDisabled(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	pref := prefs.Default("user-1")
	pref.Push.Enabled = false
	require.NoError(t, storage.Upsert(context.Background(), pref))

	eval, err := prefs.NewEvaluator(storage)
	require.NoError(t, err)

	ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelPush)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldNotifyDigestNeverBlocksEmail(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	pref := prefs.Default("user-1")
	pref.EmailDigest = prefs.DigestNever
	require.NoError(t, storage.Upsert(context.Background(), pref))

	eval, err := prefs.NewEvaluator(storage)
	require.NoError(t, err)

	ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, ok, "digest=never must block email even with the channel enabled")

	ok, err = eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelPush)
	require.NoError(t, err)
	assert.True(t, ok, "digest only affects the email channel")
}

func TestQuietHoursOvernightWindow(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	pref := prefs.Default("user-1")
	pref.QuietHours = prefs.QuietHours{
		Enabled:  true,
		Start:    "22:00",
		End:      "07:00",
		Timezone: "UTC",
	}
	require.NoError(t, storage.Upsert(context.Background(), pref))

	tests := []struct {
		name       string
		hour, min  int
		suppressed bool
	}{
		{"before midnight", 23, 30, true},
		{"after midnight", 3, 0, true},
		{"window start", 22, 0, true},
		{"window end", 7, 0, true},
		{"midday", 12, 0, false},
		{"just before start", 21, 59, false},
		{"just after end", 7, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eval, err := prefs.NewEvaluator(storage, prefs.WithClock(fixedClock(tt.hour, tt.min)))
			require.NoError(t, err)

			for _, channel := range notification.Channels {
				ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, channel)
				require.NoError(t, err)
				assert.Equal(t, !tt.suppressed, ok, "channel %s at %02d:%02d", channel, tt.hour, tt.min)
			}
		})
	}
}

func TestQuietHoursSameDayWindow(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	pref := prefs.Default("user-1")
	pref.QuietHours = prefs.QuietHours{
		Enabled:  true,
		Start:    "13:00",
		End:      "17:00",
		Timezone: "UTC",
	}
	require.NoError(t, storage.Upsert(context.Background(), pref))

	inside, err := prefs.NewEvaluator(storage, prefs.WithClock(fixedClock(15, 0)))
	require.NoError(t, err)
	ok, err := inside.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelInApp)
	require.NoError(t, err)
	assert.False(t, ok)

	outside, err := prefs.NewEvaluator(storage, prefs.WithClock(fixedClock(18, 0)))
	require.NoError(t, err)
	ok, err = outside.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelInApp)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuietHoursTimezone(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	pref := prefs.Default("user-1")
	pref.QuietHours = prefs.QuietHours{
		Enabled:  true,
		Start:    "22:00",
		End:      "07:00",
		Timezone: "America/New_York",
	}
	require.NoError(t, storage.Upsert(context.Background(), pref))

	// 03:00 UTC in March is 22:00 or 23:00 in New York; either way inside
	// the overnight window.
	eval, err := prefs.NewEvaluator(storage, prefs.WithClock(fixedClock(3, 0)))
	require.NoError(t, err)

	ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuietHoursInvalidTimezone(t *testing.T) {
	t.Parallel()

	q := prefs.QuietHours{Enabled: true, Start: "22:00", End: "07:00", Timezone: "Mars/Olympus"}
	_, err := q.Suppresses(time.Now())
	require.ErrorIs(t, err, prefs.ErrInvalidTimezone)
}

func TestQuietHoursInvalidTimeOfDay(t *testing.T) {
	t.Parallel()

	q := prefs.QuietHours{Enabled: true, Start: "25:00", End: "07:00", Timezone: "UTC"}
	_, err := q.Suppresses(time.Now())
	require.ErrorIs(t, err, prefs.ErrInvalidTimeOfDay)
}

func TestFilterRecipientsPreservesOrder(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()

	optedOut := prefs.Default("user-2")
	optedOut.Push.Enabled = false
	require.NoError(t, storage.Upsert(context.Background(), optedOut))

	eval, err := prefs.NewEvaluator(storage)
	require.NoError(t, err)

	got, err := eval.FilterRecipients(context.Background(),
		[]string{"user-1", "user-2", "user-3", "user-4"},
		notification.EventTaskAssigned, notification.ChannelPush)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-3", "user-4"}, got)
}

func TestFilterRecipientsEmptyInput(t *testing.T) {
	t.Parallel()

	eval, err := prefs.NewEvaluator(prefs.NewMemoryStorage())
	require.NoError(t, err)

	got, err := eval.FilterRecipients(context.Background(), nil, notification.EventTaskAssigned, notification.ChannelEmail)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type failingStorage struct {
	*prefs.MemoryStorage
	failFor string
}

func (s *failingStorage) Get(ctx context.Context, userID string) (prefs.Preference, error) {
	if userID == s.failFor {
		return prefs.Preference{}, errors.New("storage unavailable")
	}
	return s.MemoryStorage.Get(ctx, userID)
}

func TestFilterRecipientsSkipsFailingUsers(t *testing.T) {
	t.Parallel()

	storage := &failingStorage{MemoryStorage: prefs.NewMemoryStorage(), failFor: "user-2"}
	eval, err := prefs.NewEvaluator(storage)
	require.NoError(t, err)

	got, err := eval.FilterRecipients(context.Background(),
		[]string{"user-1", "user-2", "user-3"},
		notification.EventTaskAssigned, notification.ChannelInApp)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-3"}, got, "a failing user is skipped, not fatal")
}

func TestToggleType(t *testing.T) {
	t.Parallel()

	eval, err := prefs.NewEvaluator(prefs.NewMemoryStorage())
	require.NoError(t, err)

	// Disabling one type on the "all types" default materializes the list.
	pref, err := eval.ToggleType(context.Background(), "user-1",
		notification.ChannelEmail, notification.EventTaskAssigned, false)
	require.NoError(t, err)
	assert.Len(t, pref.Email.Types, len(notification.EventTypes)-1)
	assert.NotContains(t, pref.Email.Types, notification.EventTaskAssigned)

	ok, err := eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, ok)

	// Re-enabling restores delivery.
	_, err = eval.ToggleType(context.Background(), "user-1",
		notification.ChannelEmail, notification.EventTaskAssigned, true)
	require.NoError(t, err)

	ok, err = eval.ShouldNotify(context.Background(), "user-1", notification.EventTaskAssigned, notification.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestToggleTypeValidation(t *testing.T) {
	t.Parallel()

	eval, err := prefs.NewEvaluator(prefs.NewMemoryStorage())
	require.NoError(t, err)

	_, err = eval.ToggleType(context.Background(), "user-1", "sms", notification.EventTaskAssigned, true)
	require.ErrorIs(t, err, prefs.ErrUnknownChannel)

	_, err = eval.ToggleType(context.Background(), "user-1", notification.ChannelEmail, "task.deleted", true)
	require.ErrorIs(t, err, notification.ErrUnknownEventType)
}

func TestUpdatePreferencesPartialMerge(t *testing.T) {
	t.Parallel()

	eval, err := prefs.NewEvaluator(prefs.NewMemoryStorage())
	require.NoError(t, err)

	digest := prefs.DigestNever
	pref, err := eval.UpdatePreferences(context.Background(), "user-1", prefs.Update{
		EmailDigest: &digest,
	})
	require.NoError(t, err)

	assert.Equal(t, prefs.DigestNever, pref.EmailDigest)
	assert.True(t, pref.Push.Enabled, "untouched fields keep their defaults")
	assert.True(t, pref.InApp.Enabled)
}

func TestResetPreferences(t *testing.T) {
	t.Parallel()

	storage := prefs.NewMemoryStorage()
	eval, err := prefs.NewEvaluator(storage)
	require.NoError(t, err)

	digest := prefs.DigestNever
	_, err = eval.UpdatePreferences(context.Background(), "user-1", prefs.Update{EmailDigest: &digest})
	require.NoError(t, err)

	require.NoError(t, eval.ResetPreferences(context.Background(), "user-1"))

	pref, err := eval.Preferences(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, prefs.DigestInstant, pref.EmailDigest)
}

func TestNewEvaluatorNilStorage(t *testing.T) {
	t.Parallel()

	_, err := prefs.NewEvaluator(nil)
	require.ErrorIs(t, err, prefs.ErrStorageNil)
}
