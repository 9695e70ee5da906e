// Package prefs implements the preference evaluator: the gate that decides,
// per user, channel, and event type, whether a notification is delivered.
//
// A user's Preference holds a per-channel enabled flag and allow list (empty
// meaning all types), an email digest setting, and an optional quiet-hours
// window evaluated in the user's own timezone. Quiet hours block every
// channel uniformly and drop rather than defer.
//
// Preferences are created lazily with system defaults on first access and
// are never deleted, only reset.
//
// # Usage
//
//	eval, _ := prefs.NewEvaluator(prefs.NewMemoryStorage())
//
//	ok, err := eval.ShouldNotify(ctx, "user-1", notification.EventLeaveApproved, notification.ChannelEmail)
//
//	eligible, _ := eval.FilterRecipients(ctx, userIDs, notification.EventTaskAssigned, notification.ChannelPush)
package prefs
