package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Digest controls how often a user receives email. The engine only
// distinguishes "never" (blocks the email channel entirely); the remaining
// values are carried for the digest scheduler upstream.
type Digest string

const (
	DigestInstant Digest = "instant"
	DigestDaily   Digest = "daily"
	DigestWeekly  Digest = "weekly"
	DigestNever   Digest = "never"
)

// ChannelPreference holds a user's settings for one delivery channel.
// A nil or empty Types slice means "all event types".
type ChannelPreference struct {
	Enabled bool                     `json:"enabled"`
	Types   []notification.EventType `json:"types,omitempty"`
}

// AllowsType reports whether the channel is enabled for the given event type.
func (p ChannelPreference) AllowsType(t notification.EventType) bool {
	if !p.Enabled {
		return false
	}
	if len(p.Types) == 0 {
		return true
	}
	for _, allowed := range p.Types {
		if allowed == t {
			return true
		}
	}
	return false
}

// QuietHours is a per-user local time-of-day window during which no
// notification is delivered on any channel. Deliveries inside the window are
// dropped, not deferred.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start,omitempty"` // "HH:MM"
	End      string `json:"end,omitempty"`   // "HH:MM"
	Timezone string `json:"timezone,omitempty"`
}

// Suppresses reports whether now falls inside the quiet-hours window,
// evaluated in the user's configured timezone.
//
// Two window shapes exist: a same-day window (start < end, e.g. 13:00-17:00)
// suppresses when start <= now <= end; an overnight window (start >= end,
// e.g. 22:00-07:00) suppresses when now >= start or now <= end.
func (q QuietHours) Suppresses(now time.Time) (bool, error) {
	if !q.Enabled {
		return false, nil
	}

	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidTimezone, q.Timezone)
	}

	start, err := parseMinutes(q.Start)
	if err != nil {
		return false, err
	}
	end, err := parseMinutes(q.End)
	if err != nil {
		return false, err
	}

	local := now.In(loc)
	cur := local.Hour()*60 + local.Minute()

	if start < end {
		return start <= cur && cur <= end, nil
	}
	return cur >= start || cur <= end, nil
}

// parseMinutes converts "HH:MM" to minutes since midnight.
func parseMinutes(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return h*60 + m, nil
}

// Preference is a user's full notification configuration. Created lazily
// with defaults on first access, mutated by the user, never deleted (only
// reset back to defaults).
type Preference struct {
	UserID      string            `json:"user_id"`
	Email       ChannelPreference `json:"email"`
	EmailDigest Digest            `json:"email_digest"`
	Push        ChannelPreference `json:"push"`
	InApp       ChannelPreference `json:"in_app"`
	QuietHours  QuietHours        `json:"quiet_hours"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Default returns the system default preference for a user: every channel
// enabled for all event types, instant email, quiet hours off.
func Default(userID string) Preference {
	return Preference{
		UserID:      userID,
		Email:       ChannelPreference{Enabled: true},
		EmailDigest: DigestInstant,
		Push:        ChannelPreference{Enabled: true},
		InApp:       ChannelPreference{Enabled: true},
		QuietHours:  QuietHours{Enabled: false},
	}
}

// channel returns the preference block for the given channel.
func (p Preference) channel(c notification.Channel) ChannelPreference {
	switch c {
	case notification.ChannelEmail:
		return p.Email
	case notification.ChannelPush:
		return p.Push
	case notification.ChannelInApp:
		return p.InApp
	}
	return ChannelPreference{}
}

// Update describes a partial preference change; nil fields are left as-is.
type Update struct {
	Email       *ChannelPreference `json:"email,omitempty"`
	EmailDigest *Digest            `json:"email_digest,omitempty"`
	Push        *ChannelPreference `json:"push,omitempty"`
	InApp       *ChannelPreference `json:"in_app,omitempty"`
	QuietHours  *QuietHours        `json:"quiet_hours,omitempty"`
}

// apply merges the update into p.
func (u Update) apply(p *Preference) {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.EmailDigest != nil {
		p.EmailDigest = *u.EmailDigest
	}
	if u.Push != nil {
		p.Push = *u.Push
	}
	if u.InApp != nil {
		p.InApp = *u.InApp
	}
	if u.QuietHours != nil {
		p.QuietHours = *u.QuietHours
	}
}
