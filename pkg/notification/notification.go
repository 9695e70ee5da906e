package notification

import (
	"github.com/google/uuid"
)

// EventType identifies what happened in the application. The set is closed:
// adding a type means adding a constant here and a content builder in the
// renderer, nothing else.
type EventType string

const (
	EventTaskAssigned        EventType = "task.assigned"
	EventTaskCompleted       EventType = "task.completed"
	EventTaskOverdue         EventType = "task.overdue"
	EventLeaveRequested      EventType = "leave.requested"
	EventLeaveApproved       EventType = "leave.approved"
	EventLeaveRejected       EventType = "leave.rejected"
	EventAssessmentAssigned  EventType = "assessment.assigned"
	EventAssessmentCompleted EventType = "assessment.completed"
	EventInvoiceIssued       EventType = "invoice.issued"
	EventCalendarReminder    EventType = "calendar.reminder"
	EventSystemAnnouncement  EventType = "system.announcement"
)

// EventTypes lists every known event type in declaration order.
var EventTypes = []EventType{
	EventTaskAssigned,
	EventTaskCompleted,
	EventTaskOverdue,
	EventLeaveRequested,
	EventLeaveApproved,
	EventLeaveRejected,
	EventAssessmentAssigned,
	EventAssessmentCompleted,
	EventInvoiceIssued,
	EventCalendarReminder,
	EventSystemAnnouncement,
}

// Valid reports whether t is a member of the closed event type set.
func (t EventType) Valid() bool {
	switch t {
	case EventTaskAssigned, EventTaskCompleted, EventTaskOverdue,
		EventLeaveRequested, EventLeaveApproved, EventLeaveRejected,
		EventAssessmentAssigned, EventAssessmentCompleted,
		EventInvoiceIssued, EventCalendarReminder, EventSystemAnnouncement:
		return true
	}
	return false
}

func (t EventType) String() string {
	return string(t)
}

// Channel is an independent delivery mechanism.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in-app"
)

// Channels lists all delivery channels in dispatch order.
var Channels = []Channel{ChannelEmail, ChannelPush, ChannelInApp}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelPush, ChannelInApp:
		return true
	}
	return false
}

func (c Channel) String() string {
	return string(c)
}

// Event is the immutable input to the dispatcher: one logical thing that
// happened, addressed to a set of users within a tenant. It is consumed once
// and never persisted as-is.
type Event struct {
	Type       EventType      `json:"type"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	Recipients []string       `json:"recipients"`
	Data       map[string]any `json:"data,omitempty"`

	// Channels restricts delivery to a subset of channels.
	// Empty means all channels apply, gated per-user by preferences.
	Channels []Channel `json:"channels,omitempty"`
}

// Validate checks the structural invariants of the event. Per-recipient
// delivery failures are never surfaced here; only malformed input is.
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return ErrUnknownEventType
	}
	if e.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if len(e.Recipients) == 0 {
		return ErrNoRecipients
	}
	for _, c := range e.Channels {
		if !c.Valid() {
			return ErrUnknownChannel
		}
	}
	return nil
}

// WantsChannel reports whether the event targets the given channel,
// honoring the optional explicit channel override.
func (e Event) WantsChannel(c Channel) bool {
	if len(e.Channels) == 0 {
		return true
	}
	for _, ec := range e.Channels {
		if ec == c {
			return true
		}
	}
	return false
}

// ChannelResult counts delivery outcomes for a single channel.
type ChannelResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Result is the per-channel summary returned by a dispatch. Partial failure
// on one channel never affects the counters of another.
type Result struct {
	Email ChannelResult `json:"email"`
	Push  ChannelResult `json:"push"`
	InApp struct {
		Created int `json:"created"`
	} `json:"in_app"`
}

// TotalSent returns the number of successful deliveries across channels,
// counting each created in-app record as one delivery.
func (r Result) TotalSent() int {
	return r.Email.Sent + r.Push.Sent + r.InApp.Created
}

// TotalFailed returns the number of failed deliveries across channels.
func (r Result) TotalFailed() int {
	return r.Email.Failed + r.Push.Failed
}
