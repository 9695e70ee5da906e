package notification_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func TestEventTypeValid(t *testing.T) {
	t.Parallel()

	for _, et := range notification.EventTypes {
		assert.True(t, et.Valid(), "expected %q to be valid", et)
	}

	assert.False(t, notification.EventType("").Valid())
	assert.False(t, notification.EventType("task.deleted").Valid())
	assert.False(t, notification.EventType("TASK.ASSIGNED").Valid())
}

func TestChannelValid(t *testing.T) {
	t.Parallel()

	for _, c := range notification.Channels {
		assert.True(t, c.Valid())
	}
	assert.False(t, notification.Channel("sms").Valid())
	assert.False(t, notification.Channel("").Valid())
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	valid := notification.Event{
		Type:       notification.EventLeaveApproved,
		TenantID:   uuid.New(),
		Recipients: []string{"user-1"},
	}

	tests := []struct {
		name    string
		mutate  func(*notification.Event)
		wantErr error
	}{
		{
			name:   "valid event",
			mutate: func(e *notification.Event) {},
		},
		{
			name:    "unknown type",
			mutate:  func(e *notification.Event) { e.Type = "leave.cancelled" },
			wantErr: notification.ErrUnknownEventType,
		},
		{
			name:    "missing tenant",
			mutate:  func(e *notification.Event) { e.TenantID = uuid.Nil },
			wantErr: notification.ErrMissingTenant,
		},
		{
			name:    "empty recipients",
			mutate:  func(e *notification.Event) { e.Recipients = nil },
			wantErr: notification.ErrNoRecipients,
		},
		{
			name:    "unknown channel override",
			mutate:  func(e *notification.Event) { e.Channels = []notification.Channel{"sms"} },
			wantErr: notification.ErrUnknownChannel,
		},
		{
			name: "valid channel override",
			mutate: func(e *notification.Event) {
				e.Channels = []notification.Channel{notification.ChannelEmail}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event := valid
			tt.mutate(&event)

			err := event.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEventWantsChannel(t *testing.T) {
	t.Parallel()

	event := notification.Event{Type: notification.EventTaskAssigned}
	assert.True(t, event.WantsChannel(notification.ChannelEmail), "empty override targets all channels")
	assert.True(t, event.WantsChannel(notification.ChannelInApp))

	event.Channels = []notification.Channel{notification.ChannelPush}
	assert.True(t, event.WantsChannel(notification.ChannelPush))
	assert.False(t, event.WantsChannel(notification.ChannelEmail))
}

func TestResultTotals(t *testing.T) {
	t.Parallel()

	var r notification.Result
	r.Email.Sent = 3
	r.Email.Failed = 1
	r.Push.Sent = 2
	r.Push.Failed = 4
	r.InApp.Created = 5

	assert.Equal(t, 10, r.TotalSent())
	assert.Equal(t, 5, r.TotalFailed())
}
