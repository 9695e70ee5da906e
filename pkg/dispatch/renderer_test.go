package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/inbox"
	"github.com/dmitrymomot/notifykit/pkg/notification"
)

func TestDefaultRenderer_Email(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()
	user := dispatch.User{ID: "user-1", Email: "ada@example.com", DisplayName: "Ada"}

	msg, err := r.Email(notification.EventTaskAssigned, map[string]any{
		"taskTitle": "Quarterly report",
		"taskId":    "t-42",
	}, user)
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "New task: Quarterly report", msg.Subject)
	assert.Contains(t, msg.BodyHTML, "Hi Ada")
	assert.Contains(t, msg.BodyHTML, "Quarterly report")
	assert.Equal(t, "task.assigned", msg.Tag)
	require.NoError(t, msg.Validate())
}

func TestDefaultRenderer_Push(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()

	t.Run("regular event", func(t *testing.T) {
		t.Parallel()

		payload, err := r.Push(notification.EventLeaveApproved, map[string]any{
			"startDate": "2026-09-01",
			"endDate":   "2026-09-05",
			"requestId": "lr-7",
		})
		require.NoError(t, err)

		assert.Equal(t, "Leave approved", payload.Title)
		assert.Contains(t, payload.Body, "2026-09-01")
		assert.Equal(t, "/leave/lr-7", payload.URL)
		assert.False(t, payload.RequireInteraction)
		assert.Empty(t, payload.Vibrate)
	})

	t.Run("overdue task demands interaction", func(t *testing.T) {
		t.Parallel()

		payload, err := r.Push(notification.EventTaskOverdue, map[string]any{
			"taskTitle": "File taxes",
			"taskId":    "t-9",
			"dueDate":   "yesterday",
		})
		require.NoError(t, err)

		assert.True(t, payload.RequireInteraction)
		assert.Equal(t, []int{200, 100, 200}, payload.Vibrate)
		assert.Equal(t, "task.overdue", payload.Tag)
	})
}

func TestDefaultRenderer_InApp(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()

	tests := []struct {
		eventType    notification.EventType
		data         map[string]any
		wantPriority inbox.Priority
	}{
		{notification.EventTaskOverdue, map[string]any{"taskTitle": "x", "taskId": "1", "dueDate": "y"}, inbox.PriorityUrgent},
		{notification.EventLeaveRequested, map[string]any{"requesterName": "Bo", "startDate": "a", "endDate": "b", "requestId": "1"}, inbox.PriorityHigh},
		{notification.EventTaskCompleted, map[string]any{"taskTitle": "x", "taskId": "1", "completedBy": "Bo"}, inbox.PriorityLow},
		{notification.EventSystemAnnouncement, map[string]any{"announcementTitle": "Maintenance", "announcementBody": "Sunday 2am"}, inbox.PriorityNormal},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			t.Parallel()

			content, err := r.InApp(tt.eventType, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPriority, content.Priority)
			assert.NotEmpty(t, content.Title)
			assert.NotEmpty(t, content.Message)
		})
	}
}

func TestDefaultRenderer_EveryEventTypeHasContent(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()
	for _, eventType := range notification.EventTypes {
		_, err := r.InApp(eventType, map[string]any{})
		require.NoError(t, err, "event type %s", eventType)
	}
}

func TestDefaultRenderer_UnknownType(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()
	_, err := r.InApp(notification.EventType("mystery.event"), nil)
	require.ErrorIs(t, err, dispatch.ErrUnknownEventType)
}

func TestDefaultRenderer_MissingDataRendersEmpty(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()

	content, err := r.InApp(notification.EventTaskAssigned, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "You were assigned: ", content.Message)
}

func TestDefaultRenderer_ClearCache(t *testing.T) {
	t.Parallel()

	r := dispatch.NewDefaultRenderer()

	first, err := r.InApp(notification.EventInvoiceIssued, map[string]any{"invoiceNumber": "INV-1", "amount": "9 EUR", "invoiceId": "1"})
	require.NoError(t, err)

	r.ClearCache()

	second, err := r.InApp(notification.EventInvoiceIssued, map[string]any{"invoiceNumber": "INV-1", "amount": "9 EUR", "invoiceId": "1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
