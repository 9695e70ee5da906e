package dispatch

import (
	"fmt"
	"maps"
	"strings"
	"text/template"

	"github.com/dmitrymomot/notifykit/pkg/cache"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/inbox"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/push"
)

// InAppContent is the rendered content of an in-app notification.
type InAppContent struct {
	Title     string
	Message   string
	Priority  inbox.Priority
	ActionURL string
}

// Renderer turns an event type plus its data into channel-ready payloads.
// Pure functions of their input; the dispatcher calls them once per
// recipient and channel.
type Renderer interface {
	Email(t notification.EventType, data map[string]any, user User) (email.Message, error)
	Push(t notification.EventType, data map[string]any) (push.Payload, error)
	InApp(t notification.EventType, data map[string]any) (InAppContent, error)
}

// contentSpec holds the per-type templates and channel options. Fields are
// text/template sources evaluated against the event data (plus DisplayName
// for email).
type contentSpec struct {
	subject   string
	body      string
	title     string
	message   string
	priority  inbox.Priority
	actionURL string

	// push-specific behavior
	requireInteraction bool
	vibrate            []int
}

// contentFor maps the closed event type enumeration to its content spec.
// Adding an event type means adding exactly one case here; the default
// branch turns typos into an immediate structural error.
func contentFor(t notification.EventType) (contentSpec, error) {
	switch t {
	case notification.EventTaskAssigned:
		return contentSpec{
			subject:   "New task: {{.taskTitle}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>You were assigned the task <strong>{{.taskTitle}}</strong>.</p>",
			title:     "Task assigned",
			message:   "You were assigned: {{.taskTitle}}",
			priority:  inbox.PriorityNormal,
			actionURL: "/tasks/{{.taskId}}",
		}, nil
	case notification.EventTaskCompleted:
		return contentSpec{
			subject:   "Task completed: {{.taskTitle}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>The task <strong>{{.taskTitle}}</strong> was completed by {{.completedBy}}.</p>",
			title:     "Task completed",
			message:   "{{.completedBy}} completed: {{.taskTitle}}",
			priority:  inbox.PriorityLow,
			actionURL: "/tasks/{{.taskId}}",
		}, nil
	case notification.EventTaskOverdue:
		return contentSpec{
			subject:   "Overdue: {{.taskTitle}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>The task <strong>{{.taskTitle}}</strong> is overdue. It was due {{.dueDate}}.</p>",
			title:     "Task overdue",
			message:   "Overdue since {{.dueDate}}: {{.taskTitle}}",
			priority:  inbox.PriorityUrgent,
			actionURL: "/tasks/{{.taskId}}",
			// Overdue tasks must stay on screen until acknowledged.
			requireInteraction: true,
			vibrate:            []int{200, 100, 200},
		}, nil
	case notification.EventLeaveRequested:
		return contentSpec{
			subject:   "Leave request from {{.requesterName}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>{{.requesterName}} requested leave from {{.startDate}} to {{.endDate}}.</p>",
			title:     "Leave requested",
			message:   "{{.requesterName}} requested leave ({{.startDate}} – {{.endDate}})",
			priority:  inbox.PriorityHigh,
			actionURL: "/leave/{{.requestId}}",
		}, nil
	case notification.EventLeaveApproved:
		return contentSpec{
			subject:   "Your leave request was approved",
			body:      "<p>Hi {{.DisplayName}},</p><p>Your leave from {{.startDate}} to {{.endDate}} was approved.</p>",
			title:     "Leave approved",
			message:   "Your leave ({{.startDate}} – {{.endDate}}) was approved",
			priority:  inbox.PriorityNormal,
			actionURL: "/leave/{{.requestId}}",
		}, nil
	case notification.EventLeaveRejected:
		return contentSpec{
			subject:   "Your leave request was declined",
			body:      "<p>Hi {{.DisplayName}},</p><p>Your leave from {{.startDate}} to {{.endDate}} was declined.{{if .reason}} Reason: {{.reason}}{{end}}</p>",
			title:     "Leave declined",
			message:   "Your leave ({{.startDate}} – {{.endDate}}) was declined",
			priority:  inbox.PriorityHigh,
			actionURL: "/leave/{{.requestId}}",
		}, nil
	case notification.EventAssessmentAssigned:
		return contentSpec{
			subject:   "New assessment: {{.assessmentName}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>You were assigned the assessment <strong>{{.assessmentName}}</strong>{{if .dueDate}}, due {{.dueDate}}{{end}}.</p>",
			title:     "Assessment assigned",
			message:   "New assessment: {{.assessmentName}}",
			priority:  inbox.PriorityNormal,
			actionURL: "/assessments/{{.assessmentId}}",
		}, nil
	case notification.EventAssessmentCompleted:
		return contentSpec{
			subject:   "Assessment completed: {{.assessmentName}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>{{.completedBy}} completed the assessment <strong>{{.assessmentName}}</strong>.</p>",
			title:     "Assessment completed",
			message:   "{{.completedBy}} completed: {{.assessmentName}}",
			priority:  inbox.PriorityLow,
			actionURL: "/assessments/{{.assessmentId}}",
		}, nil
	case notification.EventInvoiceIssued:
		return contentSpec{
			subject:   "Invoice {{.invoiceNumber}} issued",
			body:      "<p>Hi {{.DisplayName}},</p><p>Invoice <strong>{{.invoiceNumber}}</strong> over {{.amount}} was issued.</p>",
			title:     "Invoice issued",
			message:   "Invoice {{.invoiceNumber}} over {{.amount}}",
			priority:  inbox.PriorityNormal,
			actionURL: "/invoices/{{.invoiceId}}",
		}, nil
	case notification.EventCalendarReminder:
		return contentSpec{
			subject:   "Reminder: {{.eventTitle}}",
			body:      "<p>Hi {{.DisplayName}},</p><p>Reminder: <strong>{{.eventTitle}}</strong> starts at {{.startsAt}}.</p>",
			title:     "Calendar reminder",
			message:   "{{.eventTitle}} starts at {{.startsAt}}",
			priority:  inbox.PriorityHigh,
			actionURL: "/calendar/{{.eventId}}",
		}, nil
	case notification.EventSystemAnnouncement:
		return contentSpec{
			subject:  "{{.announcementTitle}}",
			body:     "<p>Hi {{.DisplayName}},</p><p>{{.announcementBody}}</p>",
			title:    "{{.announcementTitle}}",
			message:  "{{.announcementBody}}",
			priority: inbox.PriorityNormal,
		}, nil
	default:
		return contentSpec{}, fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}
}

// DefaultTemplateCacheSize bounds the compiled template cache.
const DefaultTemplateCacheSize = 128

// DefaultRenderer renders the built-in content specs with text/template,
// caching compiled templates process-wide in an LRU.
type DefaultRenderer struct {
	templates *cache.LRU[string, *template.Template]
}

// NewDefaultRenderer creates a renderer with an empty template cache.
// Templates compile lazily on first use.
func NewDefaultRenderer() *DefaultRenderer {
	return &DefaultRenderer{
		templates: cache.NewLRU[string, *template.Template](DefaultTemplateCacheSize),
	}
}

// ClearCache drops all compiled templates. Subsequent renders recompile.
func (r *DefaultRenderer) ClearCache() {
	r.templates.Clear()
}

// render executes a template source against data, compiling and caching it
// on first use. Missing data keys render as empty strings rather than
// failing: notification content degrades, it does not block delivery.
func (r *DefaultRenderer) render(src string, data map[string]any) (string, error) {
	tmpl, ok := r.templates.Get(src)
	if !ok {
		var err error
		tmpl, err = template.New("content").Option("missingkey=zero").Parse(src)
		if err != nil {
			return "", fmt.Errorf("dispatch: parse template: %w", err)
		}
		r.templates.Put(src, tmpl)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("dispatch: execute template: %w", err)
	}
	// missingkey=zero prints "<no value>" for untyped nils in map lookups.
	return strings.ReplaceAll(sb.String(), "<no value>", ""), nil
}

func (r *DefaultRenderer) Email(t notification.EventType, data map[string]any, user User) (email.Message, error) {
	spec, err := contentFor(t)
	if err != nil {
		return email.Message{}, err
	}

	merged := make(map[string]any, len(data)+2)
	maps.Copy(merged, data)
	merged["DisplayName"] = user.DisplayName
	merged["Email"] = user.Email

	subject, err := r.render(spec.subject, merged)
	if err != nil {
		return email.Message{}, err
	}
	body, err := r.render(spec.body, merged)
	if err != nil {
		return email.Message{}, err
	}

	return email.Message{
		To:       user.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      string(t),
	}, nil
}

func (r *DefaultRenderer) Push(t notification.EventType, data map[string]any) (push.Payload, error) {
	spec, err := contentFor(t)
	if err != nil {
		return push.Payload{}, err
	}

	title, err := r.render(spec.title, data)
	if err != nil {
		return push.Payload{}, err
	}
	body, err := r.render(spec.message, data)
	if err != nil {
		return push.Payload{}, err
	}
	url, err := r.render(spec.actionURL, data)
	if err != nil {
		return push.Payload{}, err
	}

	return push.Payload{
		Title:              title,
		Body:               body,
		Tag:                string(t),
		URL:                url,
		RequireInteraction: spec.requireInteraction,
		Vibrate:            spec.vibrate,
	}, nil
}

func (r *DefaultRenderer) InApp(t notification.EventType, data map[string]any) (InAppContent, error) {
	spec, err := contentFor(t)
	if err != nil {
		return InAppContent{}, err
	}

	title, err := r.render(spec.title, data)
	if err != nil {
		return InAppContent{}, err
	}
	message, err := r.render(spec.message, data)
	if err != nil {
		return InAppContent{}, err
	}
	url, err := r.render(spec.actionURL, data)
	if err != nil {
		return InAppContent{}, err
	}

	return InAppContent{
		Title:     title,
		Message:   message,
		Priority:  spec.priority,
		ActionURL: url,
	}, nil
}
