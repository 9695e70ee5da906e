package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/inbox"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/prefs"
	"github.com/dmitrymomot/notifykit/pkg/push"
	"github.com/dmitrymomot/notifykit/pkg/queue"
	"github.com/dmitrymomot/notifykit/pkg/tenant"
)

// Dispatcher orchestrates one notification event across the three channels:
// preference filtering per channel, rendering per recipient, then queued
// email, inline push fan-out and synchronous in-app creation. Channels are
// independent; a failure on one never aborts the others.
type Dispatcher struct {
	evaluator *prefs.Evaluator
	inbox     *inbox.Service
	enqueuer  *queue.Enqueuer
	pushers   *push.Sender
	identity  Identity
	renderer  Renderer
	presence  Presence
	log       *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPresence sets the live session channel for in-app notifications.
func WithPresence(p Presence) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.presence = p
		}
	}
}

// WithLogger sets the logger for the dispatcher.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithRenderer overrides the default content renderer.
func WithRenderer(r Renderer) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.renderer = r
		}
	}
}

// New creates a dispatcher. All collaborators except presence and renderer
// are required.
func New(
	evaluator *prefs.Evaluator,
	inboxSvc *inbox.Service,
	enqueuer *queue.Enqueuer,
	pushSender *push.Sender,
	identity Identity,
	opts ...Option,
) (*Dispatcher, error) {
	if evaluator == nil {
		return nil, ErrEvaluatorNil
	}
	if inboxSvc == nil {
		return nil, ErrInboxNil
	}
	if enqueuer == nil {
		return nil, ErrEnqueuerNil
	}
	if pushSender == nil {
		return nil, ErrPushSenderNil
	}
	if identity == nil {
		return nil, ErrIdentityNil
	}

	d := &Dispatcher{
		evaluator: evaluator,
		inbox:     inboxSvc,
		enqueuer:  enqueuer,
		pushers:   pushSender,
		identity:  identity,
		renderer:  NewDefaultRenderer(),
		presence:  NoopPresence{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch fans one event out to its recipients. It returns an error only
// for structurally invalid input; per-recipient delivery failures are
// absorbed into the result counters.
func (d *Dispatcher) Dispatch(ctx context.Context, event notification.Event) (notification.Result, error) {
	if err := event.Validate(); err != nil {
		return notification.Result{}, err
	}
	ctx = tenant.WithID(ctx, event.TenantID)

	var result notification.Result

	if event.WantsChannel(notification.ChannelEmail) {
		result.Email = d.dispatchEmail(ctx, event)
	}
	if event.WantsChannel(notification.ChannelPush) {
		result.Push = d.dispatchPush(ctx, event)
	}
	if event.WantsChannel(notification.ChannelInApp) {
		result.InApp.Created = d.dispatchInApp(ctx, event)
	}

	d.log.LogAttrs(ctx, slog.LevelInfo, "event dispatched",
		logger.Component("dispatch"),
		logger.EventType(string(event.Type)),
		logger.TenantID(event.TenantID.String()),
		slog.Int("recipients", len(event.Recipients)),
		slog.Int("sent", result.TotalSent()),
		slog.Int("failed", result.TotalFailed()),
	)
	return result, nil
}

// dispatchEmail renders one message per eligible recipient and submits it
// as a delivery job. A submission failure counts as failed immediately;
// delivery failures are the queue's business from here on.
func (d *Dispatcher) dispatchEmail(ctx context.Context, event notification.Event) notification.ChannelResult {
	var res notification.ChannelResult

	eligible, err := d.evaluator.FilterRecipients(ctx, event.Recipients, event.Type, notification.ChannelEmail)
	if err != nil {
		d.logChannelError(ctx, event, notification.ChannelEmail, "filter recipients", err)
		res.Failed = len(event.Recipients)
		return res
	}
	if len(eligible) == 0 {
		return res
	}

	users, err := d.identity.GetUsers(ctx, eligible)
	if err != nil {
		d.logChannelError(ctx, event, notification.ChannelEmail, "resolve identities", err)
		res.Failed = len(eligible)
		return res
	}
	// Recipients without a resolvable identity cannot receive the email;
	// count them so the summary accounts for every eligible recipient.
	if missing := len(eligible) - len(users); missing > 0 {
		d.logChannelError(ctx, event, notification.ChannelEmail, "resolve identities",
			fmt.Errorf("%d of %d recipients unknown", missing, len(eligible)))
		res.Failed += missing
	}

	for _, user := range users {
		msg, err := d.renderer.Email(event.Type, event.Data, user)
		if err != nil {
			d.logChannelError(ctx, event, notification.ChannelEmail, "render message", err)
			res.Failed++
			continue
		}

		if _, err := d.enqueuer.Enqueue(ctx, queue.ChannelEmail, msg); err != nil {
			d.logChannelError(ctx, event, notification.ChannelEmail, "enqueue job", err)
			res.Failed++
			continue
		}
		res.Sent++
	}
	return res
}

// dispatchPush fans out to each recipient's subscriptions concurrently.
// Delivery happens inline rather than through the durable queue: it must
// fan out per subscription and failures are already self-classifying via
// the push sender.
func (d *Dispatcher) dispatchPush(ctx context.Context, event notification.Event) notification.ChannelResult {
	var res notification.ChannelResult

	eligible, err := d.evaluator.FilterRecipients(ctx, event.Recipients, event.Type, notification.ChannelPush)
	if err != nil {
		d.logChannelError(ctx, event, notification.ChannelPush, "filter recipients", err)
		res.Failed = len(event.Recipients)
		return res
	}
	if len(eligible) == 0 {
		return res
	}

	payload, err := d.renderer.Push(event.Type, event.Data)
	if err != nil {
		d.logChannelError(ctx, event, notification.ChannelPush, "render payload", err)
		res.Failed = len(eligible)
		return res
	}

	type counts struct{ sent, failed int }
	futures := make([]*async.Future[counts], len(eligible))
	for i, userID := range eligible {
		futures[i] = async.Run(ctx, userID, func(ctx context.Context, userID string) (counts, error) {
			sent, failed, err := d.pushers.SendToUser(ctx, userID, payload)
			if err != nil {
				// Subscription lookup failed; the user counts as one failure.
				return counts{failed: 1}, nil
			}
			return counts{sent: sent, failed: failed}, nil
		})
	}

	perUser, _ := async.WaitAll(futures...)
	for _, c := range perUser {
		res.Sent += c.sent
		res.Failed += c.failed
	}
	return res
}

// dispatchInApp creates one record per eligible recipient and pings the
// user's live sessions best effort.
func (d *Dispatcher) dispatchInApp(ctx context.Context, event notification.Event) int {
	eligible, err := d.evaluator.FilterRecipients(ctx, event.Recipients, event.Type, notification.ChannelInApp)
	if err != nil {
		d.logChannelError(ctx, event, notification.ChannelInApp, "filter recipients", err)
		return 0
	}

	content, err := d.renderer.InApp(event.Type, event.Data)
	if err != nil {
		d.logChannelError(ctx, event, notification.ChannelInApp, "render content", err)
		return 0
	}

	created := 0
	for _, userID := range eligible {
		record, err := d.inbox.Create(ctx, inbox.Notification{
			UserID:    userID,
			Type:      event.Type,
			Title:     content.Title,
			Message:   content.Message,
			Data:      event.Data,
			ActionURL: content.ActionURL,
			Priority:  content.Priority,
		})
		if err != nil {
			d.logChannelError(ctx, event, notification.ChannelInApp, "create record", err)
			continue
		}
		created++

		if err := d.presence.SendToUser(ctx, event.TenantID, userID, record); err != nil {
			// Fire and forget: live delivery never affects the outcome.
			d.log.LogAttrs(ctx, slog.LevelDebug, "live session push failed",
				logger.Component("dispatch"),
				logger.UserID(userID),
				logger.Error(err),
			)
		}
	}
	return created
}

func (d *Dispatcher) logChannelError(ctx context.Context, event notification.Event, channel notification.Channel, step string, err error) {
	d.log.LogAttrs(ctx, slog.LevelWarn, fmt.Sprintf("%s channel: failed to %s", channel, step),
		logger.Component("dispatch"),
		logger.EventType(string(event.Type)),
		logger.Channel(string(channel)),
		logger.Error(err),
	)
}
