package push

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DefaultSendTimeout bounds a single provider call.
const DefaultSendTimeout = 10 * time.Second

// Sender fans a payload out to a user's active subscriptions. When the
// provider reports an endpoint as permanently gone, the sender deactivates
// that subscription so later dispatches skip it; transient failures are
// counted and surfaced without side effects.
type Sender struct {
	provider Provider
	store    SubscriptionStore
	log      *slog.Logger
	timeout  time.Duration
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderLogger sets the logger for the sender.
func WithSenderLogger(log *slog.Logger) SenderOption {
	return func(s *Sender) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSendTimeout bounds each provider call.
func WithSendTimeout(d time.Duration) SenderOption {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSender creates a push sender.
func NewSender(provider Provider, store SubscriptionStore, opts ...SenderOption) (*Sender, error) {
	if provider == nil {
		return nil, ErrProviderNil
	}
	if store == nil {
		return nil, ErrStoreNil
	}

	s := &Sender{
		provider: provider,
		store:    store,
		log:      slog.Default(),
		timeout:  DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewSenderFromConfig validates the provider credentials before building
// the sender. Use it at startup so missing VAPID configuration disables
// the channel once, loudly, instead of failing every delivery.
func NewSenderFromConfig(cfg Config, provider Provider, store SubscriptionStore, opts ...SenderOption) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewSender(provider, store, opts...)
}

// Send delivers one payload to one subscription. On a gone-class provider
// response the subscription is deactivated, never deleted, and the error is
// returned so the caller can count the failure.
func (s *Sender) Send(ctx context.Context, sub Subscription, payload Payload) error {
	raw, err := EncodePayload(payload)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.provider.Send(sendCtx, sub, raw); err != nil {
		if errors.Is(err, ErrSubscriptionGone) {
			if dErr := s.store.Deactivate(ctx, sub.ID); dErr != nil {
				s.log.LogAttrs(ctx, slog.LevelError, "failed to deactivate gone subscription",
					logger.Component("push.sender"),
					logger.UserID(sub.UserID),
					logger.Error(dErr),
				)
			} else {
				s.log.LogAttrs(ctx, slog.LevelInfo, "deactivated gone subscription",
					logger.Component("push.sender"),
					logger.UserID(sub.UserID),
					slog.String("endpoint", sub.Endpoint),
				)
			}
		}
		return err
	}

	// Liveness bookkeeping only; a delivered notification stays delivered.
	if err := s.store.MarkSeen(ctx, sub.ID, time.Now()); err != nil {
		s.log.LogAttrs(ctx, slog.LevelDebug, "failed to mark subscription seen",
			logger.Component("push.sender"),
			logger.UserID(sub.UserID),
			logger.Error(err),
		)
	}
	return nil
}

// SendToUser fans the payload out to every active subscription of the user
// and reports how many sends succeeded and failed. A user without active
// subscriptions yields zero counts and no error.
func (s *Sender) SendToUser(ctx context.Context, userID string, payload Payload) (sent, failed int, err error) {
	subs, err := s.store.ActiveForUser(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	for _, sub := range subs {
		if err := s.Send(ctx, sub, payload); err != nil {
			failed++
			s.log.LogAttrs(ctx, slog.LevelWarn, "push delivery failed",
				logger.Component("push.sender"),
				logger.UserID(userID),
				logger.Error(err),
			)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
