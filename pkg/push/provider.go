package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Payload is a rendered push notification. It mirrors the browser
// notification options the service worker hands to showNotification.
type Payload struct {
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon,omitempty"`
	Badge              string         `json:"badge,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	URL                string         `json:"url,omitempty"`
	RequireInteraction bool           `json:"require_interaction,omitempty"`
	Vibrate            []int          `json:"vibrate,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
}

// Provider delivers an encoded payload to one subscription endpoint.
// Implementations wrap gone/not-found class responses with
// ErrSubscriptionGone; any other error is treated as transient.
type Provider interface {
	Send(ctx context.Context, sub Subscription, payload []byte) error
}

// Config holds the VAPID credentials a web push provider needs. Absent
// credentials are a configuration error: the channel fails fast at startup
// instead of failing per job.
type Config struct {
	VAPIDPublicKey  string `env:"PUSH_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"PUSH_VAPID_PRIVATE_KEY"`
	Subject         string `env:"PUSH_VAPID_SUBJECT"` // mailto: or https: contact
}

// Validate reports whether the config is complete enough to send.
func (c Config) Validate() error {
	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return fmt.Errorf("%w: VAPID key pair is required", ErrInvalidConfig)
	}
	if c.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidConfig)
	}
	return nil
}

// LogProvider is a development Provider that logs payloads instead of
// delivering them.
type LogProvider struct {
	log *slog.Logger
}

// NewLogProvider creates a provider that writes each send to the logger.
func NewLogProvider(log *slog.Logger) *LogProvider {
	if log == nil {
		log = slog.Default()
	}
	return &LogProvider{log: log}
}

func (p *LogProvider) Send(ctx context.Context, sub Subscription, payload []byte) error {
	p.log.InfoContext(ctx, "push notification",
		slog.String("user_id", sub.UserID),
		slog.String("endpoint", sub.Endpoint),
		slog.String("payload", string(payload)))
	return nil
}

// EncodePayload marshals a payload into the wire form handed to providers.
func EncodePayload(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("push: encode payload: %w", err)
	}
	return raw, nil
}
