package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/queue"
)

// QueuePayload is the job payload format for push jobs routed through the
// delivery queue: the target user plus the rendered notification. The
// subscription lookup happens at send time so a job enqueued before a
// device re-registers still reaches it.
type QueuePayload struct {
	UserID  string  `json:"user_id"`
	Payload Payload `json:"payload"`
}

// QueueSender adapts a push Sender to the delivery queue for callers that
// want push on the same retry and backoff machinery as email. Dispatch
// delivers push inline by default; this adapter is the queued alternative.
type QueueSender struct {
	sender *Sender
}

// NewQueueSender wraps the given sender for registration with a queue
// processor.
func NewQueueSender(sender *Sender) (*QueueSender, error) {
	if sender == nil {
		return nil, errors.New("push: sender cannot be nil")
	}
	return &QueueSender{sender: sender}, nil
}

// Channel implements queue.Sender.
func (s *QueueSender) Channel() string { return queue.ChannelPush }

// Send decodes the job payload and fans out to the user's subscriptions.
// The job counts as failed only when every subscription send fails; a user
// with no active subscriptions is a success with nothing to do.
func (s *QueueSender) Send(ctx context.Context, payload json.RawMessage) error {
	var job QueuePayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("%w: decode push payload: %v", queue.ErrPermanent, err)
	}
	if job.UserID == "" {
		return fmt.Errorf("%w: push payload without user id", queue.ErrPermanent)
	}

	sent, failed, err := s.sender.SendToUser(ctx, job.UserID, job.Payload)
	if err != nil {
		return err
	}
	if sent == 0 && failed > 0 {
		return fmt.Errorf("push: all %d subscription sends failed", failed)
	}
	return nil
}
