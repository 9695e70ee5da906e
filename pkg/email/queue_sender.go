package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/queue"
)

// QueueSender adapts a Sender to the delivery queue, so email goes out
// exclusively through queue jobs and gets the retry and backoff machinery
// uniformly.
type QueueSender struct {
	sender Sender
}

// NewQueueSender wraps the given sender for registration with a queue
// processor.
func NewQueueSender(sender Sender) (*QueueSender, error) {
	if sender == nil {
		return nil, errors.New("email: sender cannot be nil")
	}
	return &QueueSender{sender: sender}, nil
}

// Channel implements queue.Sender.
func (s *QueueSender) Channel() string { return queue.ChannelEmail }

// Send decodes the job payload into a Message and delivers it. Validation
// errors and permanent provider rejections are marked permanent so the
// queue archives the job instead of retrying it.
func (s *QueueSender) Send(ctx context.Context, payload json.RawMessage) error {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: decode email payload: %v", queue.ErrPermanent, err)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		if errors.Is(err, ErrPermanentFailure) || errors.Is(err, ErrInvalidMessage) {
			return errors.Join(queue.ErrPermanent, err)
		}
		return err
	}
	return nil
}
