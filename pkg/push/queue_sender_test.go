package push_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/push"
	"github.com/dmitrymomot/notifykit/pkg/queue"
)

func TestQueueSender(t *testing.T) {
	t.Parallel()

	payload := func(t *testing.T, userID string) json.RawMessage {
		t.Helper()
		raw, err := json.Marshal(push.QueuePayload{
			UserID:  userID,
			Payload: push.Payload{Title: "Invoice issued", Body: "Invoice #42 is ready"},
		})
		require.NoError(t, err)
		return raw
	}

	newQueueSender := func(t *testing.T, provider push.Provider, store push.SubscriptionStore) *push.QueueSender {
		t.Helper()
		sender, err := push.NewSender(provider, store)
		require.NoError(t, err)
		qs, err := push.NewQueueSender(sender)
		require.NoError(t, err)
		return qs
	}

	t.Run("channel name", func(t *testing.T) {
		t.Parallel()

		qs := newQueueSender(t, new(MockProvider), push.NewMemoryStore())
		assert.Equal(t, queue.ChannelPush, qs.Channel())
	})

	t.Run("delivers to user subscriptions", func(t *testing.T) {
		t.Parallel()

		store := push.NewMemoryStore()
		require.NoError(t, store.Save(context.Background(), newSubscription("user-1", "https://push.example.com/ep1")))

		provider := new(MockProvider)
		provider.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		qs := newQueueSender(t, provider, store)
		require.NoError(t, qs.Send(context.Background(), payload(t, "user-1")))
		provider.AssertExpectations(t)
	})

	t.Run("no subscriptions succeeds", func(t *testing.T) {
		t.Parallel()

		qs := newQueueSender(t, new(MockProvider), push.NewMemoryStore())
		require.NoError(t, qs.Send(context.Background(), payload(t, "user-1")))
	})

	t.Run("all sends failing is a job failure", func(t *testing.T) {
		t.Parallel()

		store := push.NewMemoryStore()
		require.NoError(t, store.Save(context.Background(), newSubscription("user-1", "https://push.example.com/ep1")))

		provider := new(MockProvider)
		provider.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("provider 503"))

		qs := newQueueSender(t, provider, store)
		err := qs.Send(context.Background(), payload(t, "user-1"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, queue.ErrPermanent)
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		t.Parallel()

		qs := newQueueSender(t, new(MockProvider), push.NewMemoryStore())
		err := qs.Send(context.Background(), json.RawMessage(`{broken`))
		require.ErrorIs(t, err, queue.ErrPermanent)
	})

	t.Run("missing user id is permanent", func(t *testing.T) {
		t.Parallel()

		qs := newQueueSender(t, new(MockProvider), push.NewMemoryStore())
		err := qs.Send(context.Background(), payload(t, ""))
		require.ErrorIs(t, err, queue.ErrPermanent)
	})
}
