package broadcast_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
)

func receiveMsg[T any](t *testing.T, ctx context.Context, sub broadcast.Subscriber[T]) broadcast.Message[T] {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive(ctx):
		require.True(t, ok, "subscriber channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return broadcast.Message[T]{}
	}
}

func TestHub_RoutesByKey(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub[string](10, 4)
	defer hub.Close()

	alice := hub.Subscribe(ctx, "alice")
	bob := hub.Subscribe(ctx, "bob")

	require.NoError(t, hub.Publish(ctx, "alice", "for alice"))

	msg := receiveMsg(t, ctx, alice)
	assert.Equal(t, "for alice", msg.Data)

	select {
	case <-bob.Receive(ctx):
		t.Fatal("bob received a message addressed to alice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SharedKeyFansOut(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub[int](10, 4)
	defer hub.Close()

	first := hub.Subscribe(ctx, "user-1")
	second := hub.Subscribe(ctx, "user-1")

	require.NoError(t, hub.Publish(ctx, "user-1", 42))

	assert.Equal(t, 42, receiveMsg(t, ctx, first).Data)
	assert.Equal(t, 42, receiveMsg(t, ctx, second).Data)
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	hub := broadcast.NewHub[string](10, 4)
	defer hub.Close()

	require.NoError(t, hub.Publish(context.Background(), "ghost", "nobody home"))
}

func TestHub_EvictsLeastRecentlyUsedKey(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub[string](2, 4)
	defer hub.Close()

	oldest := hub.Subscribe(ctx, "k1")
	hub.Subscribe(ctx, "k2")
	hub.Subscribe(ctx, "k3")

	// k1 was evicted to make room for k3; its subscriber channel closes.
	select {
	case _, ok := <-oldest.Receive(ctx):
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("evicted subscriber channel never closed")
	}
}

func TestHub_Close(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub[string](10, 4)
	sub := hub.Subscribe(ctx, "user-1")

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	_, ok := <-sub.Receive(ctx)
	assert.False(t, ok)

	// Post-close subscribers come back already closed.
	late := hub.Subscribe(ctx, "user-1")
	_, ok = <-late.Receive(ctx)
	assert.False(t, ok)

	require.NoError(t, hub.Publish(ctx, "user-1", "dropped"))
}

func TestHub_ConcurrentSubscribeAndPublish(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub[int](32, 16)
	defer hub.Close()

	done := make(chan struct{})
	for i := range 8 {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			key := fmt.Sprintf("user-%d", i%4)
			hub.Subscribe(ctx, key)
			for j := range 20 {
				_ = hub.Publish(ctx, key, j)
			}
		}(i)
	}
	for range 8 {
		<-done
	}
}
