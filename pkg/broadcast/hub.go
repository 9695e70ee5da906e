package broadcast

import (
	"context"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/cache"
)

// Hub routes messages to per-key broadcasters created on demand. The live
// key set is bounded by an LRU: when a new key would exceed the bound, the
// least recently used key's broadcaster is closed and its subscribers
// dropped. Suited to per-user live channels where the active audience is
// much smaller than the user base.
//
// All methods are safe for concurrent use.
type Hub[T any] struct {
	broadcasters *cache.LRU[string, *MemoryBroadcaster[T]]
	bufferSize   int
	mu           sync.Mutex
	closed       bool
}

// NewHub creates a hub holding at most maxKeys live broadcasters, each
// delivering to subscribers through a buffered channel of bufferSize.
// Panics when maxKeys is not positive.
func NewHub[T any](maxKeys, bufferSize int) *Hub[T] {
	broadcasters := cache.NewLRU[string, *MemoryBroadcaster[T]](maxKeys)
	broadcasters.OnEvict(func(_ string, b *MemoryBroadcaster[T]) {
		_ = b.Close()
	})
	return &Hub[T]{
		broadcasters: broadcasters,
		bufferSize:   bufferSize,
	}
}

// Subscribe attaches a subscriber to the key's broadcaster, creating the
// broadcaster if the key has none. The subscription follows the same
// lifecycle as MemoryBroadcaster.Subscribe.
func (h *Hub[T]) Subscribe(ctx context.Context, key string) Subscriber[T] {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub := newSubscriber[T](h.bufferSize)
		_ = sub.Close()
		return sub
	}

	b, ok := h.broadcasters.Get(key)
	if !ok {
		b = NewMemoryBroadcaster[T](h.bufferSize)
		h.broadcasters.Put(key, b)
	}
	h.mu.Unlock()

	return b.Subscribe(ctx)
}

// Publish sends data to the key's subscribers. A key nobody subscribed to
// is a no-op; publishing never creates a broadcaster.
func (h *Hub[T]) Publish(ctx context.Context, key string, data T) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	b, ok := h.broadcasters.Get(key)
	h.mu.Unlock()

	if !ok {
		return nil
	}
	return b.Broadcast(ctx, Message[T]{Data: data})
}

// Close shuts down every broadcaster in the hub. Idempotent.
func (h *Hub[T]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.broadcasters.Clear()
	return nil
}
