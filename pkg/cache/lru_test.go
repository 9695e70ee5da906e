package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/cache"
)

func TestPutGet(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestEvictionCallback(t *testing.T) {
	t.Parallel()

	evicted := make(map[string]int)
	c := cache.NewLRU[string, int](1)
	c.OnEvict(func(k string, v int) { evicted[k] = v })

	c.Put("a", 1)
	c.Put("b", 2)

	assert.Equal(t, map[string]int{"a": 1}, evicted)
}

func TestClearInvokesCallback(t *testing.T) {
	t.Parallel()

	var count int
	c := cache.NewLRU[string, int](10)
	c.OnEvict(func(string, int) { count++ })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	assert.Equal(t, 2, count)
	assert.Equal(t, 0, c.Len())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)
	c.Put("a", 1)

	v, ok := c.Remove("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Remove("a")
	assert.False(t, ok)
}

func TestUpdateExistingKey(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("a", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestNewLRUPanicsOnZeroCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRU[string, int](0) })
}
