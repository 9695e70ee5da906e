package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/tenant"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := tenant.WithID(context.Background(), id)

	got, ok := tenant.IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestIDFromContextMissing(t *testing.T) {
	t.Parallel()

	got, ok := tenant.IDFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, got)
}

func TestMustIDFromContextPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		tenant.MustIDFromContext(context.Background())
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	extract := tenant.LoggerExtractor()

	attr, ok := extract(tenant.WithID(context.Background(), id))
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, id.String(), attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
