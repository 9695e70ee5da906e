package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithID stamps the tenant identifier into the context. Every engine
// operation triggered by an event runs under the event's tenant so storage
// and senders never mix data across tenants.
func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext retrieves the tenant identifier from the context.
// Returns the zero UUID and false if no tenant is set.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return id, ok
}

// MustIDFromContext retrieves the tenant identifier from the context and
// panics if none is set. Use only in paths that cannot run tenant-less.
func MustIDFromContext(ctx context.Context) uuid.UUID {
	id, ok := IDFromContext(ctx)
	if !ok {
		panic("tenant: no tenant id in context")
	}
	return id
}

// LoggerExtractor returns a context extractor for the logger that adds the
// tenant id to every record logged under a tenant-scoped context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
