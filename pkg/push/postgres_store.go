package push

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// PostgresStore persists push subscriptions in PostgreSQL. The endpoint
// carries a unique constraint; re-registering a known endpoint refreshes
// and reactivates the existing row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed subscription store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, ErrStoreNil
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, sub Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, true, $6)
		 ON CONFLICT (endpoint) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			active = true,
			deactivated_at = NULL`,
		sub.ID, sub.UserID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("push: save subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) ActiveForUser(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, active, created_at, last_seen_at, deactivated_at
		 FROM push_subscriptions
		 WHERE user_id = $1 AND active = true
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("push: query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth,
			&sub.Active, &sub.CreatedAt, &sub.LastSeenAt, &sub.DeactivatedAt,
		); err != nil {
			return nil, fmt.Errorf("push: scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PostgresStore) MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE push_subscriptions SET last_seen_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("push: mark subscription seen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE push_subscriptions SET active = false, deactivated_at = now()
		 WHERE id = $1 AND active = true`,
		id,
	)
	if err != nil {
		return fmt.Errorf("push: deactivate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish already-inactive from missing.
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT true FROM push_subscriptions WHERE id = $1`, id,
		).Scan(&exists)
		if pg.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("push: check subscription: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("push: delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
