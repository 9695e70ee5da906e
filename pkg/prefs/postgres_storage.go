package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// PostgresStorage persists preferences in PostgreSQL. The preference body is
// stored as a JSONB document keyed by user id; the schema lives in the
// module's migrations directory.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Postgres-backed preference storage.
func NewPostgresStorage(pool *pgxpool.Pool) (*PostgresStorage, error) {
	if pool == nil {
		return nil, ErrStorageNil
	}
	return &PostgresStorage{pool: pool}, nil
}

func (s *PostgresStorage) Get(ctx context.Context, userID string) (Preference, error) {
	var (
		body      []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT prefs, updated_at FROM notification_preferences WHERE user_id = $1`,
		userID,
	).Scan(&body, &updatedAt)
	if err != nil {
		if pg.IsNotFound(err) {
			return Preference{}, ErrNotFound
		}
		return Preference{}, fmt.Errorf("prefs: query preference: %w", err)
	}

	var pref Preference
	if err := json.Unmarshal(body, &pref); err != nil {
		return Preference{}, fmt.Errorf("prefs: decode preference: %w", err)
	}
	pref.UserID = userID
	pref.UpdatedAt = updatedAt
	return pref, nil
}

func (s *PostgresStorage) Upsert(ctx context.Context, pref Preference) error {
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}

	body, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("prefs: encode preference: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO notification_preferences (user_id, prefs, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET prefs = EXCLUDED.prefs, updated_at = EXCLUDED.updated_at`,
		pref.UserID, body, pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("prefs: upsert preference: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Reset(ctx context.Context, userID string) error {
	pref := Default(userID)
	pref.UpdatedAt = time.Now()
	return s.Upsert(ctx, pref)
}
