package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// priorityRankSQL maps the priority column to its sort weight.
const priorityRankSQL = `CASE priority WHEN 'urgent' THEN 3 WHEN 'high' THEN 2 WHEN 'normal' THEN 1 ELSE 0 END`

// PostgresStorage persists in-app notifications in PostgreSQL. The schema
// lives in the module's migrations directory.
type PostgresStorage struct {
	pool       *pgxpool.Pool
	maxPerUser int
}

// NewPostgresStorage creates a Postgres-backed notification storage with the
// given per-user cap. A non-positive cap falls back to DefaultMaxPerUser.
func NewPostgresStorage(pool *pgxpool.Pool, maxPerUser int) (*PostgresStorage, error) {
	if pool == nil {
		return nil, ErrStorageNil
	}
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxPerUser
	}
	return &PostgresStorage{pool: pool, maxPerUser: maxPerUser}, nil
}

// Create inserts a record, evicting the user's oldest rows first when the
// cap would be exceeded. A per-user advisory lock serializes the
// count-evict-insert sequence against concurrent creations for the same
// user; different users proceed in parallel.
func (s *PostgresStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == uuid.Nil {
		return ErrMissingID
	}
	if notif.UserID == "" {
		return ErrMissingUserID
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	data, err := json.Marshal(notif.Data)
	if err != nil {
		return fmt.Errorf("inbox: encode data: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, notif.UserID); err != nil {
			return fmt.Errorf("inbox: acquire user lock: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM in_app_notifications WHERE user_id = $1`,
			notif.UserID,
		).Scan(&count); err != nil {
			return fmt.Errorf("inbox: count notifications: %w", err)
		}

		if overflow := count - s.maxPerUser + 1; overflow > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM in_app_notifications WHERE id IN (
					SELECT id FROM in_app_notifications
					WHERE user_id = $1
					ORDER BY created_at ASC, id ASC
					LIMIT $2
				)`,
				notif.UserID, overflow,
			); err != nil {
				return fmt.Errorf("inbox: evict oldest notifications: %w", err)
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO in_app_notifications
				(id, user_id, type, title, message, data, action_url, priority, read, read_at, created_at, expires_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			notif.ID, notif.UserID, string(notif.Type), notif.Title, notif.Message, data,
			notif.ActionURL, string(notif.Priority), notif.Read, notif.ReadAt, notif.CreatedAt, notif.ExpiresAt,
		); err != nil {
			return fmt.Errorf("inbox: insert notification: %w", err)
		}

		return nil
	})
}

func (s *PostgresStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, type, title, message, data, action_url, priority, read, read_at, created_at, expires_at
		 FROM in_app_notifications WHERE user_id = $1 AND id = $2`,
		userID, id,
	)

	notif, err := scanNotification(row)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("inbox: get notification: %w", err)
	}
	return notif, nil
}

func (s *PostgresStorage) List(ctx context.Context, userID string, opts ListOptions) (ListResult, error) {
	where := []string{
		"user_id = $1",
		"(expires_at IS NULL OR expires_at > now())",
	}
	args := []any{userID}

	if opts.UnreadOnly {
		where = append(where, "read = false")
	}
	if len(opts.Types) > 0 {
		types := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		where = append(where, fmt.Sprintf("type = ANY($%d)", len(args)))
	}
	if opts.Priority != nil {
		args = append(args, string(*opts.Priority))
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if opts.Until != nil {
		args = append(args, *opts.Until)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var result ListResult
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM in_app_notifications WHERE `+cond, args...,
	).Scan(&result.Total); err != nil {
		return ListResult{}, fmt.Errorf("inbox: count listing: %w", err)
	}

	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM in_app_notifications
		 WHERE user_id = $1 AND read = false AND (expires_at IS NULL OR expires_at > now())`,
		userID,
	).Scan(&result.UnreadCount); err != nil {
		return ListResult{}, fmt.Errorf("inbox: count unread: %w", err)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := max(opts.Page, 1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, title, message, data, action_url, priority, read, read_at, created_at, expires_at
		 FROM in_app_notifications
		 WHERE `+cond+`
		 ORDER BY `+priorityRankSQL+` DESC, created_at DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return ListResult{}, fmt.Errorf("inbox: list notifications: %w", err)
	}
	defer rows.Close()

	result.Items = []Notification{}
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("inbox: scan notification: %w", err)
		}
		result.Items = append(result.Items, *notif)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("inbox: iterate notifications: %w", err)
	}

	return result, nil
}

func (s *PostgresStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE in_app_notifications SET read = true, read_at = now()
		 WHERE user_id = $1 AND id = ANY($2) AND read = false`,
		userID, ids,
	)
	if err != nil {
		return fmt.Errorf("inbox: mark read: %w", err)
	}
	return nil
}

func (s *PostgresStorage) UnreadIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM in_app_notifications
		 WHERE user_id = $1 AND read = false AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("inbox: query unread ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("inbox: scan unread id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStorage) Delete(ctx context.Context, userID string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM in_app_notifications WHERE user_id = $1 AND id = ANY($2)`,
		userID, ids,
	)
	if err != nil {
		return fmt.Errorf("inbox: delete notifications: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM in_app_notifications WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("inbox: count for user: %w", err)
	}
	return count, nil
}

func (s *PostgresStorage) Cleanup(ctx context.Context, readRetention time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM in_app_notifications
		 WHERE (expires_at IS NOT NULL AND expires_at <= now())
		    OR (read = true AND created_at < $1)`,
		time.Now().Add(-readRetention),
	)
	if err != nil {
		return 0, fmt.Errorf("inbox: cleanup: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// scanNotification reads one row into a Notification.
func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		notif Notification
		data  []byte
	)
	if err := row.Scan(
		&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Message, &data,
		&notif.ActionURL, &notif.Priority, &notif.Read, &notif.ReadAt, &notif.CreatedAt, &notif.ExpiresAt,
	); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &notif.Data); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &notif, nil
}
