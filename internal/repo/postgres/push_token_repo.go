package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type PushTokenRepo struct {
	pool *pgxpool.Pool
}

func NewPushTokenRepo(pool *pgxpool.Pool) *PushTokenRepo {
	return &PushTokenRepo{pool: pool}
}

func (r *PushTokenRepo) Upsert(ctx context.Context, t model.PushToken) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	if strings.TrimSpace(t.UserID) == "" || strings.TrimSpace(t.Token) == "" {
		return fmt.Errorf("invalid push token payload")
	}
	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_notification_tokens (user_id, token, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
	token = EXCLUDED.token,
	updated_at = EXCLUDED.updated_at
`, t.UserID, t.Token, t.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("upsert push token: %w", err)
	}
	return nil
}

// Remove clears the user's token but keeps the row.
func (r *PushTokenRepo) Remove(ctx context.Context, userID string, now time.Time) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	if _, err := r.pool.Exec(ctx, `
UPDATE user_notification_tokens SET token = NULL, updated_at = $2 WHERE user_id = $1
`, userID, now.UTC()); err != nil {
		return fmt.Errorf("remove push token: %w", err)
	}
	return nil
}

// ListTokens returns the stored tokens of userIDs, or every stored token when userIDs is empty.
func (r *PushTokenRepo) ListTokens(ctx context.Context, userIDs []string) ([]string, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	query := `SELECT token FROM user_notification_tokens WHERE token IS NOT NULL AND token <> ''`
	args := []any{}
	if len(userIDs) > 0 {
		query += ` AND user_id = ANY($1)`
		args = append(args, userIDs)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan push token: %w", err)
		}
		out = append(out, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push tokens: %w", err)
	}
	return out, nil
}

// DeleteToken clears every row holding token; used when the push service reports it gone.
func (r *PushTokenRepo) DeleteToken(ctx context.Context, token string) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	if _, err := r.pool.Exec(ctx, `
UPDATE user_notification_tokens SET token = NULL, updated_at = NOW() WHERE token = $1
`, token); err != nil {
		return fmt.Errorf("delete push token: %w", err)
	}
	return nil
}
