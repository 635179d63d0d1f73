package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type InterestRepo struct {
	pool *pgxpool.Pool
}

func NewInterestRepo(pool *pgxpool.Pool) *InterestRepo {
	return &InterestRepo{pool: pool}
}

// Create stores an interest. A positive limit consumes one unit of the sender's daily
// quota in the same transaction; when the quota is spent nothing is written and
// ErrInterestLimitReached is returned. limit <= 0 means unlimited.
func (r *InterestRepo) Create(ctx context.Context, in model.Interest, dayKey string, limit int) (model.Interest, int, error) {
	if r.pool == nil {
		return model.Interest{}, 0, ErrPoolUnavailable
	}
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.SenderID) == "" || strings.TrimSpace(dayKey) == "" {
		return model.Interest{}, 0, fmt.Errorf("invalid interest payload")
	}

	var (
		out  model.Interest
		used int
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		used, err = consumeInterestQuota(ctx, tx, in.SenderID, dayKey, limit, in.CreatedAt)
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `
INSERT INTO interests (id, sender_id, target_profile_id, message, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, sender_id, target_profile_id, message, created_at
`, in.ID, in.SenderID, in.TargetProfileID, in.Message, in.CreatedAt.UTC()).Scan(
			&out.ID,
			&out.SenderID,
			&out.TargetProfileID,
			&out.Message,
			&out.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert interest: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Interest{}, 0, err
	}
	return out, used, nil
}

func consumeInterestQuota(ctx context.Context, tx pgx.Tx, userID, dayKey string, limit int, now time.Time) (int, error) {
	var used int
	if limit <= 0 {
		err := tx.QueryRow(ctx, `
INSERT INTO interest_quotas_daily (user_id, day_key, used, updated_at)
VALUES ($1, $2::date, 1, $3)
ON CONFLICT (user_id, day_key) DO UPDATE SET
	used = interest_quotas_daily.used + 1,
	updated_at = EXCLUDED.updated_at
RETURNING used
`, userID, dayKey, now.UTC()).Scan(&used)
		if err != nil {
			return 0, fmt.Errorf("count interest quota: %w", err)
		}
		return used, nil
	}

	err := tx.QueryRow(ctx, `
INSERT INTO interest_quotas_daily (user_id, day_key, used, updated_at)
VALUES ($1, $2::date, 1, $4)
ON CONFLICT (user_id, day_key) DO UPDATE SET
	used = interest_quotas_daily.used + 1,
	updated_at = EXCLUDED.updated_at
WHERE interest_quotas_daily.used < $3
RETURNING used
`, userID, dayKey, limit, now.UTC()).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInterestLimitReached
		}
		return 0, fmt.Errorf("consume interest quota with limit: %w", err)
	}
	return used, nil
}

// CountSince counts interests sent by userID at or after since.
func (r *InterestRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if r.pool == nil {
		return 0, ErrPoolUnavailable
	}
	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM interests
WHERE sender_id = $1 AND created_at >= $2
`, userID, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count interests since: %w", err)
	}
	return count, nil
}
