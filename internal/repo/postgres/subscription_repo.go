package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

// ActivateParams describes the subscription that replaces a user's current active one.
type ActivateParams struct {
	ID              string
	UserID          string
	Plan            enums.SubscriptionPlan
	StartDate       time.Time
	ExpiryDate      *time.Time
	StripeSessionID string
	Metadata        map[string]string
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, plan, status, start_date, expiry_date,
	COALESCE(stripe_session_id, ''), metadata, created_at, updated_at`

func (r *SubscriptionRepo) GetActiveByUser(ctx context.Context, userID string) (model.Subscription, error) {
	if r.pool == nil {
		return model.Subscription{}, ErrPoolUnavailable
	}
	sub, err := scanSubscription(r.pool.QueryRow(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE user_id = $1 AND status = 'active'
ORDER BY start_date DESC
LIMIT 1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscription{}, ErrSubscriptionNotFound
		}
		return model.Subscription{}, fmt.Errorf("get active subscription: %w", err)
	}
	return sub, nil
}

// Activate expires the user's active subscription and inserts p as the new active one
// in a single transaction. When p carries a stripe session id that was already applied,
// the stored subscription is returned with created=false.
func (r *SubscriptionRepo) Activate(ctx context.Context, p ActivateParams) (model.Subscription, bool, error) {
	if r.pool == nil {
		return model.Subscription{}, false, ErrPoolUnavailable
	}
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.UserID) == "" || !p.Plan.Valid() {
		return model.Subscription{}, false, fmt.Errorf("invalid subscription payload")
	}
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	sessionID := strings.TrimSpace(p.StripeSessionID)

	var (
		out     model.Subscription
		created bool
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if sessionID != "" {
			existing, err := scanSubscription(tx.QueryRow(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE stripe_session_id = $1
LIMIT 1
`, sessionID))
			if err == nil {
				out = existing
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("lookup subscription by session: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `
UPDATE subscriptions
SET status = 'expired', updated_at = $2
WHERE user_id = $1 AND status = 'active'
`, p.UserID, p.StartDate.UTC()); err != nil {
			return fmt.Errorf("expire previous subscription: %w", err)
		}

		inserted, err := scanSubscription(tx.QueryRow(ctx, `
INSERT INTO subscriptions (
	id, user_id, plan, status, start_date, expiry_date, stripe_session_id, metadata, created_at, updated_at
) VALUES ($1, $2, $3, 'active', $4, $5, NULLIF($6, ''), $7, $4, $4)
RETURNING `+subscriptionColumns,
			p.ID, p.UserID, string(p.Plan), p.StartDate.UTC(), utcPtr(p.ExpiryDate), sessionID, p.Metadata,
		))
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}

		if sessionID != "" {
			if _, err := tx.Exec(ctx, `DELETE FROM subscriptions_pending WHERE stripe_session_id = $1`, sessionID); err != nil {
				return fmt.Errorf("clear pending checkout: %w", err)
			}
		}

		out = inserted
		created = true
		return nil
	})
	if err != nil {
		if sessionID != "" && isUniqueViolation(err, "subscriptions_stripe_session_key") {
			existing, getErr := r.GetBySession(ctx, sessionID)
			if getErr != nil {
				return model.Subscription{}, false, getErr
			}
			return existing, false, nil
		}
		return model.Subscription{}, false, err
	}
	return out, created, nil
}

func (r *SubscriptionRepo) GetBySession(ctx context.Context, sessionID string) (model.Subscription, error) {
	if r.pool == nil {
		return model.Subscription{}, ErrPoolUnavailable
	}
	sub, err := scanSubscription(r.pool.QueryRow(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE stripe_session_id = $1
LIMIT 1
`, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscription{}, ErrSubscriptionNotFound
		}
		return model.Subscription{}, fmt.Errorf("get subscription by session: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepo) CreatePending(ctx context.Context, pending model.PendingCheckout) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	if _, err := r.pool.Exec(ctx, `
INSERT INTO subscriptions_pending (id, user_id, plan, stripe_session_id, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (stripe_session_id) DO NOTHING
`, pending.ID, pending.UserID, string(pending.Plan), pending.StripeSessionID, pending.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("create pending checkout: %w", err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (model.Subscription, error) {
	var (
		sub    model.Subscription
		plan   string
		status string
	)
	if err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&plan,
		&status,
		&sub.StartDate,
		&sub.ExpiryDate,
		&sub.StripeSessionID,
		&sub.Metadata,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return model.Subscription{}, err
	}
	sub.Plan = enums.SubscriptionPlan(plan)
	sub.Status = enums.SubscriptionStatus(status)
	return sub, nil
}
