package entitlements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
)

const DefaultFreshness = 5 * time.Minute

var ErrValidation = errors.New("validation error")

type Store interface {
	GetActiveByUser(ctx context.Context, userID string) (model.Subscription, error)
}

type Cache interface {
	Get(ctx context.Context, userID string) (model.Entitlement, bool, error)
	Set(ctx context.Context, ent model.Entitlement, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// Service resolves whether a user currently holds the paid tier. Results are cached
// for at most the freshness window and never past the subscription expiry.
type Service struct {
	store     Store
	cache     Cache
	freshness time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		freshness: DefaultFreshness,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) AttachCache(cache Cache, freshness time.Duration) {
	if freshness > 0 {
		s.freshness = freshness
	}
	s.cache = cache
}

func (s *Service) Get(ctx context.Context, userID string) (model.Entitlement, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Entitlement{}, ErrValidation
	}
	now := s.now().UTC()

	if s.cache != nil {
		ent, ok, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			s.logger.Warn("entitlement cache read failed", zap.String("user_id", userID), zap.Error(err))
		case ok:
			return expireStale(ent, now), nil
		}
	}

	if s.store == nil {
		return model.Entitlement{}, fmt.Errorf("subscription store is nil")
	}
	ent := model.Entitlement{UserID: userID, Plan: enums.SubscriptionPlanFree}
	sub, err := s.store.GetActiveByUser(ctx, userID)
	switch {
	case err == nil:
		ent.Plan = sub.Plan
		ent.Paid = rules.ResolveAccess(&sub, now) == enums.AccessModeFull
		ent.ExpiresAt = sub.ExpiryDate
	case errors.Is(err, pgrepo.ErrSubscriptionNotFound):
	default:
		return model.Entitlement{}, fmt.Errorf("get active subscription: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ent, s.cacheTTL(ent, now)); err != nil {
			s.logger.Warn("entitlement cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return ent, nil
}

// Invalidate drops the cached entitlement after a subscription change.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("entitlement cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *Service) cacheTTL(ent model.Entitlement, now time.Time) time.Duration {
	ttl := s.freshness
	if ent.Paid && ent.ExpiresAt != nil {
		if untilExpiry := ent.ExpiresAt.Sub(now); untilExpiry < ttl {
			ttl = untilExpiry
		}
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func expireStale(ent model.Entitlement, now time.Time) model.Entitlement {
	if ent.Paid && ent.ExpiresAt != nil && !ent.ExpiresAt.After(now) {
		ent.Paid = false
	}
	return ent
}
