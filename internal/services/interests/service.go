package interests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
)

const maxMessageRunes = 1000

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
	ErrOwnProfile = errors.New("cannot send interest to own profile")
	ErrDailyLimit = errors.New("daily interest limit reached")
)

// TooFastError is returned when a paid member exceeds the burst limit.
type TooFastError struct {
	RetryAfter int64
}

func (e *TooFastError) Error() string {
	return fmt.Sprintf("too many interests, retry after %d seconds", e.RetryAfter)
}

type Store interface {
	Create(ctx context.Context, in model.Interest, dayKey string, limit int) (model.Interest, int, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (model.Profile, error)
}

type EntitlementReader interface {
	Get(ctx context.Context, userID string) (model.Entitlement, error)
}

type BurstLimiter interface {
	Allow(ctx context.Context, userID string) (int64, bool, error)
}

type OwnerNotifier interface {
	Notify(ctx context.Context, userID string, typ enums.NotificationType, title, body string, payload map[string]interface{})
}

type Service struct {
	store        Store
	profiles     ProfileReader
	entitlements EntitlementReader
	limiter      BurstLimiter
	notifier     OwnerNotifier
	freePerDay   int
	now          func() time.Time
}

func NewService(store Store, profiles ProfileReader, entitlements EntitlementReader, freePerDay int) *Service {
	if freePerDay <= 0 {
		freePerDay = rules.FreeInterestsPerDay
	}
	return &Service{
		store:        store,
		profiles:     profiles,
		entitlements: entitlements,
		freePerDay:   freePerDay,
		now:          time.Now,
	}
}

func (s *Service) AttachLimiter(limiter BurstLimiter) {
	s.limiter = limiter
}

func (s *Service) AttachNotifier(notifier OwnerNotifier) {
	s.notifier = notifier
}

// Send records an interest from senderID in an approved profile. Free members
// are capped per UTC day and the cap is consumed in the same transaction as the
// insert. Paid members are only burst limited.
func (s *Service) Send(ctx context.Context, senderID, profileID, message string) (model.Interest, error) {
	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(profileID) == "" {
		return model.Interest{}, ErrValidation
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > maxMessageRunes {
		return model.Interest{}, fmt.Errorf("message is too long: %w", ErrValidation)
	}

	target, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Interest{}, ErrNotFound
		}
		return model.Interest{}, fmt.Errorf("get target profile: %w", err)
	}
	if target.Status != enums.ProfileStatusApproved {
		return model.Interest{}, ErrNotFound
	}
	if target.UserID == senderID {
		return model.Interest{}, ErrOwnProfile
	}

	ent, err := s.entitlements.Get(ctx, senderID)
	if err != nil {
		return model.Interest{}, fmt.Errorf("resolve entitlement: %w", err)
	}

	limit := rules.InterestLimit(ent.Paid, s.freePerDay)
	if ent.Paid && s.limiter != nil {
		retryAfter, allowed, err := s.limiter.Allow(ctx, senderID)
		if err != nil {
			return model.Interest{}, fmt.Errorf("check interest rate: %w", err)
		}
		if !allowed {
			return model.Interest{}, &TooFastError{RetryAfter: retryAfter}
		}
	}

	now := s.now().UTC()
	created, _, err := s.store.Create(ctx, model.Interest{
		ID:              uuid.NewString(),
		SenderID:        senderID,
		TargetProfileID: target.ID,
		Message:         message,
		CreatedAt:       now,
	}, rules.QuotaDayOf(now).Key, limit)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInterestLimitReached) {
			return model.Interest{}, ErrDailyLimit
		}
		return model.Interest{}, fmt.Errorf("create interest: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, target.UserID, enums.NotificationInterestReceived,
			"New interest", "A member is interested in your profile.",
			map[string]interface{}{"profile_id": target.ID, "interest_id": created.ID, "sender_id": senderID})
	}
	return created, nil
}

// CountToday counts interests sent since the current UTC midnight.
func (s *Service) CountToday(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrValidation
	}
	count, err := s.store.CountSince(ctx, userID, rules.QuotaDayOf(s.now()).Start)
	if err != nil {
		return 0, fmt.Errorf("count today's interests: %w", err)
	}
	return count, nil
}

func (s *Service) Quota(ctx context.Context, userID string) (model.InterestQuota, error) {
	used, err := s.CountToday(ctx, userID)
	if err != nil {
		return model.InterestQuota{}, err
	}
	ent, err := s.entitlements.Get(ctx, userID)
	if err != nil {
		return model.InterestQuota{}, fmt.Errorf("resolve entitlement: %w", err)
	}

	day := rules.QuotaDayOf(s.now())
	q := model.InterestQuota{
		DayKey:  day.Key,
		Used:    used,
		ResetAt: day.ResetAt,
	}
	if limit := rules.InterestLimit(ent.Paid, s.freePerDay); limit > 0 {
		q.Limit = &limit
		remaining := rules.Remaining(limit, used)
		q.Remaining = &remaining
	}
	return q, nil
}
