package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

const (
	defaultLatestLimit = 50
	maxLatestLimit     = 200
)

type Repo interface {
	Insert(ctx context.Context, entry model.ActivityLog) error
	Latest(ctx context.Context, limit int) ([]model.ActivityLog, error)
}

// Actor is the admin a log entry is attributed to.
type Actor struct {
	ID   string
	Name string
}

type Service struct {
	repo   Repo
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record writes an activity entry after a successful mutation. A failed write is
// logged and never reported to the caller.
func (s *Service) Record(ctx context.Context, actor Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	name := strings.TrimSpace(actor.Name)
	if name == "" {
		name = actor.ID
	}
	entry := model.ActivityLog{
		ID:         uuid.NewString(),
		AdminID:    actor.ID,
		AdminName:  name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Timestamp:  s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("action", string(action)),
			zap.String("entity_id", entityID),
			zap.String("admin_id", actor.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) Latest(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if s == nil || s.repo == nil {
		return []model.ActivityLog{}, nil
	}
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	if limit > maxLatestLimit {
		limit = maxLatestLimit
	}
	return s.repo.Latest(ctx, limit)
}
