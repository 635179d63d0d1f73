package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrForbidden       = errors.New("super admin role required")
	ErrSelfDemotion    = errors.New("cannot demote yourself")
	ErrProtectedTarget = errors.New("super admins cannot be changed")
	ErrNotFound        = errors.New("user not found")
)

type StatsStore interface {
	Dashboard(ctx context.Context) (model.DashboardStats, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	SetRole(ctx context.Context, id string, role enums.Role, protected []enums.Role, now time.Time) (model.User, error)
}

// SessionRevoker ends a user's sessions so a role change applies on next sign-in.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

type ProfileLister interface {
	ListByStatus(ctx context.Context, f model.AdminProfileFilter) ([]model.Profile, error)
}

type DirectoryLister interface {
	List(ctx context.Context, f model.DirectoryFilter) ([]model.DirectoryEntry, error)
}

type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{})
}

type Dependencies struct {
	Stats     StatsStore
	Users     UserStore
	Sessions  SessionRevoker
	Profiles  ProfileLister
	Directory DirectoryLister
	Auditor   Auditor
}

type Service struct {
	stats     StatsStore
	users     UserStore
	sessions  SessionRevoker
	profiles  ProfileLister
	directory DirectoryLister
	auditor   Auditor
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stats:     deps.Stats,
		users:     deps.Users,
		sessions:  deps.Sessions,
		profiles:  deps.Profiles,
		directory: deps.Directory,
		auditor:   deps.Auditor,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Stats(ctx context.Context) (model.DashboardStats, error) {
	if s.stats == nil {
		return model.DashboardStats{}, fmt.Errorf("stats store is nil")
	}
	return s.stats.Dashboard(ctx)
}

func (s *Service) Promote(ctx context.Context, actor audit.Actor, actorRole enums.Role, targetID string) (model.User, error) {
	return s.changeRole(ctx, actor, actorRole, targetID, enums.RoleAdmin, enums.ActionPromotedAdmin)
}

func (s *Service) Demote(ctx context.Context, actor audit.Actor, actorRole enums.Role, targetID string) (model.User, error) {
	if strings.TrimSpace(targetID) == strings.TrimSpace(actor.ID) {
		return model.User{}, ErrSelfDemotion
	}
	return s.changeRole(ctx, actor, actorRole, targetID, enums.RoleMember, enums.ActionDemotedAdmin)
}

func (s *Service) changeRole(ctx context.Context, actor audit.Actor, actorRole enums.Role, targetID string, role enums.Role, action enums.ActivityAction) (model.User, error) {
	targetID = strings.TrimSpace(targetID)
	if strings.TrimSpace(actor.ID) == "" || targetID == "" {
		return model.User{}, ErrValidation
	}
	if actorRole != enums.RoleSuperAdmin {
		return model.User{}, ErrForbidden
	}

	current, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return model.User{}, mapUserError(err)
	}
	if current.Role == enums.RoleSuperAdmin {
		return model.User{}, ErrProtectedTarget
	}

	updated, err := s.users.SetRole(ctx, targetID, role, []enums.Role{enums.RoleSuperAdmin}, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			// the row exists, so a miss means it became a super admin in between
			return model.User{}, ErrProtectedTarget
		}
		return model.User{}, err
	}

	if current.Role != updated.Role && s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, targetID); err != nil {
			s.logger.Warn("revoke sessions after role change", zap.String("user_id", targetID), zap.Error(err))
		}
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, enums.EntityUser, targetID, map[string]interface{}{
			"from": string(current.Role),
			"to":   string(updated.Role),
		})
	}
	return updated, nil
}

func mapUserError(err error) error {
	if errors.Is(err, pgrepo.ErrUserNotFound) {
		return ErrNotFound
	}
	return err
}
