package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

const maxContentBytes = 256 << 10

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("content not found")
)

var typePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,39}$`)

type Store interface {
	Get(ctx context.Context, contentType string) (model.CMSContent, error)
	List(ctx context.Context) ([]model.CMSContent, error)
	Upsert(ctx context.Context, c model.CMSContent, now time.Time) (model.CMSContent, error)
}

type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{})
}

type Service struct {
	store   Store
	auditor Auditor
	now     func() time.Time
}

func NewService(store Store, auditor Auditor) *Service {
	return &Service{store: store, auditor: auditor, now: time.Now}
}

func (s *Service) Get(ctx context.Context, contentType string) (model.CMSContent, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !typePattern.MatchString(contentType) {
		return model.CMSContent{}, ErrValidation
	}
	c, err := s.store.Get(ctx, contentType)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCMSNotFound) {
			return model.CMSContent{}, ErrNotFound
		}
		return model.CMSContent{}, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]model.CMSContent, error) {
	return s.store.List(ctx)
}

// Upsert replaces the content for a type; every write bumps its version.
func (s *Service) Upsert(ctx context.Context, actor audit.Actor, contentType, title string, content json.RawMessage) (model.CMSContent, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if strings.TrimSpace(actor.ID) == "" || !typePattern.MatchString(contentType) {
		return model.CMSContent{}, ErrValidation
	}
	if len(content) == 0 {
		content = json.RawMessage(`{}`)
	}
	if len(content) > maxContentBytes || !json.Valid(content) {
		return model.CMSContent{}, fmt.Errorf("content must be valid json: %w", ErrValidation)
	}

	saved, err := s.store.Upsert(ctx, model.CMSContent{
		Type:      contentType,
		Title:     strings.TrimSpace(title),
		Content:   content,
		UpdatedBy: actor.ID,
	}, s.now().UTC())
	if err != nil {
		return model.CMSContent{}, err
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, enums.ActionUpdatedCMSContent, enums.EntityCMSContent, saved.Type, map[string]interface{}{"version": saved.Version})
	}
	return saved, nil
}
