package directory

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

const (
	maxFieldRunes = 200
	maxAboutRunes = 2000
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("directory entry not found")
)

type Store interface {
	Create(ctx context.Context, e model.DirectoryEntry) (model.DirectoryEntry, error)
	List(ctx context.Context, f model.DirectoryFilter) ([]model.DirectoryEntry, error)
	Approve(ctx context.Context, id, approvedBy string, now time.Time) (model.DirectoryEntry, error)
	SoftDelete(ctx context.Context, id string, now time.Time) (model.DirectoryEntry, error)
}

type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{})
}

type Input struct {
	Name       string
	Family     string
	Profession string
	Location   string
	Phone      string
	Email      string
	About      string
}

type Service struct {
	store   Store
	auditor Auditor
	now     func() time.Time
}

func NewService(store Store, auditor Auditor) *Service {
	return &Service{store: store, auditor: auditor, now: time.Now}
}

// Submit stores a member's entry; it stays hidden until an admin approves it.
func (s *Service) Submit(ctx context.Context, userID string, in Input) (model.DirectoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return model.DirectoryEntry{}, ErrValidation
	}
	if err := normalize(&in); err != nil {
		return model.DirectoryEntry{}, err
	}
	now := s.now().UTC()
	return s.store.Create(ctx, model.DirectoryEntry{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Family:      in.Family,
		Profession:  in.Profession,
		Location:    in.Location,
		Phone:       in.Phone,
		Email:       in.Email,
		About:       in.About,
		SubmittedBy: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Service) ListPublic(ctx context.Context, location string, limit, offset int) ([]model.DirectoryEntry, error) {
	return s.store.List(ctx, model.DirectoryFilter{Location: location, Limit: limit, Offset: offset})
}

func (s *Service) ListAdmin(ctx context.Context, includePending bool, limit, offset int) ([]model.DirectoryEntry, error) {
	return s.store.List(ctx, model.DirectoryFilter{IncludePending: includePending, Limit: limit, Offset: offset})
}

func (s *Service) Approve(ctx context.Context, actor audit.Actor, id string) (model.DirectoryEntry, error) {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(id) == "" {
		return model.DirectoryEntry{}, ErrValidation
	}
	entry, err := s.store.Approve(ctx, id, actor.ID, s.now().UTC())
	if err != nil {
		return model.DirectoryEntry{}, mapStoreError(err)
	}
	s.record(ctx, actor, enums.ActionApprovedDirectoryEntry, entry.ID, map[string]interface{}{"name": entry.Name})
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, actor audit.Actor, id string) (model.DirectoryEntry, error) {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(id) == "" {
		return model.DirectoryEntry{}, ErrValidation
	}
	entry, err := s.store.SoftDelete(ctx, id, s.now().UTC())
	if err != nil {
		return model.DirectoryEntry{}, mapStoreError(err)
	}
	s.record(ctx, actor, enums.ActionDeletedDirectoryEntry, entry.ID, map[string]interface{}{"is_deleted": true})
	return entry, nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, id string, changes map[string]interface{}) {
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, action, enums.EntityDirectoryEntry, id, changes)
	}
}

func normalize(in *Input) error {
	fields := []*string{&in.Name, &in.Family, &in.Profession, &in.Location, &in.Phone, &in.Email}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if utf8.RuneCountInString(*f) > maxFieldRunes {
			return fmt.Errorf("field too long: %w", ErrValidation)
		}
	}
	in.About = strings.TrimSpace(in.About)
	if utf8.RuneCountInString(in.About) > maxAboutRunes {
		return fmt.Errorf("about too long: %w", ErrValidation)
	}
	if in.Name == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if in.Phone == "" && in.Email == "" {
		return fmt.Errorf("phone or email is required: %w", ErrValidation)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return fmt.Errorf("invalid email: %w", ErrValidation)
		}
	}
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, pgrepo.ErrDirectoryNotFound) {
		return ErrNotFound
	}
	return err
}
