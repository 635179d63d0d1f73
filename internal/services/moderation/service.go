package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

const maxNoteRunes = 2000

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("profile not found")
	ErrStatusConflict = errors.New("profile was already resolved")
)

type Store interface {
	GetByID(ctx context.Context, id string) (model.Profile, error)
	ListByStatus(ctx context.Context, f model.AdminProfileFilter) ([]model.Profile, error)
	Transition(ctx context.Context, t pgrepo.ProfileTransition) (model.Profile, error)
	SetSpotlight(ctx context.Context, id string, enabled bool, now time.Time) (model.Profile, error)
}

type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{})
}

type OwnerNotifier interface {
	Notify(ctx context.Context, userID string, typ enums.NotificationType, title, body string, payload map[string]interface{})
}

// Service applies admin decisions to matrimony profiles. Every transition is
// conditional on the status the admin saw, so two admins cannot both resolve
// the same profile.
type Service struct {
	store    Store
	auditor  Auditor
	notifier OwnerNotifier
	now      func() time.Time
}

func NewService(store Store, auditor Auditor, notifier OwnerNotifier) *Service {
	return &Service{
		store:    store,
		auditor:  auditor,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Service) ListProfiles(ctx context.Context, f model.AdminProfileFilter) ([]model.Profile, error) {
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", st, ErrValidation)
		}
	}
	items, err := s.store.ListByStatus(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return items, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return model.Profile{}, ErrValidation
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Profile{}, mapStoreError("get profile", err)
	}
	if p.Status == enums.ProfileStatusDeleted {
		return model.Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Approve(ctx context.Context, actor audit.Actor, id string) (model.Profile, error) {
	current, err := s.reviewable(ctx, actor, id)
	if err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	approvedAt := now
	if current.SubmittedAt != nil && current.SubmittedAt.After(approvedAt) {
		approvedAt = current.SubmittedAt.UTC()
	}

	p, err := s.store.Transition(ctx, pgrepo.ProfileTransition{
		ID:           id,
		From:         enums.ReviewableStatuses(),
		To:           enums.ProfileStatusApproved,
		ApprovedBy:       actor.ID,
		ApprovalDate:     &approvedAt,
		ClearReviewNotes: true,
		Now:              now,
	})
	if err != nil {
		return model.Profile{}, mapStoreError("approve profile", err)
	}

	s.record(ctx, actor, enums.ActionApprovedProfile, p.ID, nil)
	s.notify(ctx, p.UserID, enums.NotificationProfileApproved,
		"Profile approved", "Your matrimony profile is now visible to members.",
		map[string]interface{}{"profile_id": p.ID})
	return p, nil
}

// Reject keeps the record with its reason. An empty reason changes nothing.
func (s *Service) Reject(ctx context.Context, actor audit.Actor, id, reason string) (model.Profile, error) {
	reason, err := note(reason, "reason")
	if err != nil {
		return model.Profile{}, err
	}
	if _, err := s.reviewable(ctx, actor, id); err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	p, err := s.store.Transition(ctx, pgrepo.ProfileTransition{
		ID:              id,
		From:            enums.ReviewableStatuses(),
		To:              enums.ProfileStatusRejected,
		RejectionReason: reason,
		Now:             now,
	})
	if err != nil {
		return model.Profile{}, mapStoreError("reject profile", err)
	}

	s.record(ctx, actor, enums.ActionRejectedProfile, p.ID, map[string]interface{}{"reason": reason})
	s.notify(ctx, p.UserID, enums.NotificationProfileRejected,
		"Profile not approved", reason,
		map[string]interface{}{"profile_id": p.ID, "reason": reason})
	return p, nil
}

func (s *Service) RequestChanges(ctx context.Context, actor audit.Actor, id, changes string) (model.Profile, error) {
	changes, err := note(changes, "changes")
	if err != nil {
		return model.Profile{}, err
	}
	if _, err := s.reviewable(ctx, actor, id); err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	p, err := s.store.Transition(ctx, pgrepo.ProfileTransition{
		ID:             id,
		From:           enums.ReviewableStatuses(),
		To:             enums.ProfileStatusChangesRequested,
		ChangeRequests: changes,
		Now:            now,
	})
	if err != nil {
		return model.Profile{}, mapStoreError("request profile changes", err)
	}

	s.record(ctx, actor, enums.ActionRequestedChanges, p.ID, map[string]interface{}{"changes": changes})
	s.notify(ctx, p.UserID, enums.NotificationProfileChanges,
		"Changes requested", changes,
		map[string]interface{}{"profile_id": p.ID, "changes": changes})
	return p, nil
}

// Delete soft-deletes a profile from any live status.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id string) (model.Profile, error) {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(id) == "" {
		return model.Profile{}, ErrValidation
	}
	now := s.now().UTC()
	p, err := s.store.Transition(ctx, pgrepo.ProfileTransition{
		ID:        id,
		From:      liveStatuses(),
		To:        enums.ProfileStatusDeleted,
		DeletedAt: &now,
		Now:       now,
	})
	if err != nil {
		return model.Profile{}, mapStoreError("delete profile", err)
	}
	s.record(ctx, actor, enums.ActionDeletedProfile, p.ID, nil)
	return p, nil
}

func (s *Service) ToggleSpotlight(ctx context.Context, actor audit.Actor, id string, enabled bool) (model.Profile, error) {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(id) == "" {
		return model.Profile{}, ErrValidation
	}
	p, err := s.store.SetSpotlight(ctx, id, enabled, s.now().UTC())
	if err != nil {
		return model.Profile{}, mapStoreError("toggle spotlight", err)
	}
	s.record(ctx, actor, enums.ActionToggledSpotlight, p.ID, map[string]interface{}{"spotlight": enabled})
	return p, nil
}

func (s *Service) reviewable(ctx context.Context, actor audit.Actor, id string) (model.Profile, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return model.Profile{}, fmt.Errorf("actor is required: %w", ErrValidation)
	}
	current, err := s.GetProfile(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	if !current.Status.IsPending() {
		return model.Profile{}, ErrStatusConflict
	}
	return current, nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, id string, changes map[string]interface{}) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, actor, action, enums.EntityMatrimonyProfile, id, changes)
}

func (s *Service) notify(ctx context.Context, userID string, typ enums.NotificationType, title, body string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, typ, title, body, payload)
}

func liveStatuses() []enums.ProfileStatus {
	return []enums.ProfileStatus{
		enums.ProfileStatusDraft,
		enums.ProfileStatusSubmitted,
		enums.ProfileStatusPending,
		enums.ProfileStatusApproved,
		enums.ProfileStatusRejected,
		enums.ProfileStatusChangesRequested,
	}
}

func note(raw, field string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", field, ErrValidation)
	}
	if utf8.RuneCountInString(v) > maxNoteRunes {
		return "", fmt.Errorf("%s is too long: %w", field, ErrValidation)
	}
	return v, nil
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrProfileNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrProfileStatusConflict):
		return ErrStatusConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
