package profiles

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/media"
)

const (
	MaxPhotos    = 6
	minAgeYears  = 18
	maxTextRunes = 2000
	maxNameRunes = 120
)

var (
	ErrValidation     = errors.New("validation error")
	ErrIncomplete     = errors.New("profile is incomplete")
	ErrNotFound       = errors.New("profile not found")
	ErrProfileExists  = errors.New("profile already exists")
	ErrStatusConflict = errors.New("profile status does not allow this action")
	ErrPhotoLimit     = errors.New("photo limit reached")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,19}$`)

type Store interface {
	Create(ctx context.Context, p model.Profile) (model.Profile, error)
	GetByID(ctx context.Context, id string) (model.Profile, error)
	GetByOwner(ctx context.Context, userID string) (model.Profile, error)
	UpdateFields(ctx context.Context, id, ownerID string, f model.ProfileFields, allowed []enums.ProfileStatus, now time.Time) (model.Profile, error)
	Transition(ctx context.Context, t pgrepo.ProfileTransition) (model.Profile, error)
	AppendPhoto(ctx context.Context, id, ownerID string, photo model.ProfilePhoto, allowed []enums.ProfileStatus, maxPhotos int, now time.Time) (model.Profile, error)
	RemovePhoto(ctx context.Context, id, ownerID, objectKey string, now time.Time) (model.Profile, error)
	Search(ctx context.Context, f model.ProfileSearchFilter, now time.Time) ([]model.Profile, error)
}

type PhotoStorage interface {
	ProfilePhotoKey(userID, profileID, fileName string) string
	Put(ctx context.Context, key string, up media.Upload) (media.Object, error)
	Delete(ctx context.Context, key string) error
}

type AdminAlerts interface {
	AlertAdmins(ctx context.Context, text, linkURL string)
}

type Owner struct {
	ID    string
	Email string
}

type Input struct {
	FullName             string
	Gender               string
	DateOfBirth          *time.Time
	Height               string
	MaritalStatus        string
	Education            string
	Occupation           string
	Income               string
	Religion             string
	Caste                string
	Gotra                string
	Location             string
	About                string
	LookingFor           string
	Phone                string
	PreferredContactTime string
}

type Service struct {
	store         Store
	photos        PhotoStorage
	alerts        AdminAlerts
	reviewBaseURL string
	now           func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) AttachPhotos(photos PhotoStorage) {
	s.photos = photos
}

// AttachAlerts enables the admin alert sent when a profile enters review.
func (s *Service) AttachAlerts(alerts AdminAlerts, reviewBaseURL string) {
	s.alerts = alerts
	s.reviewBaseURL = strings.TrimRight(strings.TrimSpace(reviewBaseURL), "/")
}

func (s *Service) CreateDraft(ctx context.Context, owner Owner, in Input) (model.Profile, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return model.Profile{}, fmt.Errorf("owner id is required: %w", ErrValidation)
	}
	now := s.now().UTC()
	fields, err := normalizeInput(in, now)
	if err != nil {
		return model.Profile{}, err
	}

	p := model.Profile{
		ID:        uuid.NewString(),
		UserID:    owner.ID,
		UserEmail: strings.TrimSpace(owner.Email),
		Status:    enums.ProfileStatusDraft,
		Photos:    []model.ProfilePhoto{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(&p, fields)

	created, err := s.store.Create(ctx, p)
	if err != nil {
		return model.Profile{}, mapStoreError("create profile", err)
	}
	return s.withAge(created), nil
}

// Update is allowed while the profile is a draft or has changes requested.
func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (model.Profile, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(id) == "" {
		return model.Profile{}, ErrValidation
	}
	now := s.now().UTC()
	fields, err := normalizeInput(in, now)
	if err != nil {
		return model.Profile{}, err
	}

	updated, err := s.store.UpdateFields(ctx, id, ownerID, fields, enums.EditableStatuses(), now)
	if err != nil {
		return model.Profile{}, mapStoreError("update profile", err)
	}
	return s.withAge(updated), nil
}

// Submit sends the profile to review. Submitting a profile that is already
// pending returns it unchanged.
func (s *Service) Submit(ctx context.Context, ownerID, id string) (model.Profile, error) {
	current, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return model.Profile{}, err
	}
	if current.Status.IsPending() {
		return s.withAge(current), nil
	}
	if err := checkComplete(current); err != nil {
		return model.Profile{}, err
	}

	now := s.now().UTC()
	submitted, err := s.store.Transition(ctx, pgrepo.ProfileTransition{
		ID:               id,
		From:             enums.EditableStatuses(),
		To:               enums.ProfileStatusPending,
		SubmittedAt:      &now,
		ClearReviewNotes: true,
		Now:              now,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileStatusConflict) {
			latest, getErr := s.owned(ctx, ownerID, id)
			if getErr == nil && latest.Status.IsPending() {
				return s.withAge(latest), nil
			}
		}
		return model.Profile{}, mapStoreError("submit profile", err)
	}

	s.alertReview(ctx, "New matrimony profile submitted for review", submitted)
	return s.withAge(submitted), nil
}

func (s *Service) alertReview(ctx context.Context, headline string, p model.Profile) {
	if s.alerts == nil {
		return
	}
	text := fmt.Sprintf("%s: %s (%s)", headline, p.FullName, p.Location)
	link := ""
	if s.reviewBaseURL != "" {
		link = s.reviewBaseURL + "/admin/matrimony/" + p.ID
	}
	s.alerts.AlertAdmins(ctx, text, link)
}

func (s *Service) GetOwn(ctx context.Context, ownerID string) (model.Profile, error) {
	if strings.TrimSpace(ownerID) == "" {
		return model.Profile{}, ErrValidation
	}
	p, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return model.Profile{}, mapStoreError("get own profile", err)
	}
	return s.withAge(p), nil
}

func (s *Service) UploadPhoto(ctx context.Context, ownerID, id string, up media.Upload) (model.Profile, error) {
	if s.photos == nil {
		return model.Profile{}, media.ErrStorageUnavailable
	}
	current, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return model.Profile{}, err
	}
	if current.Status == enums.ProfileStatusDeleted {
		return model.Profile{}, ErrNotFound
	}
	if len(current.Photos) >= MaxPhotos {
		return model.Profile{}, ErrPhotoLimit
	}

	key := s.photos.ProfilePhotoKey(ownerID, id, up.FileName)
	if _, err := s.photos.Put(ctx, key, up); err != nil {
		return model.Profile{}, fmt.Errorf("store profile photo: %w", err)
	}

	now := s.now().UTC()
	updated, err := s.store.AppendPhoto(ctx, id, ownerID, model.ProfilePhoto{ObjectKey: key, UploadedAt: now}, photoStatuses(), MaxPhotos, now)
	if err != nil {
		_ = s.photos.Delete(ctx, key)
		return model.Profile{}, mapStoreError("append profile photo", err)
	}
	if updated.Status != enums.ProfileStatusApproved {
		return s.withAge(updated), nil
	}

	// A new photo on a live profile goes back through review.
	reopened, err := s.store.Transition(ctx, pgrepo.ProfileTransition{
		ID:          id,
		From:        []enums.ProfileStatus{enums.ProfileStatusApproved},
		To:          enums.ProfileStatusPending,
		SubmittedAt: &now,
		Now:         now,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileStatusConflict) {
			latest, getErr := s.owned(ctx, ownerID, id)
			if getErr != nil {
				return model.Profile{}, getErr
			}
			return s.withAge(latest), nil
		}
		return model.Profile{}, mapStoreError("reopen profile for review", err)
	}
	s.alertReview(ctx, "Matrimony profile photo changed, review again", reopened)
	return s.withAge(reopened), nil
}

func (s *Service) DeletePhoto(ctx context.Context, ownerID, id, objectKey string) (model.Profile, error) {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return model.Profile{}, fmt.Errorf("object key is required: %w", ErrValidation)
	}
	current, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return model.Profile{}, err
	}
	if !hasPhoto(current, objectKey) {
		return model.Profile{}, ErrNotFound
	}

	updated, err := s.store.RemovePhoto(ctx, id, ownerID, objectKey, s.now().UTC())
	if err != nil {
		return model.Profile{}, mapStoreError("remove profile photo", err)
	}
	if s.photos != nil {
		if err := s.photos.Delete(ctx, objectKey); err != nil {
			return s.withAge(updated), fmt.Errorf("delete photo object: %w", err)
		}
	}
	return s.withAge(updated), nil
}

// Search lists approved profiles only, newest first.
func (s *Service) Search(ctx context.Context, f model.ProfileSearchFilter) ([]model.Profile, error) {
	if f.AgeMin < 0 || f.AgeMax < 0 || (f.AgeMax > 0 && f.AgeMin > f.AgeMax) {
		return nil, fmt.Errorf("invalid age range: %w", ErrValidation)
	}
	if raw := strings.TrimSpace(f.Gender); raw != "" {
		f.Gender = canonicalGender(raw)
		if f.Gender == "" {
			return nil, fmt.Errorf("unsupported gender %q: %w", raw, ErrValidation)
		}
	}
	items, err := s.store.Search(ctx, f, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	out := make([]model.Profile, 0, len(items))
	for _, p := range items {
		if p.Status != enums.ProfileStatusApproved {
			continue
		}
		out = append(out, s.withAge(p))
	}
	return out, nil
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (model.Profile, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(id) == "" {
		return model.Profile{}, ErrValidation
	}
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Profile{}, mapStoreError("get profile", err)
	}
	if p.UserID != ownerID || p.Status == enums.ProfileStatusDeleted {
		return model.Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) withAge(p model.Profile) model.Profile {
	if p.DateOfBirth != nil {
		p.Age = rules.AgeYears(*p.DateOfBirth, s.now())
	}
	return p
}

func photoStatuses() []enums.ProfileStatus {
	return []enums.ProfileStatus{
		enums.ProfileStatusDraft,
		enums.ProfileStatusChangesRequested,
		enums.ProfileStatusSubmitted,
		enums.ProfileStatusPending,
		enums.ProfileStatusApproved,
	}
}

func hasPhoto(p model.Profile, objectKey string) bool {
	for _, ph := range p.Photos {
		if ph.ObjectKey == objectKey {
			return true
		}
	}
	return false
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrProfileNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrProfileExists):
		return ErrProfileExists
	case errors.Is(err, pgrepo.ErrProfileStatusConflict):
		return ErrStatusConflict
	case errors.Is(err, pgrepo.ErrPhotoLimitReached):
		return ErrPhotoLimit
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func normalizeInput(in Input, now time.Time) (model.ProfileFields, error) {
	f := model.ProfileFields{
		FullName:             strings.TrimSpace(in.FullName),
		Height:               strings.TrimSpace(in.Height),
		MaritalStatus:        strings.TrimSpace(in.MaritalStatus),
		Education:            strings.TrimSpace(in.Education),
		Occupation:           strings.TrimSpace(in.Occupation),
		Income:               strings.TrimSpace(in.Income),
		Religion:             strings.TrimSpace(in.Religion),
		Caste:                strings.TrimSpace(in.Caste),
		Gotra:                strings.TrimSpace(in.Gotra),
		Location:             strings.TrimSpace(in.Location),
		About:                strings.TrimSpace(in.About),
		LookingFor:           strings.TrimSpace(in.LookingFor),
		Phone:                strings.TrimSpace(in.Phone),
		PreferredContactTime: strings.TrimSpace(in.PreferredContactTime),
	}

	if f.FullName == "" {
		return model.ProfileFields{}, fmt.Errorf("full name is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(f.FullName) > maxNameRunes {
		return model.ProfileFields{}, fmt.Errorf("full name is too long: %w", ErrValidation)
	}
	if utf8.RuneCountInString(f.About) > maxTextRunes || utf8.RuneCountInString(f.LookingFor) > maxTextRunes {
		return model.ProfileFields{}, fmt.Errorf("text field is too long: %w", ErrValidation)
	}

	if raw := strings.TrimSpace(in.Gender); raw != "" {
		f.Gender = canonicalGender(raw)
		if f.Gender == "" {
			return model.ProfileFields{}, fmt.Errorf("unsupported gender %q: %w", raw, ErrValidation)
		}
	}
	if f.Phone != "" && !phonePattern.MatchString(f.Phone) {
		return model.ProfileFields{}, fmt.Errorf("invalid phone: %w", ErrValidation)
	}
	if in.DateOfBirth != nil {
		dob := time.Date(in.DateOfBirth.Year(), in.DateOfBirth.Month(), in.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)
		if dob.After(now) || rules.AgeYears(dob, now) < minAgeYears {
			return model.ProfileFields{}, fmt.Errorf("date of birth must be at least %d years ago: %w", minAgeYears, ErrValidation)
		}
		f.DateOfBirth = &dob
	}
	return f, nil
}

func checkComplete(p model.Profile) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(p.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(p.Gender) == "" {
		missing = append(missing, "gender")
	}
	if p.DateOfBirth == nil {
		missing = append(missing, "date_of_birth")
	}
	if strings.TrimSpace(p.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func canonicalGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return "Male"
	case "female", "f":
		return "Female"
	case "other":
		return "Other"
	default:
		return ""
	}
}

func applyFields(p *model.Profile, f model.ProfileFields) {
	p.FullName = f.FullName
	p.Gender = f.Gender
	p.DateOfBirth = f.DateOfBirth
	p.Height = f.Height
	p.MaritalStatus = f.MaritalStatus
	p.Education = f.Education
	p.Occupation = f.Occupation
	p.Income = f.Income
	p.Religion = f.Religion
	p.Caste = f.Caste
	p.Gotra = f.Gotra
	p.Location = f.Location
	p.About = f.About
	p.LookingFor = f.LookingFor
	p.Phone = f.Phone
	p.PreferredContactTime = f.PreferredContactTime
}
