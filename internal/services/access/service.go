package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
)

const UpgradeMessage = "Upgrade to a paid plan to see contact details"

var (
	ErrNotFound   = errors.New("profile not found")
	ErrOwnProfile = errors.New("this is your own profile, open it from your dashboard")
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (model.Profile, error)
}

type EntitlementReader interface {
	Get(ctx context.Context, userID string) (model.Entitlement, error)
}

type Viewer struct {
	UserID string
	Admin  bool
}

// ProfileView is a profile as one viewer may see it. Email is empty and
// UpgradeCTA is set when contact details are masked.
type ProfileView struct {
	Profile    model.Profile
	Mode       enums.AccessMode
	Phone      string
	Email      string
	UpgradeCTA string
}

type Service struct {
	profiles     ProfileReader
	entitlements EntitlementReader
	now          func() time.Time
}

func NewService(profiles ProfileReader, entitlements EntitlementReader) *Service {
	return &Service{profiles: profiles, entitlements: entitlements, now: time.Now}
}

func (s *Service) Gate(ctx context.Context, viewer Viewer, profileID string) (ProfileView, error) {
	if strings.TrimSpace(profileID) == "" {
		return ProfileView{}, ErrNotFound
	}
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ProfileView{}, ErrNotFound
		}
		return ProfileView{}, fmt.Errorf("get profile: %w", err)
	}
	if p.Status == enums.ProfileStatusDeleted {
		return ProfileView{}, ErrNotFound
	}
	if viewer.UserID != "" && p.UserID == viewer.UserID {
		return ProfileView{}, ErrOwnProfile
	}
	if p.DateOfBirth != nil {
		p.Age = rules.AgeYears(*p.DateOfBirth, s.now())
	}

	if viewer.Admin {
		return full(p), nil
	}
	if p.Status != enums.ProfileStatusApproved {
		return ProfileView{}, ErrNotFound
	}

	mode := enums.AccessModeMasked
	if viewer.UserID != "" && s.entitlements != nil {
		ent, err := s.entitlements.Get(ctx, viewer.UserID)
		if err != nil {
			return ProfileView{}, fmt.Errorf("resolve entitlement: %w", err)
		}
		mode = rules.EntitlementAccess(ent, s.now())
	}
	if mode == enums.AccessModeFull {
		return full(p), nil
	}
	return masked(p), nil
}

func full(p model.Profile) ProfileView {
	return ProfileView{
		Profile: p,
		Mode:    enums.AccessModeFull,
		Phone:   p.Phone,
		Email:   p.UserEmail,
	}
}

func masked(p model.Profile) ProfileView {
	p.UserEmail = ""
	phone := rules.MaskPhone(p.Phone)
	p.Phone = phone
	return ProfileView{
		Profile:    p,
		Mode:       enums.AccessModeMasked,
		Phone:      phone,
		UpgradeCTA: UpgradeMessage,
	}
}
