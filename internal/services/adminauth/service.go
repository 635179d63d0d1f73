package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrNotEnrolled    = errors.New("two-factor enrollment not started")
	ErrAlreadyEnabled = errors.New("two-factor already enabled")
	ErrInvalidCode    = errors.New("invalid two-factor code")
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	SetTOTPSecret(ctx context.Context, id, secret string, now time.Time) error
	EnableTOTP(ctx context.Context, id string, now time.Time) error
}

// Service enrolls admins into TOTP as a second login factor.
type Service struct {
	users  UserStore
	issuer string
	now    func() time.Time
}

type SetupResult struct {
	OTPAuthURL    string `json:"otpauth_url"`
	Secret        string `json:"secret"`
	QRCodeDataURL string `json:"qr_code_data_url"`
}

func NewService(users UserStore, issuer string) *Service {
	if strings.TrimSpace(issuer) == "" {
		issuer = "Bari Samaj"
	}
	return &Service{users: users, issuer: issuer, now: time.Now}
}

// Setup generates a fresh secret for an admin. The factor stays inactive until Confirm.
func (s *Service) Setup(ctx context.Context, userID string) (SetupResult, error) {
	user, err := s.adminUser(ctx, userID)
	if err != nil {
		return SetupResult{}, err
	}
	if user.TOTPEnabled {
		return SetupResult{}, ErrAlreadyEnabled
	}

	secret, otpURL, err := GenerateTOTPSecret(s.issuer, user.Email)
	if err != nil {
		return SetupResult{}, fmt.Errorf("generate totp secret: %w", err)
	}
	qr, err := QRCodeDataURL(otpURL, 256)
	if err != nil {
		return SetupResult{}, fmt.Errorf("render totp qr code: %w", err)
	}
	if err := s.users.SetTOTPSecret(ctx, user.ID, secret, s.now()); err != nil {
		return SetupResult{}, fmt.Errorf("store totp secret: %w", err)
	}

	return SetupResult{OTPAuthURL: otpURL, Secret: secret, QRCodeDataURL: qr}, nil
}

func (s *Service) Confirm(ctx context.Context, userID, code string) error {
	user, err := s.adminUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPEnabled {
		return ErrAlreadyEnabled
	}
	if strings.TrimSpace(user.TOTPSecret) == "" {
		return ErrNotEnrolled
	}
	if !ValidateTOTP(user.TOTPSecret, code, s.now().UTC()) {
		return ErrInvalidCode
	}
	if err := s.users.EnableTOTP(ctx, user.ID, s.now()); err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

func (s *Service) adminUser(ctx context.Context, userID string) (model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrForbidden
		}
		return model.User{}, fmt.Errorf("get admin user: %w", err)
	}
	if !user.Role.IsAdmin() {
		return model.User{}, ErrForbidden
	}
	return user, nil
}
