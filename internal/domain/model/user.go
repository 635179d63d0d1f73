package model

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	PasswordHash       string     `json:"-"`
	Provider           string     `json:"provider"`
	GoogleSubject      string     `json:"-"`
	Role               enums.Role `json:"role"`
	OnboardingComplete bool       `json:"onboarding_complete"`
	TOTPSecret         string     `json:"-"`
	TOTPEnabled        bool       `json:"totp_enabled"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

const (
	AuthProviderEmail  = "email"
	AuthProviderGoogle = "google"
)
