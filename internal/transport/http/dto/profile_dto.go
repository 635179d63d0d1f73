package dto

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type ProfileRequest struct {
	FullName             string `json:"full_name" validate:"max=120"`
	Gender               string `json:"gender" validate:"omitempty,max=20"`
	DateOfBirth          string `json:"date_of_birth" validate:"omitempty"`
	Height               string `json:"height" validate:"max=40"`
	MaritalStatus        string `json:"marital_status" validate:"max=60"`
	Education            string `json:"education" validate:"max=200"`
	Occupation           string `json:"occupation" validate:"max=200"`
	Income               string `json:"income" validate:"max=100"`
	Religion             string `json:"religion" validate:"max=100"`
	Caste                string `json:"caste" validate:"max=100"`
	Gotra                string `json:"gotra" validate:"max=100"`
	Location             string `json:"location" validate:"max=200"`
	About                string `json:"about" validate:"max=2000"`
	LookingFor           string `json:"looking_for" validate:"max=2000"`
	Phone                string `json:"phone" validate:"max=24"`
	PreferredContactTime string `json:"preferred_contact_time" validate:"max=100"`
}

type DeletePhotoRequest struct {
	ObjectKey string `json:"object_key" validate:"required"`
}

type PhotoResponse struct {
	ObjectKey  string    `json:"object_key"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ProfileResponse is the owner or admin view of a profile.
type ProfileResponse struct {
	model.Profile
	Photos []PhotoResponse `json:"photos"`
}

// PublicProfileResponse is what search results and gated views expose.
type PublicProfileResponse struct {
	ID            string          `json:"id"`
	FullName      string          `json:"full_name"`
	Gender        string          `json:"gender"`
	Age           int             `json:"age"`
	Height        string          `json:"height"`
	MaritalStatus string          `json:"marital_status"`
	Education     string          `json:"education"`
	Occupation    string          `json:"occupation"`
	Religion      string          `json:"religion"`
	Caste         string          `json:"caste"`
	Gotra         string          `json:"gotra"`
	Location      string          `json:"location"`
	About         string          `json:"about"`
	LookingFor    string          `json:"looking_for"`
	Spotlight     bool            `json:"spotlight"`
	Photos        []PhotoResponse `json:"photos"`
}

type GatedProfileResponse struct {
	Profile    PublicProfileResponse `json:"profile"`
	AccessMode string                `json:"access_mode"`
	Phone      string                `json:"phone"`
	Email      string                `json:"email,omitempty"`
	UpgradeCTA string                `json:"upgrade_cta,omitempty"`
}

type ProfileListResponse struct {
	Items []PublicProfileResponse `json:"items"`
}

type SendInterestRequest struct {
	Message string `json:"message" validate:"max=500"`
}
