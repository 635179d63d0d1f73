package model

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type Profile struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"user_id"`
	UserEmail            string              `json:"user_email"`
	FullName             string              `json:"full_name"`
	Gender               string              `json:"gender"`
	DateOfBirth          *time.Time          `json:"date_of_birth,omitempty"`
	Age                  int                 `json:"age"`
	Height               string              `json:"height"`
	MaritalStatus        string              `json:"marital_status"`
	Education            string              `json:"education"`
	Occupation           string              `json:"occupation"`
	Income               string              `json:"income"`
	Religion             string              `json:"religion"`
	Caste                string              `json:"caste"`
	Gotra                string              `json:"gotra"`
	Location             string              `json:"location"`
	About                string              `json:"about"`
	LookingFor           string              `json:"looking_for"`
	Phone                string              `json:"phone"`
	PreferredContactTime string              `json:"preferred_contact_time"`
	Photos               []ProfilePhoto      `json:"photos"`
	Spotlight            bool                `json:"spotlight"`
	Status               enums.ProfileStatus `json:"status"`
	SubmittedAt          *time.Time          `json:"submitted_at,omitempty"`
	ApprovedBy           string              `json:"approved_by,omitempty"`
	ApprovalDate         *time.Time          `json:"approval_date,omitempty"`
	RejectionReason      string              `json:"rejection_reason,omitempty"`
	ChangeRequests       string              `json:"change_requests,omitempty"`
	DeletedAt            *time.Time          `json:"deleted_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type ProfilePhoto struct {
	ObjectKey  string    `json:"object_key"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ProfileFields is the owner-editable part of a profile.
type ProfileFields struct {
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

type ProfileSearchFilter struct {
	Gender        string
	AgeMin        int
	AgeMax        int
	Location      string
	Education     string
	SpotlightOnly bool
	Limit         int
	Offset        int
}

type AdminProfileFilter struct {
	Statuses []enums.ProfileStatus
	Limit    int
	Offset   int
}
