package model

import "time"

type DirectoryEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Family      string     `json:"family"`
	Profession  string     `json:"profession"`
	Location    string     `json:"location"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	About       string     `json:"about"`
	SubmittedBy string     `json:"submitted_by"`
	Approved    bool       `json:"approved"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type DirectoryFilter struct {
	IncludePending bool
	Location       string
	Limit          int
	Offset         int
}
