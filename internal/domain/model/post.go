package model

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type Post struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	Type        enums.PostType       `json:"type"`
	Priority    enums.PostPriority   `json:"priority"`
	Visibility  enums.PostVisibility `json:"visibility"`
	Status      enums.PostStatus     `json:"status"`
	IsPinned    bool                 `json:"is_pinned"`
	Images      []string             `json:"images"`
	Attachments []string             `json:"attachments"`
	VideoURL    string               `json:"video_url,omitempty"`
	ScheduledAt *time.Time           `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	CreatedBy   string               `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type PostFilter struct {
	Type     enums.PostType
	Status   enums.PostStatus
	Priority enums.PostPriority
	Limit    int
	Offset   int
}
