package dto

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type PostRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Content     string     `json:"content" validate:"max=20000"`
	Type        string     `json:"type" validate:"post_type"`
	Priority    string     `json:"priority" validate:"post_priority"`
	Visibility  string     `json:"visibility" validate:"post_visibility"`
	Status      string     `json:"status" validate:"post_status"`
	IsPinned    bool       `json:"is_pinned"`
	Images      []string   `json:"images" validate:"max=20,dive,max=1024"`
	Attachments []string   `json:"attachments" validate:"max=20,dive,max=1024"`
	VideoURL    string     `json:"video_url" validate:"omitempty,url"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type PostListResponse struct {
	Items []model.Post `json:"items"`
}

type ReadRequest struct {
	Read *bool `json:"read"`
}

type ReadStatusResponse struct {
	Items map[string]bool `json:"items"`
}
