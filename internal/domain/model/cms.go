package model

import (
	"encoding/json"
	"time"
)

type CMSContent struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Version   int             `json:"version"`
	UpdatedBy string          `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	ApprovedProfiles int64 `json:"approved_profiles"`
	PendingProfiles  int64 `json:"pending_profiles"`
	PublishedPosts   int64 `json:"published_posts"`
	DirectoryEntries int64 `json:"directory_entries"`
}
