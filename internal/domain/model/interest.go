package model

import "time"

type Interest struct {
	ID              string    `json:"id"`
	SenderID        string    `json:"sender_id"`
	TargetProfileID string    `json:"target_profile_id"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}

type InterestQuota struct {
	DayKey    string    `json:"day_key"`
	Used      int       `json:"used"`
	Limit     *int      `json:"limit,omitempty"`
	Remaining *int      `json:"remaining,omitempty"`
	ResetAt   time.Time `json:"reset_at"`
}
