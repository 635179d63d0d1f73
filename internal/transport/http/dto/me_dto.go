package dto

import "time"

type MeResponse struct {
	User         AuthMeResponse      `json:"user"`
	Subscription EntitlementResponse `json:"subscription"`
}

type EntitlementResponse struct {
	Plan      string     `json:"plan"`
	Paid      bool       `json:"paid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
