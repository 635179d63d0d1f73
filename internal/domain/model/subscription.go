package model

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type Subscription struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"user_id"`
	Plan            enums.SubscriptionPlan   `json:"plan"`
	Status          enums.SubscriptionStatus `json:"status"`
	StartDate       time.Time                `json:"start_date"`
	ExpiryDate      *time.Time               `json:"expiry_date,omitempty"`
	StripeSessionID string                   `json:"stripe_session_id,omitempty"`
	Metadata        map[string]string        `json:"metadata,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type PendingCheckout struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Plan            enums.SubscriptionPlan `json:"plan"`
	StripeSessionID string                 `json:"stripe_session_id"`
	CreatedAt       time.Time              `json:"created_at"`
}

// Entitlement is the resolved paid-tier state of a user.
type Entitlement struct {
	UserID    string                 `json:"user_id"`
	Plan      enums.SubscriptionPlan `json:"plan"`
	Paid      bool                   `json:"paid"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
}
