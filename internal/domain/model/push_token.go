package model

import "time"

// PushToken is the browser push subscription of one user. An empty Token
// means the user switched notifications off.
type PushToken struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
}
