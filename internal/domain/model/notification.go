package model

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type Notification struct {
	ID        string                 `json:"id" bson:"_id,omitempty"`
	UserID    string                 `json:"user_id" bson:"userId"`
	Type      enums.NotificationType `json:"type" bson:"type"`
	Payload   map[string]interface{} `json:"payload" bson:"payload"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt time.Time              `json:"created_at" bson:"createdAt"`
}
