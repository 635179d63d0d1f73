package model

import (
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type ActivityLog struct {
	ID         string                 `json:"id" bson:"_id,omitempty"`
	AdminID    string                 `json:"admin_id" bson:"adminId"`
	AdminName  string                 `json:"admin_name" bson:"adminName"`
	Action     enums.ActivityAction   `json:"action" bson:"action"`
	EntityType enums.EntityType       `json:"entity_type" bson:"entityType"`
	EntityID   string                 `json:"entity_id" bson:"entityId"`
	Changes    map[string]interface{} `json:"changes,omitempty" bson:"changes,omitempty"`
	Timestamp  time.Time              `json:"timestamp" bson:"timestamp"`
}
