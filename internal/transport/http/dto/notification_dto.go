package dto

import (
	"github.com/Krunal123456/Bari/internal/domain/model"
	notifysvc "github.com/Krunal123456/Bari/internal/services/notify"
)

type PushTokenRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

type NotificationListResponse struct {
	Items []model.Notification `json:"items"`
}

type DeadLetterListResponse struct {
	Items []notifysvc.DeadLetter `json:"items"`
}
