package dto

import "github.com/Krunal123456/Bari/internal/domain/model"

type ActivityListResponse struct {
	Items []model.ActivityLog `json:"items"`
}

type UserRoleResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
