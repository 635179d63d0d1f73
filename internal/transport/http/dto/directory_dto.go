package dto

import "github.com/Krunal123456/Bari/internal/domain/model"

type DirectoryRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Family     string `json:"family" validate:"max=200"`
	Profession string `json:"profession" validate:"max=200"`
	Location   string `json:"location" validate:"max=200"`
	Phone      string `json:"phone" validate:"max=24"`
	Email      string `json:"email" validate:"omitempty,email"`
	About      string `json:"about" validate:"max=2000"`
}

type DirectoryListResponse struct {
	Items []model.DirectoryEntry `json:"items"`
}
