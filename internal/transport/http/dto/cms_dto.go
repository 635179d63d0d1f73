package dto

import (
	"encoding/json"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type CMSRequest struct {
	Title   string          `json:"title" validate:"max=200"`
	Content json.RawMessage `json:"content"`
}

type CMSListResponse struct {
	Items []model.CMSContent `json:"items"`
}
