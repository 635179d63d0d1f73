package dto

type MediaUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
