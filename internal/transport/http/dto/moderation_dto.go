package dto

type ReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type ChangesRequest struct {
	Changes string `json:"changes" validate:"required,max=2000"`
}

type SpotlightRequest struct {
	Enabled bool `json:"enabled"`
}

type AdminProfileListResponse struct {
	Items []ProfileResponse `json:"items"`
}
