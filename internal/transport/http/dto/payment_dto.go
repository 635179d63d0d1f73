package dto

type CheckoutRequest struct {
	UserID string `json:"userId"`
	Plan   string `json:"plan"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId,omitempty"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
