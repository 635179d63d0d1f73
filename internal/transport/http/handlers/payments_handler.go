package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	paymentsvc "github.com/Krunal123456/Bari/internal/services/payments"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

const maxWebhookBody = 64 << 10

type PaymentsHandler struct {
	service *paymentsvc.Service
	logger  *zap.Logger
}

func NewPaymentsHandler(service *paymentsvc.Service, logger *zap.Logger) *PaymentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentsHandler{service: service, logger: logger}
}

func (h *PaymentsHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}
	var req dto.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = identity.UserID
	}

	res, err := h.service.CreateCheckout(r.Context(), identity.UserID, req.UserID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, paymentsvc.ErrForbidden):
			writeForbidden(w, "FORBIDDEN", err.Error())
		default:
			h.logger.Error("create checkout session", zap.String("user_id", identity.UserID), zap.Error(err))
			writeInternal(w, "CHECKOUT_FAILED", "could not start checkout")
		}
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CheckoutResponse{URL: res.URL, SessionID: res.SessionID})
}

// Webhook verifies the processor signature over the raw body before anything
// is applied. Non-2xx answers make the processor retry.
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "could not read body")
		return
	}

	res, err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrInvalidSignature):
			writeBadRequest(w, "INVALID_SIGNATURE", "webhook signature verification failed")
		case errors.Is(err, paymentsvc.ErrWebhookUnconfigured):
			writeUnavailable(w, "WEBHOOK_UNCONFIGURED", "webhook secret is not configured")
		case errors.Is(err, paymentsvc.ErrMissingMetadata), errors.Is(err, paymentsvc.ErrValidation):
			h.logger.Warn("unusable checkout event", zap.Error(err))
			writeBadRequest(w, "INVALID_EVENT", err.Error())
		default:
			h.logger.Error("apply webhook", zap.Error(err))
			writeInternal(w, "WEBHOOK_FAILED", "could not apply event")
		}
		return
	}
	h.logger.Info("webhook processed", zap.String("type", res.EventType), zap.Bool("applied", res.Applied))
	httperrors.Write(w, http.StatusOK, dto.WebhookResponse{Received: true})
}

func (h *PaymentsHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}
	ent, err := h.service.Entitlement(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.EntitlementResponse{Plan: string(ent.Plan), Paid: ent.Paid, ExpiresAt: ent.ExpiresAt})
}

func (h *PaymentsHandler) Downgrade(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}
	sub, err := h.service.Downgrade(r.Context(), actorOf(identity), chi.URLParam(r, "userId"))
	if err != nil {
		if errors.Is(err, paymentsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, sub)
}
