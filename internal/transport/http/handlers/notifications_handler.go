package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Krunal123456/Bari/internal/domain/model"
	notifysvc "github.com/Krunal123456/Bari/internal/services/notify"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

const defaultInboxLimit = 50

type NotificationsHandler struct {
	tokens   *notifysvc.Tokens
	inbox    *notifysvc.Inbox
	relay    *notifysvc.Relay
	failures *notifysvc.Failures
}

func NewNotificationsHandler(tokens *notifysvc.Tokens, inbox *notifysvc.Inbox, relay *notifysvc.Relay, failures *notifysvc.Failures) *NotificationsHandler {
	return &NotificationsHandler{tokens: tokens, inbox: inbox, relay: relay, failures: failures}
}

func (h *NotificationsHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.tokens == nil {
		writeUnavailable(w, "PUSH_UNAVAILABLE", "push notifications are unavailable")
		return
	}
	var req dto.PushTokenRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.tokens.Register(r.Context(), identity.UserID, req.Token); err != nil {
		if errors.Is(err, notifysvc.ErrValidation) {
			writeBadRequest(w, "INVALID_PUSH_SUBSCRIPTION", "token must be a web push subscription")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *NotificationsHandler) RemoveToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.tokens == nil {
		writeUnavailable(w, "PUSH_UNAVAILABLE", "push notifications are unavailable")
		return
	}
	if err := h.tokens.Remove(r.Context(), identity.UserID); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.inbox == nil {
		httperrors.Write(w, http.StatusOK, dto.NotificationListResponse{Items: []model.Notification{}})
		return
	}
	unread := r.URL.Query().Get("unread") == "true"
	limit := queryInt(r, "limit", defaultInboxLimit)
	if limit <= 0 || limit > 200 {
		limit = defaultInboxLimit
	}
	items, err := h.inbox.List(r.Context(), identity.UserID, unread, limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.NotificationListResponse{Items: items})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.inbox == nil {
		writeNotFound(w, "NOTIFICATION_NOT_FOUND", "notification not found")
		return
	}
	if err := h.inbox.MarkRead(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		switch {
		case errors.Is(err, notifysvc.ErrNotFound):
			writeNotFound(w, "NOTIFICATION_NOT_FOUND", "notification not found")
		case errors.Is(err, notifysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "notification id is required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Send relays a push to explicit tokens for admin tooling.
func (h *NotificationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		writeUnavailable(w, "PUSH_UNAVAILABLE", "push notifications are unavailable")
		return
	}
	var req notifysvc.RelayRequest
	if !decodeValid(w, r, &req) {
		return
	}
	res, err := h.relay.Send(r.Context(), req)
	if err != nil {
		if errors.Is(err, notifysvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "tokens, title and body are required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, res)
}

// DeadLetters shows the jobs the worker could not deliver.
func (h *NotificationsHandler) DeadLetters(w http.ResponseWriter, r *http.Request) {
	if h.failures == nil {
		writeUnavailable(w, "QUEUE_UNAVAILABLE", "notification queue is unavailable")
		return
	}
	items, err := h.failures.Recent(r.Context(), queryInt(r, "limit", defaultInboxLimit))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DeadLetterListResponse{Items: items})
}
