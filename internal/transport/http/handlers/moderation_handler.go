package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	moderationsvc "github.com/Krunal123456/Bari/internal/services/moderation"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

// ModerationHandler serves the admin side of matrimony profiles.
type ModerationHandler struct {
	service *moderationsvc.Service
	signer  urlSigner
}

func NewModerationHandler(service *moderationsvc.Service, signer urlSigner) *ModerationHandler {
	return &ModerationHandler{service: service, signer: signer}
}

func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	statuses, ok := parseStatuses(r.URL.Query().Get("status"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown profile status")
		return
	}
	items, err := h.service.ListProfiles(r.Context(), model.AdminProfileFilter{
		Statuses: statuses,
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		handleModerationError(w, err)
		return
	}
	res := dto.AdminProfileListResponse{Items: make([]dto.ProfileResponse, 0, len(items))}
	for _, p := range items {
		res.Items = append(res.Items, h.view(r, p))
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *ModerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleModerationError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.view(r, p))
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	p, err := h.service.Approve(r.Context(), actorOf(identity), chi.URLParam(r, "id"))
	if err != nil {
		handleModerationError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.view(r, p))
}

func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	var req dto.ReasonRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := h.service.Reject(r.Context(), actorOf(identity), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		handleModerationError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.view(r, p))
}

func (h *ModerationHandler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	var req dto.ChangesRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := h.service.RequestChanges(r.Context(), actorOf(identity), chi.URLParam(r, "id"), req.Changes)
	if err != nil {
		handleModerationError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.view(r, p))
}

func (h *ModerationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	p, err := h.service.Delete(r.Context(), actorOf(identity), chi.URLParam(r, "id"))
	if err != nil {
		handleModerationError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.view(r, p))
}

func (h *ModerationHandler) Spotlight(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}
	var req dto.SpotlightRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := h.service.ToggleSpotlight(r.Context(), actorOf(identity), chi.URLParam(r, "id"), req.Enabled)
	if err != nil {
		handleModerationError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.view(r, p))
}

func (h *ModerationHandler) view(r *http.Request, p model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{Profile: p, Photos: photoResponses(r.Context(), h.signer, p.Photos)}
}

// parseStatuses reads a comma separated status filter; empty means all.
func parseStatuses(raw string) ([]enums.ProfileStatus, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	out := make([]enums.ProfileStatus, 0, len(parts))
	for _, part := range parts {
		status := enums.ProfileStatus(strings.ToLower(strings.TrimSpace(part)))
		if status == "" {
			continue
		}
		if !status.Valid() {
			return nil, false
		}
		out = append(out, status)
	}
	return out, true
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, moderationsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, moderationsvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, moderationsvc.ErrStatusConflict):
		writeConflict(w, "PROFILE_STATUS_CONFLICT", "profile was already resolved")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
