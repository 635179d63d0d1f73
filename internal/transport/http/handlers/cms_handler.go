package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	cmssvc "github.com/Krunal123456/Bari/internal/services/cms"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

type CMSHandler struct {
	service *cmssvc.Service
}

func NewCMSHandler(service *cmssvc.Service) *CMSHandler {
	return &CMSHandler{service: service}
}

func (h *CMSHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "CMS_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}
	content, err := h.service.Get(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		handleCMSError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, content)
}

func (h *CMSHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "CMS_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}
	items, err := h.service.List(r.Context())
	if err != nil {
		handleCMSError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CMSListResponse{Items: items})
}

func (h *CMSHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "CMS_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}
	var req dto.CMSRequest
	if !decodeValid(w, r, &req) {
		return
	}
	content, err := h.service.Upsert(r.Context(), actorOf(identity), chi.URLParam(r, "type"), req.Title, req.Content)
	if err != nil {
		handleCMSError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, content)
}

func handleCMSError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cmssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, cmssvc.ErrNotFound):
		writeNotFound(w, "CONTENT_NOT_FOUND", "content not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
