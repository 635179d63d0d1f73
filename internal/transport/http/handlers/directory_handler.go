package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Krunal123456/Bari/internal/domain/model"
	directorysvc "github.com/Krunal123456/Bari/internal/services/directory"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

type DirectoryHandler struct {
	service *directorysvc.Service
}

func NewDirectoryHandler(service *directorysvc.Service) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}
	items, err := h.service.ListPublic(r.Context(), strings.TrimSpace(r.URL.Query().Get("location")), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		handleDirectoryError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DirectoryListResponse{Items: nonNilEntries(items)})
}

func (h *DirectoryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}
	var req dto.DirectoryRequest
	if !decodeValid(w, r, &req) {
		return
	}
	entry, err := h.service.Submit(r.Context(), identity.UserID, directorysvc.Input{
		Name:       req.Name,
		Family:     req.Family,
		Profession: req.Profession,
		Location:   req.Location,
		Phone:      req.Phone,
		Email:      req.Email,
		About:      req.About,
	})
	if err != nil {
		handleDirectoryError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, entry)
}

func (h *DirectoryHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}
	includePending := r.URL.Query().Get("pending") != "false"
	items, err := h.service.ListAdmin(r.Context(), includePending, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		handleDirectoryError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DirectoryListResponse{Items: nonNilEntries(items)})
}

func (h *DirectoryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}
	entry, err := h.service.Approve(r.Context(), actorOf(identity), chi.URLParam(r, "id"))
	if err != nil {
		handleDirectoryError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, entry)
}

func (h *DirectoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "DIRECTORY_SERVICE_UNAVAILABLE", "directory service is unavailable")
		return
	}
	entry, err := h.service.Delete(r.Context(), actorOf(identity), chi.URLParam(r, "id"))
	if err != nil {
		handleDirectoryError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, entry)
}

func nonNilEntries(items []model.DirectoryEntry) []model.DirectoryEntry {
	if items == nil {
		return []model.DirectoryEntry{}
	}
	return items
}

func handleDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directorysvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, directorysvc.ErrNotFound):
		writeNotFound(w, "DIRECTORY_ENTRY_NOT_FOUND", "directory entry not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
