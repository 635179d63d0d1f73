package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	interestsvc "github.com/Krunal123456/Bari/internal/services/interests"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

type InterestsHandler struct {
	service *interestsvc.Service
}

func NewInterestsHandler(service *interestsvc.Service) *InterestsHandler {
	return &InterestsHandler{service: service}
}

func (h *InterestsHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "INTEREST_SERVICE_UNAVAILABLE", "interest service is unavailable")
		return
	}
	var req dto.SendInterestRequest
	if r.ContentLength != 0 && !decodeValid(w, r, &req) {
		return
	}

	interest, err := h.service.Send(r.Context(), identity.UserID, chi.URLParam(r, "id"), req.Message)
	if err != nil {
		var tooFast *interestsvc.TooFastError
		switch {
		case errors.As(err, &tooFast):
			w.Header().Set("Retry-After", formatSeconds(tooFast.RetryAfter))
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many interests, slow down",
				RetryAfterSec: tooFast.RetryAfter,
			})
		case errors.Is(err, interestsvc.ErrDailyLimit):
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.APIError{
				Code:    "DAILY_LIMIT",
				Message: "daily interest limit reached, upgrade for unlimited interests",
			})
		case errors.Is(err, interestsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, interestsvc.ErrOwnProfile):
			writeConflict(w, "OWN_PROFILE", "cannot send interest to own profile")
		case errors.Is(err, interestsvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}
	httperrors.Write(w, http.StatusCreated, interest)
}

func (h *InterestsHandler) Quota(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "INTEREST_SERVICE_UNAVAILABLE", "interest service is unavailable")
		return
	}
	quota, err := h.service.Quota(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, quota)
}
