package handlers

import (
	"net/http"

	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	entsvc "github.com/Krunal123456/Bari/internal/services/entitlements"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

type MeHandler struct {
	auth         *authsvc.Service
	entitlements *entsvc.Service
}

func NewMeHandler(auth *authsvc.Service, entitlements *entsvc.Service) *MeHandler {
	return &MeHandler{auth: auth, entitlements: entitlements}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.auth == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	me, err := h.auth.Me(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	res := dto.MeResponse{User: meResponse(me), Subscription: dto.EntitlementResponse{Plan: "free"}}
	if h.entitlements != nil {
		if ent, err := h.entitlements.Get(r.Context(), identity.UserID); err == nil {
			res.Subscription = dto.EntitlementResponse{Plan: string(ent.Plan), Paid: ent.Paid, ExpiresAt: ent.ExpiresAt}
		}
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *MeHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.auth == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	me, err := h.auth.CompleteOnboarding(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, meResponse(me))
}
