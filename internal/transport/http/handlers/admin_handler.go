package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/model"
	adminsvc "github.com/Krunal123456/Bari/internal/services/admin"
	adminauthsvc "github.com/Krunal123456/Bari/internal/services/adminauth"
	"github.com/Krunal123456/Bari/internal/services/audit"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

// AdminHandler serves the dashboard: activity, stats, exports, role changes
// and two-factor enrollment.
type AdminHandler struct {
	admin  *adminsvc.Service
	audit  *audit.Service
	totp   *adminauthsvc.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewAdminHandler(admin *adminsvc.Service, auditService *audit.Service, totp *adminauthsvc.Service, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{admin: admin, audit: auditService, totp: totp, logger: logger, now: time.Now}
}

func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	items, err := h.audit.Latest(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	if items == nil {
		items = []model.ActivityLog{}
	}
	httperrors.Write(w, http.StatusOK, dto.ActivityListResponse{Items: items})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		writeUnavailable(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}
	httperrors.Write(w, http.StatusOK, stats)
}

func (h *AdminHandler) ExportProfiles(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		writeUnavailable(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}
	statuses, ok := parseStatuses(r.URL.Query().Get("status"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown profile status")
		return
	}
	h.writeCSVHeaders(w, "matrimony")
	n, err := h.admin.ExportProfiles(r.Context(), w, statuses)
	if err != nil {
		// headers are gone by now; the truncated file is all we can signal
		h.logger.Error("export profiles", zap.Int("rows", n), zap.Error(err))
	}
}

func (h *AdminHandler) ExportDirectory(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		writeUnavailable(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}
	h.writeCSVHeaders(w, "directory")
	n, err := h.admin.ExportDirectory(r.Context(), w)
	if err != nil {
		h.logger.Error("export directory", zap.Int("rows", n), zap.Error(err))
	}
}

func (h *AdminHandler) writeCSVHeaders(w http.ResponseWriter, kind string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+adminsvc.ExportFileName(kind, h.now())+`"`)
	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.admin == nil {
		writeUnavailable(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}
	user, err := h.admin.Promote(r.Context(), actorOf(identity), identity.Role, chi.URLParam(r, "id"))
	if err != nil {
		handleAdminError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.UserRoleResponse{ID: user.ID, Role: string(user.Role)})
}

func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.admin == nil {
		writeUnavailable(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}
	user, err := h.admin.Demote(r.Context(), actorOf(identity), identity.Role, chi.URLParam(r, "id"))
	if err != nil {
		handleAdminError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.UserRoleResponse{ID: user.ID, Role: string(user.Role)})
}

func (h *AdminHandler) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.totp == nil {
		writeUnavailable(w, "TOTP_UNAVAILABLE", "two-factor enrollment is unavailable")
		return
	}
	res, err := h.totp.Setup(r.Context(), identity.UserID)
	if err != nil {
		handleTOTPError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *AdminHandler) TOTPConfirm(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.totp == nil {
		writeUnavailable(w, "TOTP_UNAVAILABLE", "two-factor enrollment is unavailable")
		return
	}
	var req dto.TOTPConfirmRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.totp.Confirm(r.Context(), identity.UserID, req.Code); err != nil {
		handleTOTPError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, adminsvc.ErrForbidden):
		writeForbidden(w, "SUPER_ADMIN_REQUIRED", "super admin role required")
	case errors.Is(err, adminsvc.ErrSelfDemotion):
		writeConflict(w, "SELF_DEMOTION", "cannot demote yourself")
	case errors.Is(err, adminsvc.ErrProtectedTarget):
		writeForbidden(w, "PROTECTED_TARGET", "super admins cannot be changed")
	case errors.Is(err, adminsvc.ErrNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func handleTOTPError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminauthsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "admin role required")
	case errors.Is(err, adminauthsvc.ErrAlreadyEnabled):
		writeConflict(w, "TOTP_ALREADY_ENABLED", "two-factor already enabled")
	case errors.Is(err, adminauthsvc.ErrNotEnrolled):
		writeConflict(w, "TOTP_NOT_ENROLLED", "two-factor enrollment not started")
	case errors.Is(err, adminauthsvc.ErrInvalidCode):
		writeBadRequest(w, "TOTP_INVALID_CODE", "invalid two-factor code")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
