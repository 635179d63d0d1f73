package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	accesssvc "github.com/Krunal123456/Bari/internal/services/access"
	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	mediasvc "github.com/Krunal123456/Bari/internal/services/media"
	profilesvc "github.com/Krunal123456/Bari/internal/services/profiles"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

const maxUploadBytes = 10 << 20

type meReader interface {
	Me(ctx context.Context, userID string) (authsvc.Me, error)
}

type ProfileHandler struct {
	profiles *profilesvc.Service
	access   *accesssvc.Service
	users    meReader
	signer   urlSigner
}

func NewProfileHandler(profiles *profilesvc.Service, access *accesssvc.Service, users meReader, signer urlSigner) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, access: access, users: users, signer: signer}
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	in, ok := decodeProfileInput(w, r)
	if !ok {
		return
	}
	owner := profilesvc.Owner{ID: identity.UserID}
	if h.users != nil {
		if me, err := h.users.Me(r.Context(), identity.UserID); err == nil {
			owner.Email = me.Email
		}
	}
	p, err := h.profiles.CreateDraft(r.Context(), owner, in)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, h.ownerView(r, p))
}

func (h *ProfileHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	p, err := h.profiles.GetOwn(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.ownerView(r, p))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	in, ok := decodeProfileInput(w, r)
	if !ok {
		return
	}
	p, err := h.profiles.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"), in)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.ownerView(r, p))
}

func (h *ProfileHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	p, err := h.profiles.Submit(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.ownerView(r, p))
}

func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	up, cleanup, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	p, err := h.profiles.UploadPhoto(r.Context(), identity.UserID, chi.URLParam(r, "id"), up)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.ownerView(r, p))
}

func (h *ProfileHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	var req dto.DeletePhotoRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := h.profiles.DeletePhoto(r.Context(), identity.UserID, chi.URLParam(r, "id"), req.ObjectKey)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, h.ownerView(r, p))
}

// Search lists approved profiles. Contact fields never appear in results.
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if h.profiles == nil {
		writeUnavailable(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	q := r.URL.Query()
	filter := model.ProfileSearchFilter{
		Gender:        strings.TrimSpace(q.Get("gender")),
		AgeMin:        queryInt(r, "age_min", 0),
		AgeMax:        queryInt(r, "age_max", 0),
		Location:      strings.TrimSpace(q.Get("location")),
		Education:     strings.TrimSpace(q.Get("education")),
		SpotlightOnly: q.Get("spotlight") == "true",
		Limit:         queryInt(r, "limit", 0),
		Offset:        queryInt(r, "offset", 0),
	}
	items, err := h.profiles.Search(r.Context(), filter)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	res := dto.ProfileListResponse{Items: make([]dto.PublicProfileResponse, 0, len(items))}
	for _, p := range items {
		res.Items = append(res.Items, h.publicView(r, p))
	}
	httperrors.Write(w, http.StatusOK, res)
}

// Get returns one profile with contact details gated by the viewer's plan.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.access == nil {
		writeUnavailable(w, "ACCESS_SERVICE_UNAVAILABLE", "access service is unavailable")
		return
	}
	viewer := accesssvc.Viewer{UserID: identity.UserID, Admin: identity.IsAdmin()}
	view, err := h.access.Gate(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, accesssvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		case errors.Is(err, accesssvc.ErrOwnProfile):
			writeConflict(w, "OWN_PROFILE", err.Error())
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}
	httperrors.Write(w, http.StatusOK, dto.GatedProfileResponse{
		Profile:    h.publicView(r, view.Profile),
		AccessMode: string(view.Mode),
		Phone:      view.Phone,
		Email:      view.Email,
		UpgradeCTA: view.UpgradeCTA,
	})
}

func (h *ProfileHandler) ownerView(r *http.Request, p model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{Profile: p, Photos: photoResponses(r.Context(), h.signer, p.Photos)}
}

func (h *ProfileHandler) publicView(r *http.Request, p model.Profile) dto.PublicProfileResponse {
	return publicProfile(p, photoResponses(r.Context(), h.signer, p.Photos))
}

func publicProfile(p model.Profile, photos []dto.PhotoResponse) dto.PublicProfileResponse {
	return dto.PublicProfileResponse{
		ID:            p.ID,
		FullName:      p.FullName,
		Gender:        p.Gender,
		Age:           p.Age,
		Height:        p.Height,
		MaritalStatus: p.MaritalStatus,
		Education:     p.Education,
		Occupation:    p.Occupation,
		Religion:      p.Religion,
		Caste:         p.Caste,
		Gotra:         p.Gotra,
		Location:      p.Location,
		About:         p.About,
		LookingFor:    p.LookingFor,
		Spotlight:     p.Spotlight,
		Photos:        photos,
	}
}

func decodeProfileInput(w http.ResponseWriter, r *http.Request) (profilesvc.Input, bool) {
	var req dto.ProfileRequest
	if !decodeValid(w, r, &req) {
		return profilesvc.Input{}, false
	}
	in := profilesvc.Input{
		FullName:             req.FullName,
		Gender:               req.Gender,
		Height:               req.Height,
		MaritalStatus:        req.MaritalStatus,
		Education:            req.Education,
		Occupation:           req.Occupation,
		Income:               req.Income,
		Religion:             req.Religion,
		Caste:                req.Caste,
		Gotra:                req.Gotra,
		Location:             req.Location,
		About:                req.About,
		LookingFor:           req.LookingFor,
		Phone:                req.Phone,
		PreferredContactTime: req.PreferredContactTime,
	}
	if raw := strings.TrimSpace(req.DateOfBirth); raw != "" {
		dob, err := rules.ParseBirthDate(raw)
		if err != nil {
			httperrors.Write(w, http.StatusBadRequest, httperrors.ValidationError{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  map[string]string{"date_of_birth": "must be YYYY-MM-DD"},
			})
			return profilesvc.Input{}, false
		}
		in.DateOfBirth = &dob
	}
	return in, true
}

// readUpload pulls the "file" part of a multipart body.
func readUpload(w http.ResponseWriter, r *http.Request) (mediasvc.Upload, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, "INVALID_UPLOAD", "multipart body with a file field is required")
		return mediasvc.Upload{}, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "INVALID_UPLOAD", "multipart body with a file field is required")
		return mediasvc.Upload{}, nil, false
	}
	up := mediasvc.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	cleanup := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return up, cleanup, true
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation), errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, profilesvc.ErrIncomplete):
		writeBadRequest(w, "PROFILE_INCOMPLETE", err.Error())
	case errors.Is(err, profilesvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, profilesvc.ErrProfileExists):
		writeConflict(w, "PROFILE_EXISTS", "profile already exists")
	case errors.Is(err, profilesvc.ErrStatusConflict):
		writeConflict(w, "PROFILE_STATUS_CONFLICT", "profile status does not allow this action")
	case errors.Is(err, profilesvc.ErrPhotoLimit):
		writeConflict(w, "PHOTO_LIMIT", "photo limit reached")
	case errors.Is(err, mediasvc.ErrTooLarge):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{Code: "UPLOAD_TOO_LARGE", Message: "upload exceeds size limit"})
	case errors.Is(err, mediasvc.ErrStorageUnavailable):
		writeUnavailable(w, "STORAGE_UNAVAILABLE", "object storage is not configured")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
