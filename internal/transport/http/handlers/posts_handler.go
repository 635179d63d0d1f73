package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	mediasvc "github.com/Krunal123456/Bari/internal/services/media"
	postsvc "github.com/Krunal123456/Bari/internal/services/posts"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

type PostsHandler struct {
	service *postsvc.Service
	live    http.Handler
}

func NewPostsHandler(service *postsvc.Service, live http.Handler) *PostsHandler {
	return &PostsHandler{service: service, live: live}
}

// Active is the community feed. Anonymous callers only see public posts.
func (h *PostsHandler) Active(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	viewer := rules.Viewer{}
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		viewer.Authenticated = true
		viewer.Admin = identity.IsAdmin()
	}
	items, err := h.service.ListActive(r.Context(), viewer)
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PostListResponse{Items: nonNilPosts(items)})
}

func (h *PostsHandler) Live(w http.ResponseWriter, r *http.Request) {
	if h.live == nil {
		writeUnavailable(w, "LIVE_FEED_UNAVAILABLE", "live feed is unavailable")
		return
	}
	h.live.ServeHTTP(w, r)
}

func (h *PostsHandler) ReadStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	items, err := h.service.ReadStatus(r.Context(), identity.UserID)
	if err != nil {
		handlePostError(w, err)
		return
	}
	if items == nil {
		items = map[string]bool{}
	}
	httperrors.Write(w, http.StatusOK, dto.ReadStatusResponse{Items: items})
}

func (h *PostsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	read := true
	if r.ContentLength != 0 {
		var req dto.ReadRequest
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
			return
		}
		if req.Read != nil {
			read = *req.Read
		}
	}
	if err := h.service.MarkRead(r.Context(), identity.UserID, chi.URLParam(r, "id"), read); err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *PostsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	q := r.URL.Query()
	items, err := h.service.List(r.Context(), model.PostFilter{
		Type:     enums.PostType(strings.TrimSpace(q.Get("type"))),
		Status:   enums.PostStatus(strings.TrimSpace(q.Get("status"))),
		Priority: enums.PostPriority(strings.TrimSpace(q.Get("priority"))),
		Limit:    queryInt(r, "limit", postsvc.DefaultPageSize),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PostListResponse{Items: nonNilPosts(items)})
}

func (h *PostsHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, p)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	var req dto.PostRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := h.service.Create(r.Context(), actorOf(identity), postInput(req))
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, p)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	var req dto.PostRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := h.service.Update(r.Context(), actorOf(identity), chi.URLParam(r, "id"), postInput(req))
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, p)
}

func (h *PostsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	p, err := h.service.Archive(r.Context(), actorOf(identity), chi.URLParam(r, "id"))
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, p)
}

func (h *PostsHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}
	up, cleanup, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	obj, err := h.service.UploadMedia(r.Context(), up)
	if err != nil {
		handlePostError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.MediaUploadResponse{Key: obj.Key, URL: obj.URL})
}

func postInput(req dto.PostRequest) postsvc.Input {
	return postsvc.Input{
		Title:       req.Title,
		Content:     req.Content,
		Type:        enums.PostType(req.Type),
		Priority:    enums.PostPriority(req.Priority),
		Visibility:  enums.PostVisibility(req.Visibility),
		Status:      enums.PostStatus(req.Status),
		IsPinned:    req.IsPinned,
		Images:      req.Images,
		Attachments: req.Attachments,
		VideoURL:    req.VideoURL,
		ScheduledAt: req.ScheduledAt,
		ExpiresAt:   req.ExpiresAt,
	}
}

func nonNilPosts(items []model.Post) []model.Post {
	if items == nil {
		return []model.Post{}
	}
	return items
}

func handlePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postsvc.ErrValidation), errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, postsvc.ErrNotFound):
		writeNotFound(w, "POST_NOT_FOUND", "post not found")
	case errors.Is(err, postsvc.ErrArchivedImmutable):
		writeConflict(w, "POST_ARCHIVED", "archived posts cannot be edited")
	case errors.Is(err, mediasvc.ErrTooLarge):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{Code: "UPLOAD_TOO_LARGE", Message: "upload exceeds size limit"})
	case errors.Is(err, postsvc.ErrMediaUnavailable), errors.Is(err, mediasvc.ErrStorageUnavailable):
		writeUnavailable(w, "STORAGE_UNAVAILABLE", "media storage is not configured")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
