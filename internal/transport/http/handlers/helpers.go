package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/pkg/validate"
	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	"github.com/Krunal123456/Bari/internal/services/audit"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

const maxJSONBody = 1 << 20

var requestValidator = validate.New()

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// decodeValid decodes and validates the body, writing the 400 itself on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return false
	}
	if err := requestValidator.Struct(target); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	var fields validate.FieldErrors
	if errors.As(err, &fields) {
		httperrors.Write(w, http.StatusBadRequest, httperrors.ValidationError{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  fields,
		})
		return
	}
	writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeUnavailable(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{Code: code, Message: message})
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func actorOf(identity authsvc.Identity) audit.Actor {
	return audit.Actor{ID: identity.UserID}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

type urlSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

// photoResponses signs each photo; unsigned photos keep an empty URL.
func photoResponses(ctx context.Context, signer urlSigner, photos []model.ProfilePhoto) []dto.PhotoResponse {
	out := make([]dto.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		item := dto.PhotoResponse{ObjectKey: p.ObjectKey, UploadedAt: p.UploadedAt}
		if signer != nil {
			if url, err := signer.URL(ctx, p.ObjectKey); err == nil {
				item.URL = url
			}
		}
		out = append(out, item)
	}
	return out
}

func formatSeconds(sec int64) string {
	if sec < 1 {
		sec = 1
	}
	return strconv.FormatInt(sec, 10)
}
