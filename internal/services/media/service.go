package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrStorageUnavailable = errors.New("object storage is not configured")
	ErrTooLarge           = errors.New("upload exceeds size limit")
)

const (
	DefaultURLTTL  = 15 * time.Minute
	MaxUploadBytes = 10 << 20
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Service stores profile photos and post media in one bucket and hands out
// presigned read URLs for them.
type Service struct {
	storage ObjectStorage
	urlTTL  time.Duration
	now     func() time.Time
}

func NewService(storage ObjectStorage) *Service {
	return &Service{
		storage: storage,
		urlTTL:  DefaultURLTTL,
		now:     time.Now,
	}
}

func (s *Service) Available() bool {
	return s != nil && s.storage != nil
}

// ProfilePhotoKey builds matrimony/{userId}/{profileId}/{ts}_{name}.
func (s *Service) ProfilePhotoKey(userID, profileID, fileName string) string {
	return fmt.Sprintf("matrimony/%s/%s/%d_%s", userID, profileID, s.now().UTC().UnixMilli(), cleanFileName(fileName))
}

// PostMediaKey builds posts/{ts}_{name}.
func (s *Service) PostMediaKey(fileName string) string {
	return fmt.Sprintf("posts/%d_%s", s.now().UTC().UnixMilli(), cleanFileName(fileName))
}

func (s *Service) Put(ctx context.Context, key string, up Upload) (Object, error) {
	if !s.Available() {
		return Object{}, ErrStorageUnavailable
	}
	if strings.TrimSpace(key) == "" || up.Body == nil || up.Size <= 0 {
		return Object{}, ErrValidation
	}
	if up.Size > MaxUploadBytes {
		return Object{}, ErrTooLarge
	}
	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Object{}, fmt.Errorf("ensure bucket: %w", err)
	}

	contentType := strings.TrimSpace(up.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.storage.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		return Object{}, fmt.Errorf("put object: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, key, s.urlTTL)
	if err != nil {
		return Object{Key: key}, fmt.Errorf("presign object url: %w", err)
	}
	return Object{Key: key, URL: url}, nil
}

func (s *Service) URL(ctx context.Context, key string) (string, error) {
	if !s.Available() {
		return "", ErrStorageUnavailable
	}
	return s.storage.PresignGet(ctx, key, s.urlTTL)
}

// URLs presigns keys in order. A key that cannot be signed is skipped.
func (s *Service) URLs(ctx context.Context, keys []string) []string {
	out := make([]string, 0, len(keys))
	if !s.Available() {
		return out
	}
	for _, key := range keys {
		url, err := s.storage.PresignGet(ctx, key, s.urlTTL)
		if err != nil {
			continue
		}
		out = append(out, url)
	}
	return out
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if !s.Available() {
		return ErrStorageUnavailable
	}
	return s.storage.Delete(ctx, key)
}

func cleanFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "upload.bin"
	}
	if len(base) > 80 {
		base = base[len(base)-80:]
	}
	return base
}
