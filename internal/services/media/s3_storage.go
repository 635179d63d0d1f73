package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	s3infra "github.com/Krunal123456/Bari/internal/infra/s3"
)

// Photos and post media are immutable once written; a new upload gets a new key.
const objectCacheControl = "private, max-age=86400, immutable"

// S3Storage keeps every object in one bucket. Profile photos live under
// "profiles/" and post media under "posts/".
type S3Storage struct {
	client *minio.Client
	bucket string

	mu      sync.Mutex
	ensured bool
}

func NewS3Storage(client *minio.Client, bucket string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

// EnsureBucket creates the bucket on first use. A failed check is retried on
// the next call so uploads recover once storage comes back.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return ErrStorageUnavailable
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s3infra.EnsureBucket(ctx, s.client, s.bucket); err != nil {
		return err
	}
	s.ensured = true
	return nil
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.client == nil {
		return ErrStorageUnavailable
	}
	if key == "" || body == nil || size <= 0 {
		return ErrValidation
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: objectCacheControl,
	}
	if !isInlineType(contentType) {
		opts.ContentDisposition = fmt.Sprintf("attachment; filename=%q", path.Base(key))
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", ErrStorageUnavailable
	}
	if key == "" {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return presigned.String(), nil
}

// Delete treats a missing object as already deleted.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return ErrStorageUnavailable
	}
	if key == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func isInlineType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}
