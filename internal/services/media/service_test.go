package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeStorage struct {
	objects  map[string]string
	putErr   error
	ensureOK bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]string{}}
}

func (f *fakeStorage) EnsureBucket(_ context.Context) error {
	f.ensureOK = true
	return nil
}

func (f *fakeStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	raw, _ := io.ReadAll(body)
	f.objects[key] = contentType + ":" + string(raw)
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://signed.local/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func TestObjectKeys(t *testing.T) {
	svc := NewService(newFakeStorage())
	svc.now = func() time.Time { return time.UnixMilli(1717000000123) }

	if got, want := svc.ProfilePhotoKey("u1", "p1", "My Photo.JPG"), "matrimony/u1/p1/1717000000123_My_Photo.JPG"; got != want {
		t.Fatalf("profile photo key: got %q want %q", got, want)
	}
	if got, want := svc.PostMediaKey("../../etc/passwd"), "posts/1717000000123_passwd"; got != want {
		t.Fatalf("post media key: got %q want %q", got, want)
	}
	if got, want := svc.PostMediaKey("  "), "posts/1717000000123_upload.bin"; got != want {
		t.Fatalf("empty name key: got %q want %q", got, want)
	}
}

func TestPutStoresAndSigns(t *testing.T) {
	storage := newFakeStorage()
	svc := NewService(storage)

	obj, err := svc.Put(context.Background(), "posts/1_a.png", Upload{
		FileName: "a.png",
		Size:     3,
		Body:     strings.NewReader("png"),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !storage.ensureOK {
		t.Fatalf("bucket must be ensured before the first upload")
	}
	if obj.URL != "https://signed.local/posts/1_a.png" {
		t.Fatalf("unexpected url: %s", obj.URL)
	}
	if storage.objects["posts/1_a.png"] != "application/octet-stream:png" {
		t.Fatalf("unexpected stored object: %q", storage.objects["posts/1_a.png"])
	}

	urls := svc.URLs(context.Background(), []string{"posts/1_a.png", "missing"})
	if len(urls) != 1 {
		t.Fatalf("unsignable keys must be skipped: %v", urls)
	}
}

func TestPutRejectsInvalidUploads(t *testing.T) {
	svc := NewService(newFakeStorage())

	if _, err := svc.Put(context.Background(), "k", Upload{Size: 0, Body: strings.NewReader("")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want %v", err, ErrValidation)
	}
	if _, err := svc.Put(context.Background(), "k", Upload{Size: MaxUploadBytes + 1, Body: strings.NewReader("x")}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("got %v want %v", err, ErrTooLarge)
	}

	var empty *Service
	if _, err := empty.Put(context.Background(), "k", Upload{Size: 1, Body: strings.NewReader("x")}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("got %v want %v", err, ErrStorageUnavailable)
	}
}

func TestS3StorageWithoutClientIsUnavailable(t *testing.T) {
	s := NewS3Storage(nil, "bari-media")
	ctx := context.Background()

	if err := s.EnsureBucket(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("ensure: got %v want %v", err, ErrStorageUnavailable)
	}
	if err := s.Put(ctx, "posts/a.png", strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("put: got %v want %v", err, ErrStorageUnavailable)
	}
	if _, err := s.PresignGet(ctx, "posts/a.png", 0); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("presign: got %v want %v", err, ErrStorageUnavailable)
	}
}

func TestIsInlineType(t *testing.T) {
	tests := map[string]bool{
		"image/jpeg":      true,
		" Image/PNG ":     true,
		"video/mp4":       true,
		"application/pdf": false,
		"":                false,
	}
	for ct, want := range tests {
		if got := isInlineType(ct); got != want {
			t.Fatalf("isInlineType(%q): got %v want %v", ct, got, want)
		}
	}
}
